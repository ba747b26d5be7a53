package routes

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"pdf-chat-backend/internal/config"
	"pdf-chat-backend/internal/logger"
	"pdf-chat-backend/models"
	"pdf-chat-backend/services"
	"pdf-chat-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SetupDocumentRoutes wires the upload / list / delete endpoints.
func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, ingestion *services.IngestionService, store *services.VectorStore) {
	api := router.Group("/api")

	api.POST("/upload-pdf", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "File is required", gin.H{"error": err.Error()})
			return
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "File must be a PDF", nil)
			return
		}
		if fileHeader.Size == 0 {
			utils.RespondWithBadRequest(c, "Uploaded file is empty", nil)
			return
		}
		if fileHeader.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, fmt.Sprintf("File size exceeds %dMB limit", cfg.MaxFileSize>>20), nil)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}

		logger.Info("extracting text from PDF", "filename", fileHeader.Filename, "size", fileHeader.Size)

		text, err := services.ExtractPDFText(content)
		if err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		pdfID := uuid.NewString()
		count, err := ingestion.Ingest(c.Request.Context(), text, pdfID, fileHeader.Filename)
		if err != nil {
			logger.Error("failed to ingest PDF", "filename", fileHeader.Filename, "error", err)
			utils.RespondWithAppError(c, err)
			return
		}

		logger.Info("PDF processed successfully", "filename", fileHeader.Filename, "pdf_id", pdfID, "chunks", count)

		c.JSON(http.StatusOK, models.UploadResponse{
			PDFID:    pdfID,
			Filename: fileHeader.Filename,
			Chunks:   count,
			Message:  "PDF processed and stored successfully",
		})
	})

	api.GET("/pdfs", func(c *gin.Context) {
		pdfs, err := store.ListPDFs(c.Request.Context())
		if err != nil {
			logger.Error("failed to list PDFs", "error", err)
			utils.RespondWithError(c, http.StatusServiceUnavailable, string(utils.KindStorageUnavailable), err.Error(), nil)
			return
		}
		if pdfs == nil {
			pdfs = []models.PDFInfo{}
		}
		c.JSON(http.StatusOK, gin.H{"pdfs": pdfs})
	})

	api.DELETE("/pdfs/:pdf_id", func(c *gin.Context) {
		pdfID := c.Param("pdf_id")

		deleted, err := store.DeleteByPDF(c.Request.Context(), pdfID)
		if err != nil {
			logger.Error("failed to delete PDF", "pdf_id", pdfID, "error", err)
			utils.RespondWithError(c, http.StatusServiceUnavailable, string(utils.KindStorageUnavailable), err.Error(), nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"pdf_id":         pdfID,
			"deleted_chunks": deleted,
			"message":        "PDF deleted successfully",
		})
	})
}
