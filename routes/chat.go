package routes

import (
	"net/http"

	"pdf-chat-backend/internal/logger"
	"pdf-chat-backend/models"
	"pdf-chat-backend/services"
	"pdf-chat-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes wires the question-answering endpoint.
func SetupChatRoutes(router *gin.Engine, qa *services.QAService) {
	api := router.Group("/api")

	api.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		answer, err := qa.Answer(c.Request.Context(), req.Question, req.PDFID)
		if err != nil {
			logger.Error("failed to answer question", "pdf_id", req.PDFID, "error", err)
			utils.RespondWithAppError(c, err)
			return
		}

		c.JSON(http.StatusOK, answer)
	})
}
