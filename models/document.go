package models

// ChunkMetadata identifies a chunk's position within its owning document.
// ChunkIndex is authoritative for reconstructing document order; storage
// order is not.
type ChunkMetadata struct {
	PDFID       string `bson:"pdf_id" json:"pdf_id"`
	PDFName     string `bson:"pdf_name" json:"pdf_name"`
	ChunkIndex  int    `bson:"chunk_index" json:"chunk_index"`
	TotalChunks int    `bson:"total_chunks" json:"total_chunks"`
}

// DocumentChunk is the persisted record for Atlas Vector Search: one text
// segment, its metadata, and a fixed-dimension embedding.
type DocumentChunk struct {
	Text      string        `bson:"text" json:"text"`
	Metadata  ChunkMetadata `bson:"metadata" json:"metadata"`
	Embedding []float32     `bson:"embedding,omitempty" json:"-"`
}

// ScoredChunk is a chunk returned by a similarity query, annotated with
// its cosine similarity score.
type ScoredChunk struct {
	Text     string        `bson:"text" json:"text"`
	Metadata ChunkMetadata `bson:"metadata" json:"metadata"`
	Score    float64       `bson:"score" json:"score"`
}

// PDFInfo summarizes one indexed document, derived by grouping stored
// chunks.
type PDFInfo struct {
	PDFID       string `bson:"pdf_id" json:"pdf_id"`
	PDFName     string `bson:"pdf_name" json:"pdf_name"`
	TotalChunks int    `bson:"total_chunks" json:"total_chunks"`
}

// SourceDocument is a truncated citation attached to an answer. Metadata
// is carried through from the retrieved chunk untouched.
type SourceDocument struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Answer is the response to one question.
type Answer struct {
	Answer          string           `json:"answer"`
	SourceDocuments []SourceDocument `json:"source_documents"`
}

// ChatRequest is the chat endpoint payload.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
	PDFID    string `json:"pdf_id"`
}

// UploadResponse is returned after a successful PDF upload.
type UploadResponse struct {
	PDFID    string `json:"pdf_id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Message  string `json:"message"`
}
