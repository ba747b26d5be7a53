package services

import (
	"context"
	"fmt"

	"pdf-chat-backend/internal/config"
	"pdf-chat-backend/internal/logger"
	"pdf-chat-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VectorStore persists embedded chunks in a MongoDB collection and
// answers cosine-similarity queries through Atlas $vectorSearch.
type VectorStore struct {
	collection *mongo.Collection
	indexName  string
	dimensions int

	// $vectorSearch has no index-aware equality filter on metadata, so a
	// document-scoped search over-fetches a candidate pool ranked by
	// similarity and post-filters it. The multipliers are empirical
	// tuning constants, not correctness guarantees.
	candidateMultiplier int
	fetchMultiplier     int
}

func NewVectorStore(client *mongo.Client, cfg *config.Config) *VectorStore {
	return &VectorStore{
		collection:          client.Database(cfg.DBName).Collection(cfg.CollectionName),
		indexName:           cfg.VectorIndexName,
		dimensions:          cfg.VectorDimensions,
		candidateMultiplier: cfg.CandidateMultiplier,
		fetchMultiplier:     cfg.FetchMultiplier,
	}
}

// EnsureVectorIndex creates the vector search index if it does not exist.
// Creation failure is logged and swallowed: the index usually already
// exists, and a missing index surfaces on the first search instead.
func (vs *VectorStore) EnsureVectorIndex(ctx context.Context) {
	view := vs.collection.SearchIndexes()

	cursor, err := view.List(ctx, options.SearchIndexes().SetName(vs.indexName))
	if err == nil {
		var existing []bson.M
		if err := cursor.All(ctx, &existing); err == nil && len(existing) > 0 {
			logger.Debug("vector search index already exists", "index", vs.indexName)
			return
		}
	}

	definition := bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: "embedding"},
				{Key: "numDimensions", Value: vs.dimensions},
				{Key: "similarity", Value: "cosine"},
			},
		}},
	}

	_, err = view.CreateOne(ctx, mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(vs.indexName).SetType("vectorSearch"),
	})
	if err != nil {
		logger.Warn("vector index creation may have failed (might already exist)", "index", vs.indexName, "error", err)
		return
	}
	logger.Info("vector search index created", "index", vs.indexName)
}

// Insert stores embedded chunks and returns the generated ids. Empty
// input is a no-op.
func (vs *VectorStore) Insert(ctx context.Context, chunks []models.DocumentChunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	docs := make([]interface{}, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chunk
	}

	result, err := vs.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chunks: %w", err)
	}

	ids := make([]string, 0, len(result.InsertedIDs))
	for _, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
		}
	}

	logger.Info("inserted chunks", "count", len(ids))
	return ids, nil
}

// Search returns up to limit chunks ranked by descending cosine
// similarity. When pdfID is set, a larger candidate pool is fetched and
// post-filtered; if fewer than limit matches survive, fewer are returned.
func (vs *VectorStore) Search(ctx context.Context, queryVector []float32, limit int, pdfID string) ([]models.ScoredChunk, error) {
	numCandidates, fetchLimit := vs.searchSizes(limit, pdfID != "")

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: vs.indexName},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: queryVector},
			{Key: "numCandidates", Value: numCandidates},
			{Key: "limit", Value: fetchLimit},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "metadata", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := vs.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	var results []models.ScoredChunk
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	if pdfID != "" {
		results = filterByPDF(results, pdfID, limit)
	}
	return results, nil
}

// searchSizes sizes the candidate pool: more candidates when filtering
// because post-filtering discards non-matching results. Atlas rejects
// numCandidates < limit, so the pool never shrinks below the fetch size
// even with under-provisioned multipliers.
func (vs *VectorStore) searchSizes(limit int, filtered bool) (numCandidates, fetchLimit int) {
	if filtered {
		fetchLimit = limit * vs.fetchMultiplier
		numCandidates = limit * vs.candidateMultiplier
		if numCandidates < fetchLimit {
			numCandidates = fetchLimit
		}
		return numCandidates, fetchLimit
	}

	numCandidates = limit * vs.candidateMultiplier / 2
	if numCandidates < limit {
		numCandidates = limit
	}
	return numCandidates, limit
}

// filterByPDF keeps similarity ordering, drops chunks belonging to other
// documents, and truncates to limit.
func filterByPDF(results []models.ScoredChunk, pdfID string, limit int) []models.ScoredChunk {
	filtered := make([]models.ScoredChunk, 0, limit)
	for _, r := range results {
		if r.Metadata.PDFID != pdfID {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) == limit {
			break
		}
	}
	return filtered
}

// DeleteByPDF removes all chunks belonging to a document. Deleting an
// unknown id deletes zero chunks and is not an error.
func (vs *VectorStore) DeleteByPDF(ctx context.Context, pdfID string) (int64, error) {
	result, err := vs.collection.DeleteMany(ctx, bson.M{"metadata.pdf_id": pdfID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks for PDF %s: %w", pdfID, err)
	}

	logger.Info("deleted chunks", "pdf_id", pdfID, "count", result.DeletedCount)
	return result.DeletedCount, nil
}

// ListPDFs derives the set of indexed documents by grouping stored
// chunks on pdf_id.
func (vs *VectorStore) ListPDFs(ctx context.Context) ([]models.PDFInfo, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$metadata.pdf_id"},
			{Key: "pdf_name", Value: bson.D{{Key: "$first", Value: "$metadata.pdf_name"}}},
			{Key: "total_chunks", Value: bson.D{{Key: "$max", Value: "$metadata.total_chunks"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "pdf_id", Value: "$_id"},
			{Key: "pdf_name", Value: 1},
			{Key: "total_chunks", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	}

	cursor, err := vs.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list PDFs: %w", err)
	}

	var pdfs []models.PDFInfo
	if err := cursor.All(ctx, &pdfs); err != nil {
		return nil, fmt.Errorf("failed to decode PDF list: %w", err)
	}
	return pdfs, nil
}
