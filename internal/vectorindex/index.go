// Package vectorindex is a small embedding-backed similarity index stored next to
// the tabular data in the same SQLite database.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collections used by the similarity tools.
const (
	CollectionCases    = "cases"
	CollectionPatterns = "patterns"
	CollectionProfiles = "profiles"

	TableDocuments = "documents"
)

// Document is one indexed text with its metadata and embedding.
type Document struct {
	ID         uint           `gorm:"primaryKey"`
	Collection string         `gorm:"column:collection;not null;uniqueIndex:idx_documents_collection_doc"`
	DocID      string         `gorm:"column:doc_id;not null;uniqueIndex:idx_documents_collection_doc"`
	Category   string         `gorm:"column:category;index"`
	Content    string         `gorm:"column:content"`
	Metadata   map[string]any `gorm:"column:metadata;serializer:json"`
	Embedding  []byte         `gorm:"column:embedding"`
}

func (Document) TableName() string { return TableDocuments }

// Entry is the write-side shape accepted by Upsert.
type Entry struct {
	ID       string
	Category string
	Content  string
	Metadata map[string]any
}

// Match is a ranked query hit.
type Match struct {
	ID       string
	Category string
	Content  string
	Metadata map[string]any
	Distance float64
	Score    float64
}

// Index queries documents by embedding similarity.
type Index struct {
	db       *gorm.DB
	embedder Embedder
}

// OpenIndex attaches to an existing documents table.
func OpenIndex(store *datastore.Store, embedder Embedder) (*Index, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	db := store.DB()
	if db == nil {
		return nil, &datastore.DataSourceUnavailableError{Source: "vector index", Cause: errors.New("store not initialised")}
	}
	if !db.Migrator().HasTable(TableDocuments) {
		return nil, &datastore.DataSourceUnavailableError{Source: "table " + TableDocuments}
	}
	return &Index{db: db, embedder: embedder}, nil
}

// CreateIndex migrates the documents table and returns the index.
func CreateIndex(store *datastore.Store, embedder Embedder) (*Index, error) {
	db := store.DB()
	if db == nil {
		return nil, &datastore.DataSourceUnavailableError{Source: "vector index", Cause: errors.New("store not initialised")}
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return OpenIndex(store, embedder)
}

// Count returns the number of documents in a collection.
func (ix *Index) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := ix.db.WithContext(ctx).Model(&Document{}).Where("collection = ?", collection).Count(&n).Error
	return n, err
}

// Upsert embeds and stores entries, replacing any with the same collection and id.
func (ix *Index) Upsert(ctx context.Context, collection string, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	texts := make([]string, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d: empty id", i)
		}
		texts[i] = e.Content
	}
	vecs, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %s: %w", collection, err)
	}

	docs := make([]Document, len(entries))
	for i, e := range entries {
		blob, err := EncodeVector(vecs[i])
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
		docs[i] = Document{
			Collection: collection,
			DocID:      e.ID,
			Category:   e.Category,
			Content:    e.Content,
			Metadata:   e.Metadata,
			Embedding:  blob,
		}
	}

	return ix.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "content", "metadata", "embedding"}),
	}).Create(&docs).Error
}

// Query returns up to n documents nearest to text. A non-empty category restricts
// the candidates before ranking. Ties on distance are broken by document id.
func (ix *Index) Query(ctx context.Context, collection, text string, n int, category string) ([]Match, error) {
	if n <= 0 {
		return []Match{}, nil
	}
	qvec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	q := ix.db.WithContext(ctx).Where("collection = ?", collection)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var docs []Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(docs))
	for _, d := range docs {
		vec, err := DecodeVector(d.Embedding)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", d.DocID, err)
		}
		if len(vec) != len(qvec) {
			return nil, fmt.Errorf("document %s: %w: stored %d, query %d", d.DocID, ErrDimensionMismatch, len(vec), len(qvec))
		}
		dist, err := CosineDistance(qvec, vec)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{
			ID:       d.DocID,
			Category: d.Category,
			Content:  d.Content,
			Metadata: d.Metadata,
			Distance: dist,
			Score:    SimilarityScore(dist),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}
