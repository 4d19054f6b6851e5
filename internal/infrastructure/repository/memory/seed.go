package memory

import "github.com/riskibarqy/paintball-league/internal/domain/document"

// SeedDocuments returns the documents a fresh in-memory store starts with.
func SeedDocuments() map[string][]document.Document {
	return map[string][]document.Document{
		document.CollectionTest: {
			{ID: "sample-1", Fields: map[string]any{"message": "hello from the document store", "ok": true}},
			{ID: "sample-2", Fields: map[string]any{"message": "second sample", "count": 2.0}},
		},
	}
}
