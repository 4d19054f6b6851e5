package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/paintball-league/internal/domain/document"
)

type DiagnosticsService struct {
	docs       document.Store
	collection string
}

func NewDiagnosticsService(docs document.Store) *DiagnosticsService {
	return &DiagnosticsService{docs: docs, collection: document.CollectionTest}
}

// ListDocuments flattens every document of the diagnostics collection into one map
// holding its id next to its fields. A stored "id" field wins over the key.
func (s *DiagnosticsService) ListDocuments(ctx context.Context) ([]map[string]any, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DiagnosticsService.ListDocuments")
	defer span.End()

	docs, err := s.docs.List(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}

	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		item := make(map[string]any, len(doc.Fields)+1)
		item["id"] = doc.ID
		for k, v := range doc.Fields {
			item[k] = v
		}
		out = append(out, item)
	}
	return out, nil
}
