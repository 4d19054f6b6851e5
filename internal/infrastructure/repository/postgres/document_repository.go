package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/paintball-league/internal/domain/document"
	qb "github.com/riskibarqy/paintball-league/internal/platform/querybuilder"
)

const documentsTable = "documents"

// DocumentRepository stores each document as one JSONB row keyed by
// (collection, doc_id).
type DocumentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	if err := document.ValidateKey(collection, id); err != nil {
		return document.Document{}, false, err
	}

	query, args, err := qb.Select(qb.Columns(documentTableModel{})...).
		From(documentsTable).
		Where(qb.Eq("collection", collection), qb.Eq("doc_id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return document.Document{}, false, fmt.Errorf("build get document query: %w", err)
	}

	var row documentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return document.Document{}, false, nil
		}
		return document.Document{}, false, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	doc, err := documentFromRow(row)
	if err != nil {
		return document.Document{}, false, err
	}
	return doc, true, nil
}

func (r *DocumentRepository) Set(ctx context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error {
	if err := document.ValidateKey(collection, id); err != nil {
		return err
	}
	if fields == nil {
		fields = map[string]any{}
	}

	payload, err := sonic.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	conflict := `ON CONFLICT (collection, doc_id)
DO UPDATE SET
    data = EXCLUDED.data,
    updated_at = NOW()`
	if opts.Merge {
		conflict = `ON CONFLICT (collection, doc_id)
DO UPDATE SET
    data = documents.data || EXCLUDED.data,
    updated_at = NOW()`
	}

	query, args, err := qb.InsertModel(documentsTable, documentInsertModel{
		Collection: collection,
		DocID:      id,
		Data:       string(payload),
	}, conflict)
	if err != nil {
		return fmt.Errorf("build set document query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *DocumentRepository) List(ctx context.Context, collection string) ([]document.Document, error) {
	query, args, err := qb.Select(qb.Columns(documentTableModel{})...).
		From(documentsTable).
		Where(qb.Eq("collection", collection)).
		OrderBy("doc_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list documents query: %w", err)
	}

	var rows []documentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}

	out := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := documentFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func documentFromRow(row documentTableModel) (document.Document, error) {
	fields := map[string]any{}
	if len(row.Data) > 0 {
		if err := sonic.Unmarshal(row.Data, &fields); err != nil {
			return document.Document{}, fmt.Errorf("decode document %s/%s: %w", row.Collection, row.DocID, err)
		}
	}
	return document.Document{ID: row.DocID, Fields: fields}, nil
}
