package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/paintball-league/internal/domain/account"
	qb "github.com/riskibarqy/paintball-league/internal/platform/querybuilder"
)

const verificationsTable = "email_verifications"

type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, v account.Verification) error {
	query, args, err := qb.InsertModel(verificationsTable, verificationInsertModel{
		Token:     v.Token,
		UserID:    v.UserID,
		Email:     account.NormalizeEmail(v.Email),
		ExpiresAt: v.ExpiresAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build create verification query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: verification token", account.ErrDuplicate)
		}
		return fmt.Errorf("create verification: %w", err)
	}
	return nil
}

// Consume flips consumed_at in a single statement so concurrent callers
// cannot both redeem the same token.
func (r *VerificationRepository) Consume(ctx context.Context, token string, now time.Time) (account.Verification, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return account.Verification{}, false, nil
	}

	query, args, err := qb.Update(verificationsTable).
		Set("consumed_at", now.UTC()).
		Where(
			qb.Eq("token", token),
			qb.IsNull("consumed_at"),
			qb.Expr("expires_at > ?", now.UTC()),
		).
		Suffix("RETURNING " + strings.Join(qb.Columns(verificationTableModel{}), ", ")).
		ToSQL()
	if err != nil {
		return account.Verification{}, false, fmt.Errorf("build consume verification query: %w", err)
	}

	var row verificationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return account.Verification{}, false, nil
		}
		return account.Verification{}, false, fmt.Errorf("consume verification: %w", err)
	}

	return account.Verification{
		Token:      row.Token,
		UserID:     row.UserID,
		Email:      row.Email,
		ExpiresAt:  row.ExpiresAt,
		ConsumedAt: row.ConsumedAt,
		CreatedAt:  row.CreatedAt,
	}, true, nil
}

func (r *VerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := qb.DeleteFrom(verificationsTable).
		Where(qb.Lt("expires_at", now.UTC())).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete expired verifications query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired verifications: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired verifications rows affected: %w", err)
	}
	return affected, nil
}
