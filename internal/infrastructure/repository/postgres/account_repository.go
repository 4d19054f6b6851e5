package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/paintball-league/internal/domain/account"
	qb "github.com/riskibarqy/paintball-league/internal/platform/querybuilder"
)

const accountsTable = "accounts"

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (account.Account, bool, error) {
	return r.getBy(ctx, "id", strings.TrimSpace(id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (account.Account, bool, error) {
	return r.getBy(ctx, "email", account.NormalizeEmail(email))
}

func (r *AccountRepository) GetByGoogleSubject(ctx context.Context, subject string) (account.Account, bool, error) {
	return r.getBy(ctx, "google_subject", strings.TrimSpace(subject))
}

func (r *AccountRepository) getBy(ctx context.Context, column, value string) (account.Account, bool, error) {
	if value == "" {
		return account.Account{}, false, nil
	}

	query, args, err := qb.Select(qb.Columns(accountTableModel{})...).
		From(accountsTable).
		Where(qb.Eq(column, value)).
		Limit(1).
		ToSQL()
	if err != nil {
		return account.Account{}, false, fmt.Errorf("build get account by %s query: %w", column, err)
	}

	var row accountTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return account.Account{}, false, nil
		}
		return account.Account{}, false, fmt.Errorf("get account by %s: %w", column, err)
	}

	return accountFromRow(row), true, nil
}

func (r *AccountRepository) Create(ctx context.Context, acc account.Account) error {
	insertModel := accountInsertModel{
		ID:            strings.TrimSpace(acc.ID),
		Email:         account.NormalizeEmail(acc.Email),
		PasswordHash:  nullableString(acc.PasswordHash),
		DisplayName:   nullableString(strings.TrimSpace(acc.DisplayName)),
		GoogleSubject: nullableString(strings.TrimSpace(acc.GoogleSubject)),
		EmailVerified: acc.EmailVerified,
	}

	query, args, err := qb.InsertModel(accountsTable, insertModel, "")
	if err != nil {
		return fmt.Errorf("build create account query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", account.ErrDuplicate, insertModel.Email)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, acc account.Account) error {
	query, args, err := qb.Update(accountsTable).
		Set("email", account.NormalizeEmail(acc.Email)).
		Set("password_hash", nullableString(acc.PasswordHash)).
		Set("display_name", nullableString(strings.TrimSpace(acc.DisplayName))).
		Set("google_subject", nullableString(strings.TrimSpace(acc.GoogleSubject))).
		Set("email_verified", acc.EmailVerified).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", strings.TrimSpace(acc.ID))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update account query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", account.ErrDuplicate, acc.Email)
		}
		return fmt.Errorf("update account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id=%s", account.ErrNotFound, acc.ID)
	}
	return nil
}

// Delete also removes the account's verification tokens through the foreign key.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.DeleteFrom(accountsTable).
		Where(qb.Eq("id", strings.TrimSpace(id))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete account query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func accountFromRow(row accountTableModel) account.Account {
	return account.Account{
		ID:            row.ID,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash.String,
		DisplayName:   row.DisplayName.String,
		GoogleSubject: row.GoogleSubject.String,
		EmailVerified: row.EmailVerified,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
