package postgres

import (
	"database/sql"
	"time"
)

type accountTableModel struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	PasswordHash  sql.NullString `db:"password_hash"`
	DisplayName   sql.NullString `db:"display_name"`
	GoogleSubject sql.NullString `db:"google_subject"`
	EmailVerified bool           `db:"email_verified"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type accountInsertModel struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	PasswordHash  sql.NullString `db:"password_hash"`
	DisplayName   sql.NullString `db:"display_name"`
	GoogleSubject sql.NullString `db:"google_subject"`
	EmailVerified bool           `db:"email_verified"`
}

type verificationTableModel struct {
	Token      string     `db:"token"`
	UserID     string     `db:"user_id"`
	Email      string     `db:"email"`
	ExpiresAt  time.Time  `db:"expires_at"`
	ConsumedAt *time.Time `db:"consumed_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

type verificationInsertModel struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
}
