package accounts

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS reset_tokens (
  token TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  expires_at TIMESTAMP NOT NULL
);
`

// SQLiteRepo is the dev-mode account store when no Postgres is configured.
type SQLiteRepo struct {
	DB *sql.DB
}

// NewSQLiteRepo creates the schema if needed.
func NewSQLiteRepo(ctx context.Context, db *sql.DB) (*SQLiteRepo, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, err
	}
	return &SQLiteRepo{DB: db}, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, account Account) error {
	now := time.Now().UTC()
	const query = `
INSERT INTO accounts (id, email, first_name, last_name, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		account.ID,
		strings.ToLower(account.Email),
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		now,
		now,
	)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "unique") {
		return ErrEmailTaken
	}
	return err
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	const query = `
SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
FROM accounts
WHERE email = ?
LIMIT 1`
	return scanAccount(r.DB.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (r *SQLiteRepo) GetByID(ctx context.Context, accountID string) (Account, error) {
	const query = `
SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
FROM accounts
WHERE id = ?
LIMIT 1`
	return scanAccount(r.DB.QueryRowContext(ctx, query, accountID))
}

func (r *SQLiteRepo) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), accountID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) SaveResetToken(ctx context.Context, token ResetToken) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reset_tokens (token, account_id, expires_at) VALUES (?, ?, ?)`,
		token.Token, token.AccountID, token.ExpiresAt)
	return err
}

func (r *SQLiteRepo) ConsumeResetToken(ctx context.Context, token string) (ResetToken, error) {
	var reset ResetToken
	err := r.DB.QueryRowContext(ctx,
		`SELECT token, account_id, expires_at FROM reset_tokens WHERE token = ? LIMIT 1`,
		token).Scan(&reset.Token, &reset.AccountID, &reset.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResetToken{}, ErrNotFound
		}
		return ResetToken{}, err
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM reset_tokens WHERE token = ?`, token); err != nil {
		return ResetToken{}, err
	}
	return reset, nil
}

func scanAccount(row *sql.Row) (Account, error) {
	var account Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return account, nil
}
