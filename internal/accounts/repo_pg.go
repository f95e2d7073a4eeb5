package accounts

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, account Account) error {
	const query = `
INSERT INTO accounts (id, email, first_name, last_name, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		account.ID,
		strings.ToLower(account.Email),
		account.FirstName,
		account.LastName,
		account.PasswordHash,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	const query = `
SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
FROM accounts
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (r *PGRepo) GetByID(ctx context.Context, accountID string) (Account, error) {
	const query = `
SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
FROM accounts
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, accountID))
}

func (r *PGRepo) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = now() WHERE id = $2`,
		passwordHash, accountID)
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

func (r *PGRepo) SaveResetToken(ctx context.Context, token ResetToken) error {
	const query = `
INSERT INTO reset_tokens (token, account_id, expires_at)
VALUES ($1, $2, $3)`
	_, err := r.DB.ExecContext(ctx, query, token.Token, token.AccountID, token.ExpiresAt)
	return err
}

func (r *PGRepo) ConsumeResetToken(ctx context.Context, token string) (ResetToken, error) {
	const query = `
DELETE FROM reset_tokens
WHERE token = $1
RETURNING token, account_id, expires_at`
	var reset ResetToken
	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx, query, token).Scan(&reset.Token, &reset.AccountID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResetToken{}, ErrNotFound
		}
		return ResetToken{}, err
	}
	reset.ExpiresAt = expiresAt
	return reset, nil
}

func (r *PGRepo) scanOne(row *sql.Row) (Account, error) {
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
