package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sentiment-scoop/internal/shared/auth"
	"sentiment-scoop/internal/shared/telemetry"
)

const resetTokenTTL = time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrMissingFields      = errors.New("all fields are required")
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, password string) (Account, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.ToLower(strings.TrimSpace(email))
	if firstName == "" || lastName == "" || email == "" || password == "" {
		return Account{}, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, account); err != nil {
		return Account{}, err
	}
	telemetry.Info("accounts.registered", map[string]any{"account_id": account.ID})
	return account, nil
}

// Login verifies credentials and returns a signed JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	account, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := auth.SignJWT(auth.Claims{Sub: account.ID, Email: account.Email})
	if err != nil {
		return "", err
	}
	return token, nil
}

// ForgotPassword issues a single-use reset token for the account. Unknown
// emails return ErrNotFound so the handler can decide what to disclose.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrMissingFields
	}
	account, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token := ResetToken{
		Token:     uuid.NewString(),
		AccountID: account.ID,
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}
	if err := s.Repo.SaveResetToken(ctx, token); err != nil {
		return "", err
	}
	telemetry.Info("accounts.reset_token_issued", map[string]any{"account_id": account.ID})
	return token.Token, nil
}

// ResetPassword consumes the token and installs the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return ErrMissingFields
	}

	reset, err := s.Repo.ConsumeResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if time.Now().UTC().After(reset.ExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, reset.AccountID, string(hash)); err != nil {
		return err
	}
	telemetry.Info("accounts.password_reset", map[string]any{"account_id": reset.AccountID})
	return nil
}

// GetByID loads the account backing a verified token.
func (s *Service) GetByID(ctx context.Context, accountID string) (Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return Account{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, accountID)
}
