package accounts

import "context"

var (
	ErrNotFound   = errNotFound{}
	ErrEmailTaken = errEmailTaken{}
)

type errNotFound struct{}

func (errNotFound) Error() string { return "account not found" }

type errEmailTaken struct{}

func (errEmailTaken) Error() string { return "email already registered" }

type Repo interface {
	Create(ctx context.Context, account Account) error
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, accountID string) (Account, error)
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
	SaveResetToken(ctx context.Context, token ResetToken) error
	// ConsumeResetToken returns and invalidates the token in one step.
	ConsumeResetToken(ctx context.Context, token string) (ResetToken, error)
}
