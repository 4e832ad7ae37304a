package auth

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
)

// Credentials are the fields of the login form.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Authenticator checks login credentials against stored users.
type Authenticator struct {
	users    UserLookup
	validate *validator.Validate
	logger   *logging.Logger
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(users UserLookup, logger *logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Authenticator{users: users, validate: validator.New(), logger: logger}
}

// Authorize returns the user matching creds, or nil when they are invalid.
// Invalid credentials are never an error; a failed user lookup is.
func (a *Authenticator) Authorize(ctx context.Context, creds Credentials) (*data.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := a.validate.Struct(creds); err != nil {
		a.reject(ctx, creds.Email, "malformed_credentials")
		return nil, nil
	}

	user, err := a.users.GetUser(ctx, creds.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		a.reject(ctx, creds.Email, "unknown_user")
		return nil, nil
	}

	ok, err := CheckPassword(user.Password, creds.Password)
	if err != nil {
		a.logger.WithContext(ctx).WithError(err).WithField("user_id", user.ID).Warn("Stored password hash is unusable")
	}
	if !ok {
		a.reject(ctx, creds.Email, "password_mismatch")
		return nil, nil
	}
	return user, nil
}

func (a *Authenticator) reject(ctx context.Context, email, reason string) {
	a.logger.LogSecurityEvent(ctx, "invalid_credentials", map[string]interface{}{
		"email":  email,
		"reason": reason,
	})
}
