package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/contracts"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

// UserService covers the request/response account flows: registration, login,
// password reset, admin creation. The chat core only consumes the records
// these produce.
type UserService struct {
	dir        domain.UserDirectory
	tokens     *TokenService
	tx         contracts.TxRunner
	mailer     contracts.Mailer
	limiter    contracts.RateLimiter
	resetGuard contracts.ResetTokenStore
	publicURL  string
	resetTTL   time.Duration
	log        *slog.Logger
}

func NewUserService(
	log *slog.Logger,
	dir domain.UserDirectory,
	tokens *TokenService,
	tx contracts.TxRunner,
	mailer contracts.Mailer,
	limiter contracts.RateLimiter,
	resetGuard contracts.ResetTokenStore,
	publicURL string,
	resetTTL time.Duration,
) *UserService {
	return &UserService{
		log:        log,
		dir:        dir,
		tokens:     tokens,
		tx:         tx,
		mailer:     mailer,
		limiter:    limiter,
		resetGuard: resetGuard,
		publicURL:  publicURL,
		resetTTL:   resetTTL,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	// duplicate check and insert run in one transaction
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if existing, err := s.dir.GetByEmail(txCtx, email); err == nil && existing != nil {
			return domain.ErrUserExists
		}
		return s.dir.Create(txCtx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues a session token. Attempts are rate
// limited per email.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	allowed, err := s.limiter.Allow(ctx, "login:"+email)
	if err != nil {
		// a limiter outage must not lock everyone out
		s.log.WarnContext(ctx, "users - rate limiter unavailable", "err", err)
	} else if !allowed {
		return "", nil, domain.ErrRateLimited
	}
	user, err := s.dir.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// RequestPasswordReset mails a time-limited reset link to a known account.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.dir.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	token, err := s.tokens.IssueResetToken(user.ID)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password.html?token=%s", s.publicURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		s.log.ErrorContext(ctx, "users - reset mail failed", "email", email, "err", err)
		return err
	}
	return nil
}

// ResetPassword verifies the reset token, enforces single use, and stores the
// new password hash.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}
	userID, tokenID, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return err
	}
	first, err := s.resetGuard.UseOnce(ctx, tokenID, s.resetTTL)
	if err != nil {
		return err
	}
	if !first {
		return domain.ErrResetTokenUsed
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.dir.UpdatePassword(ctx, userID, string(hash))
}

// CreateAdmin registers an admin account. The caller is responsible for
// having already checked that the requester is an admin.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	return s.Register(ctx, name, email, password, domain.RoleAdmin)
}
