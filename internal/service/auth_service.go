package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Messages returned by the auth flows.
const (
	MsgEmailNotAuthorised  = "Email Address is not Authorised"
	MsgAccountTaken        = "Username or Email already taken"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgCredentialsRequired = "Username and Password are required"
)

// AuthService coordinates registration, login and logout.
type AuthService struct {
	store         repository.Store
	tokenMgr      *auth.TokenManager
	revoker       auth.Revoker
	bcryptCost    int
	allowedDomain string
	logger        *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Store   repository.Store
	Tokens  *auth.TokenManager
	Revoker auth.Revoker
	Logger  *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)
	}
	revoker := deps.Revoker
	if revoker == nil {
		revoker = auth.NewMemoryRevoker()
	}
	return &AuthService{
		store:         deps.Store,
		tokenMgr:      tokens,
		revoker:       revoker,
		bcryptCost:    cfg.BcryptCost,
		allowedDomain: strings.ToLower(strings.TrimPrefix(cfg.AllowedEmailDomain, "@")),
		logger:        logger,
	}
}

// Register creates an agent account. Only addresses in the allowed domain
// may register.
func (s *AuthService) Register(ctx context.Context, payload validation.Payload) (*domain.User, error) {
	draft, err := validation.Registration(payload)
	if err != nil {
		return nil, err
	}
	if s.allowedDomain != "" && !strings.HasSuffix(draft.Email, "@"+s.allowedDomain) {
		return nil, apperrors.NewForbidden(MsgEmailNotAuthorised)
	}

	hash, err := auth.HashPassword(draft.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         draft.Name,
		Username:     draft.Username,
		Email:        draft.Email,
		PasswordHash: hash,
	}
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		taken, err := r.Users.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicate
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.NewConflict(MsgAccountTaken, nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("agent registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *domain.Token, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, apperrors.NewValidationError(MsgCredentialsRequired, nil)
	}

	user, err := s.store.Repos().Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorized(MsgInvalidCredentials)
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized(MsgInvalidCredentials)
	}

	token, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// Logout revokes the token behind principal for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := s.revoker.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Revoker exposes the revocation list for middleware usage.
func (s *AuthService) Revoker() auth.Revoker {
	return s.revoker
}
