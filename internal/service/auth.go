package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fanpicks/platform/internal/auth"
	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and profile lookup.
type AuthService struct {
	pool   *pgxpool.Pool
	users  repository.UserRepository
	outbox repository.OutboxRepository
	jwtMgr *auth.JWTManager
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	jwtMgr *auth.JWTManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{pool: pool, users: users, outbox: outbox, jwtMgr: jwtMgr, logger: logger}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	Username      string `json:"username" validate:"required"`
	WalletAddress string `json:"wallet_address"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates an account. A wallet address, when given, links the
// account to entries mirrored from chain.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	var wallet *string
	if input.WalletAddress != "" {
		if err := domain.ValidateWalletAddress(input.WalletAddress); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		wallet = &input.WalletAddress
	}

	existing, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user := &domain.User{
		ID:            uuid.New(),
		Username:      input.Username,
		Email:         input.Email,
		WalletAddress: wallet,
		ImageURL:      domain.DefaultUserImageURL,
		PasswordHash:  string(hash),
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, domain.ErrConflict("email, username or wallet already registered")
		}
		return nil, domain.ErrInternal("create user", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewUserCreatedEvent(user, "register")); err != nil {
		return nil, domain.ErrInternal("write outbox", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issue(auth.RealmPlayer, user)
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a player and returns a player-realm token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.issue(auth.RealmPlayer, user)
}

// AdminLogin authenticates an administrator and returns an admin-realm token.
func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, domain.ErrForbidden("account is not an administrator")
	}
	return s.issue(auth.RealmAdmin, user)
}

func (s *AuthService) authenticate(ctx context.Context, input LoginInput) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, s.pool, strings.TrimSpace(input.Email))
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	// Wallet-only accounts have no password and cannot log in this way.
	if user == nil || user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	return user, nil
}

func (s *AuthService) issue(realm auth.Realm, user *domain.User) (*AuthResult, error) {
	id := auth.Identity{UserID: user.ID, Email: user.Email, Role: auth.RolePlayer}
	if realm == auth.RealmAdmin {
		id.Role = auth.RoleAdmin
	}
	if user.WalletAddress != nil {
		id.WalletAddress = *user.WalletAddress
	}

	token, err := s.jwtMgr.GenerateToken(realm, id)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}
