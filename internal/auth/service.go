package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-event/internal/apperr"
	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	ErrInvalidToken       = apperr.Unauthorized("Invalid or expired token")
	ErrUsernameTaken      = apperr.Conflict("Username already exists")
)

// Claims is the JWT payload issued at login and registration.
type Claims struct {
	UserID   string      `json:"userId"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

type RegisterRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Options struct {
	Secret           string
	TokenTTL         time.Duration
	AllowAdminSignup bool
}

type Service struct {
	users            repository.UserRepository
	jwtSecret        []byte
	tokenTTL         time.Duration
	allowAdminSignup bool
	now              func() time.Time
}

func NewService(users repository.UserRepository, opts Options) *Service {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:            users,
		jwtSecret:        []byte(opts.Secret),
		tokenTTL:         ttl,
		allowAdminSignup: opts.AllowAdminSignup,
		now:              time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.AuthResponse, error) {
	if len(req.Username) < 3 {
		return nil, apperr.InvalidInput("Username must be at least 3 characters long")
	}
	if len(req.Password) < 6 {
		return nil, apperr.InvalidInput("Password must be at least 6 characters long")
	}

	role := req.Role
	if role == "" || !s.allowAdminSignup {
		role = models.RoleParticipant
	}
	if !role.Valid() {
		return nil, apperr.InvalidInput("Invalid role")
	}

	user, err := s.createUser(ctx, req.Username, req.Password, role)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return &models.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

// CreateAdmin seeds an administrator account regardless of the signup
// policy.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (*models.User, error) {
	if len(username) < 3 {
		return nil, apperr.InvalidInput("Username must be at least 3 characters long")
	}
	if len(password) < 6 {
		return nil, apperr.InvalidInput("Password must be at least 6 characters long")
	}
	return s.createUser(ctx, username, password, models.RoleAdmin)
}

func (s *Service) createUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*models.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, apperr.InvalidInput("Username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken verifies signature, algorithm and expiry. Every failure is
// reported as ErrInvalidToken.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
