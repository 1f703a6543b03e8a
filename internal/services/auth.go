package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ParseToken(token string) (models.Actor, error)
}

type AuthServiceImpl struct {
	store  *repositories.Store
	cfg    TokenConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(store *repositories.Store, cfg TokenConfig, log *zap.Logger) *AuthServiceImpl {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &AuthServiceImpl{store: store, cfg: cfg, logger: logger.OrNop(log), now: time.Now}
}

func (s *AuthServiceImpl) WithClock(now func() time.Time) *AuthServiceImpl {
	s.now = now
	return s
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindUnauthenticated, "invalid email or password")
		}
		s.logger.Error("failed to load user for login", zap.Error(err))
		return nil, internal(err, "failed to log in")
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, newError(KindUnauthenticated, "invalid email or password")
	}

	token, expiresAt, err := s.GenerateToken(models.Actor{ID: user.ID, Role: user.Role})
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, internal(err, "failed to log in")
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GenerateToken signs an HS256 token carrying user_id and role.
func (s *AuthServiceImpl) GenerateToken(actor models.Actor) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TTL)
	claims := jwt.MapClaims{
		"user_id": actor.ID,
		"role":    string(actor.Role),
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}
	if s.cfg.Issuer != "" {
		claims["iss"] = s.cfg.Issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthServiceImpl) ParseToken(tokenString string) (models.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return models.Actor{}, newError(KindUnauthenticated, "invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, newError(KindUnauthenticated, "invalid token claims")
	}
	actor, err := actorFromClaims(claims)
	if err != nil {
		return models.Actor{}, &Error{Kind: KindUnauthenticated, Message: "invalid token claims", Err: err}
	}
	return actor, nil
}

func actorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	// numeric claims decode as float64
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 || rawID != float64(int64(rawID)) {
		return models.Actor{}, fmt.Errorf("user_id claim missing or malformed")
	}
	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		return models.Actor{}, fmt.Errorf("unknown role %q", role)
	}
	return models.Actor{ID: int64(rawID), Role: models.Role(role)}, nil
}
