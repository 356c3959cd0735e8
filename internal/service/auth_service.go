package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rcmalta/laytrack/internal/config"
	"github.com/rcmalta/laytrack/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Request / Response types
// ──────────────────────────────────────────────────────────────────────────────

// RegisterRequest contains the fields required to create a new account.
type RegisterRequest struct {
	Email       string `json:"email"        binding:"required,email"`
	Password    string `json:"password"     binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,min=2,max=100"`
}

// RegisterResponse is returned on successful registration. No tokens are
// issued yet: the account must confirm its email before the first sign-in.
type RegisterResponse struct {
	User    domain.PublicProfile `json:"user"`
	Message string               `json:"message"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	User         domain.PublicProfile `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// TokenPair holds both tokens returned by generateTokenPair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ──────────────────────────────────────────────────────────────────────────────
// JWT claims
// ──────────────────────────────────────────────────────────────────────────────

// AppClaims extends jwt.RegisteredClaims with application-specific fields.
type AppClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"` // "access" or "refresh"
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthService
// ──────────────────────────────────────────────────────────────────────────────

// ConfirmationMailer delivers the email-confirmation link.
type ConfirmationMailer interface {
	SendConfirmation(to, displayName, token string) error
}

// UserStore is the persistence surface AuthService depends on.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Confirm(ctx context.Context, token string) error
	UpdateConfirmToken(ctx context.Context, id uuid.UUID, token string) error
}

// AuthService handles registration, email confirmation, login, and JWT
// token operations.
type AuthService struct {
	userRepo UserStore
	mailer   ConfirmationMailer
	cfg      *config.Config
}

// NewAuthService creates an AuthService.
func NewAuthService(userRepo UserStore, mailer ConfirmationMailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Register / Confirm
// ──────────────────────────────────────────────────────────────────────────────

// Register creates a new account in the unconfirmed state and mails the
// confirmation link. Sign-in stays blocked until Confirm is called with
// the mailed token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("auth_service.Register: hash: %w", err)
	}

	token, err := newConfirmToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service.Register: token: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		ConfirmToken: &token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// The row is already committed; a failed send is recoverable through
	// ResendConfirmation. The mailer logs the failure.
	_ = s.mailer.SendConfirmation(user.Email, user.DisplayName, token)

	return &RegisterResponse{
		User:    user.ToPublicProfile(),
		Message: "account created — check your email to confirm before signing in",
	}, nil
}

// ResendConfirmation rotates the confirmation token of an unconfirmed
// account and mails a fresh link, invalidating any earlier one. Unknown
// or already confirmed addresses return nil so the endpoint does not
// reveal which emails are registered.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if user.Confirmed() {
		return nil
	}

	token, err := newConfirmToken()
	if err != nil {
		return fmt.Errorf("auth_service.ResendConfirmation: token: %w", err)
	}
	if err := s.userRepo.UpdateConfirmToken(ctx, user.ID, token); err != nil {
		return err
	}
	if err := s.mailer.SendConfirmation(user.Email, user.DisplayName, token); err != nil {
		return fmt.Errorf("auth_service.ResendConfirmation: send: %w", err)
	}
	return nil
}

// Confirm activates the account carrying the given confirmation token.
func (s *AuthService) Confirm(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidConfirmToken
	}
	return s.userRepo.Confirm(ctx, token)
}

// ──────────────────────────────────────────────────────────────────────────────
// Login / Refresh
// ──────────────────────────────────────────────────────────────────────────────

// Login validates credentials and returns a fresh token pair. Unconfirmed
// accounts are rejected even with the right password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Map not-found to a generic credential error to prevent user enumeration.
		return nil, domain.ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, domain.ErrEmailNotConfirmed
	}

	pair, err := s.generateTokenPair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service.Login: tokens: %w", err)
	}

	return &LoginResponse{
		User:         user.ToPublicProfile(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// RefreshToken validates a refresh token and issues a new token pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if claims.TokenType != "refresh" {
		return "", "", domain.ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", "", domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", "", domain.ErrUserNotFound
	}
	if !user.Confirmed() {
		return "", "", domain.ErrEmailNotConfirmed
	}

	pair, err := s.generateTokenPair(user.ID)
	if err != nil {
		return "", "", fmt.Errorf("auth_service.RefreshToken: %w", err)
	}
	return pair.AccessToken, pair.RefreshToken, nil
}

// GetProfile returns the public profile for an authenticated user.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.ToPublicProfile()
	return &profile, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Token helpers
// ──────────────────────────────────────────────────────────────────────────────

// generateTokenPair creates a signed access token (AccessTTL) and a signed
// refresh token (RefreshTTL) for the given user.
func (s *AuthService) generateTokenPair(userID uuid.UUID) (TokenPair, error) {
	now := time.Now().UTC()
	secret := []byte(s.cfg.JWT.Secret) // same secret for both; type claim differentiates

	accessClaims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTTL)),
		},
		TokenType: "access",
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshClaims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.RefreshTTL)),
		},
		TokenType: "refresh",
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// parseToken validates the token signature, algorithm, and expiry.
// A token past its TTL maps to domain.ErrTokenExpired; every other
// failure maps to domain.ErrTokenInvalid.
func (s *AuthService) parseToken(tokenString string) (*AppClaims, error) {
	secret := []byte(s.cfg.JWT.Secret)
	tok, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, domain.ErrTokenInvalid
	}
	claims, ok := tok.Claims.(*AppClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// ParseAccessToken is exported for use by the JWT middleware.
func (s *AuthService) ParseAccessToken(tokenString string) (*AppClaims, error) {
	return s.parseToken(tokenString)
}

// newConfirmToken returns a 64-hex-char random token.
func newConfirmToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
