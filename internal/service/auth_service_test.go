package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rcmalta/laytrack/internal/config"
	"github.com/rcmalta/laytrack/internal/domain"
	"github.com/rcmalta/laytrack/internal/service"
)

// ── In-memory doubles ─────────────────────────────────────────────────────────

// memUserStore keeps users in a map so the auth flows can run without a
// database.
type memUserStore struct {
	byEmail map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]*domain.User)}
}

func (s *memUserStore) Create(_ context.Context, u *domain.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	cp := *u
	s.byEmail[u.Email] = &cp
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) Confirm(_ context.Context, token string) error {
	for _, u := range s.byEmail {
		if u.ConfirmToken != nil && *u.ConfirmToken == token && u.ConfirmedAt == nil {
			now := time.Now().UTC()
			u.ConfirmedAt = &now
			u.ConfirmToken = nil
			return nil
		}
	}
	return domain.ErrInvalidConfirmToken
}

func (s *memUserStore) UpdateConfirmToken(_ context.Context, id uuid.UUID, token string) error {
	for _, u := range s.byEmail {
		if u.ID == id && u.ConfirmedAt == nil {
			t := token
			u.ConfirmToken = &t
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// memMailer records delivered tokens and can simulate an SMTP outage.
type memMailer struct {
	fail bool
	sent []string
}

func (m *memMailer) SendConfirmation(_, _, token string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, token)
	return nil
}

func authTestCfg() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-abcdefghijklmnopqrstuv",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 30 * 24 * time.Hour,
		},
	}
}

// ── Registration / confirmation flow ──────────────────────────────────────────

// TestRegisterSurvivesMailOutage: the account is created even when the
// confirmation mail cannot be delivered, so the address is never stranded
// in a state where neither login nor re-registration works. A resend then
// recovers the flow end to end.
func TestRegisterSurvivesMailOutage(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	mail := &memMailer{fail: true}
	svc := service.NewAuthService(store, mail, authTestCfg())

	req := service.RegisterRequest{
		Email:       "punter@example.com",
		Password:    "password123",
		DisplayName: "Punter",
	}
	resp, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register during mail outage: %v", err)
	}
	if resp.User.Email != req.Email {
		t.Errorf("registered email = %s, want %s", resp.User.Email, req.Email)
	}

	stored, err := store.GetByEmail(ctx, req.Email)
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.Confirmed() {
		t.Error("fresh account must be unconfirmed")
	}
	staleToken := *stored.ConfirmToken

	// Outage over: resend rotates the token and delivers the new link.
	mail.fail = false
	if err := svc.ResendConfirmation(ctx, req.Email); err != nil {
		t.Fatalf("ResendConfirmation: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mail.sent))
	}
	freshToken := mail.sent[0]
	if freshToken == staleToken {
		t.Error("resend must rotate the confirmation token")
	}

	// The old link is dead, the new one confirms.
	if err := svc.Confirm(ctx, staleToken); !errors.Is(err, domain.ErrInvalidConfirmToken) {
		t.Errorf("stale token: err = %v, want ErrInvalidConfirmToken", err)
	}
	if err := svc.Confirm(ctx, freshToken); err != nil {
		t.Fatalf("Confirm with fresh token: %v", err)
	}

	if _, err := svc.Login(ctx, req.Email, req.Password); err != nil {
		t.Errorf("Login after confirmation: %v", err)
	}
}

// TestLoginBlockedUntilConfirmed pins the confirmation gate: the right
// password alone does not open a session.
func TestLoginBlockedUntilConfirmed(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	mail := &memMailer{}
	svc := service.NewAuthService(store, mail, authTestCfg())

	req := service.RegisterRequest{
		Email:       "eager@example.com",
		Password:    "password123",
		DisplayName: "Eager",
	}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, req.Email, req.Password); !errors.Is(err, domain.ErrEmailNotConfirmed) {
		t.Fatalf("unconfirmed login err = %v, want ErrEmailNotConfirmed", err)
	}

	if len(mail.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mail.sent))
	}
	if err := svc.Confirm(ctx, mail.sent[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, req.Email, req.Password); err != nil {
		t.Errorf("confirmed login err = %v", err)
	}
}

// TestResendIsGeneric: unknown and already confirmed addresses both
// succeed silently with nothing sent, so the endpoint leaks nothing.
func TestResendIsGeneric(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	mail := &memMailer{}
	svc := service.NewAuthService(store, mail, authTestCfg())

	if err := svc.ResendConfirmation(ctx, "nobody@example.com"); err != nil {
		t.Errorf("unknown address: %v", err)
	}

	req := service.RegisterRequest{
		Email:       "done@example.com",
		Password:    "password123",
		DisplayName: "Done",
	}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatal(err)
	}
	if err := svc.Confirm(ctx, mail.sent[0]); err != nil {
		t.Fatal(err)
	}

	before := len(mail.sent)
	if err := svc.ResendConfirmation(ctx, req.Email); err != nil {
		t.Errorf("confirmed address: %v", err)
	}
	if len(mail.sent) != before {
		t.Errorf("confirmed address must not trigger mail, sent %d", len(mail.sent)-before)
	}
}

// ── Token parsing ─────────────────────────────────────────────────────────────

func signTestToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := service.AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: "access",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// TestParseAccessTokenExpiry distinguishes an expired token from a
// malformed one: the former maps to ErrTokenExpired, the latter to
// ErrTokenInvalid.
func TestParseAccessTokenExpiry(t *testing.T) {
	cfg := authTestCfg()
	svc := service.NewAuthService(nil, nil, cfg)

	expired := signTestToken(t, cfg.JWT.Secret, time.Now().Add(-time.Hour))
	if _, err := svc.ParseAccessToken(expired); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expired token err = %v, want ErrTokenExpired", err)
	}

	live := signTestToken(t, cfg.JWT.Secret, time.Now().Add(time.Hour))
	if _, err := svc.ParseAccessToken(live); err != nil {
		t.Errorf("live token err = %v", err)
	}

	if _, err := svc.ParseAccessToken("not.a.token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("garbage token err = %v, want ErrTokenInvalid", err)
	}

	wrongKey := signTestToken(t, "some-other-secret-value", time.Now().Add(time.Hour))
	if _, err := svc.ParseAccessToken(wrongKey); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("wrong-key token err = %v, want ErrTokenInvalid", err)
	}
}
