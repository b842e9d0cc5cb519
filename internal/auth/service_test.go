package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user          *models.User
	lastLoginSets int
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error {
	s.lastLoginSets++
	return nil
}

type stubSessionManager struct {
	token string
	err   error
	seen  []string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	s.seen = append(s.seen, accessID)
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront",
		ExpirationMinutes: 30,
	}
}

func TestServiceLoginSuccess(t *testing.T) {
	password := "hunter2-hunter2"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "johnd",
		Email:        "john@example.com",
		PasswordHash: mustHashPassword(t, password),
	}
	repo := &stubUserRepo{user: user}
	sessions := &stubSessionManager{token: "refresh-token"}
	cfg := testJWTConfig()

	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, JWTConfig: cfg})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "John@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("expected stubbed refresh token, got %q", resp.RefreshToken)
	}
	if resp.User == nil || resp.User.Username != "johnd" {
		t.Fatalf("expected user payload, got %+v", resp.User)
	}
	if repo.lastLoginSets != 1 {
		t.Fatalf("expected last login update, got %d", repo.lastLoginSets)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if len(sessions.seen) != 1 || sessions.seen[0] != claims.ID {
		t.Fatalf("refresh session should be keyed by the token jti")
	}
}

func TestServiceLoginUniformInvalidCredentials(t *testing.T) {
	password := "correct-password"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "johnd",
		Email:        "john@example.com",
		PasswordHash: mustHashPassword(t, password),
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SessionManager: &stubSessionManager{token: "x"},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{name: "unknown email", req: LoginRequest{Email: "ghost@example.com", Password: password}},
		{name: "wrong password", req: LoginRequest{Email: "john@example.com", Password: "nope-nope"}},
		{name: "blank email", req: LoginRequest{Password: password}},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			messages = append(messages, appErr.Message())
		})
	}
	for _, msg := range messages {
		if msg != invalidCredentialsMessage {
			t.Fatalf("credential failures must share one message, got %q", msg)
		}
	}
}

func TestServiceLoginSessionFailure(t *testing.T) {
	password := "correct-password"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "johnd",
		Email:        "john@example.com",
		PasswordHash: mustHashPassword(t, password),
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SessionManager: &stubSessionManager{err: errors.New("redis down")},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "john@example.com", Password: password})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
