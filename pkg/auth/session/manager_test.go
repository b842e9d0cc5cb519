package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	values map[string]string
	ttls   map[string]time.Duration

	setErr error
	getErr error
	delErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (m *mockStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.values, k)
		delete(m.ttls, k)
	}
	return nil
}

type mockKeyer struct{}

func (mockKeyer) AccessSessionKey(accessID string) string {
	return "session:access:" + accessID
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{
		store: store,
		keyer: mockKeyer{},
		ttl:   time.Hour,
	}
}

func TestGenerateStoresToken(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)

	accessID := NewAccessID()
	token, err := mgr.Generate(context.Background(), accessID)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}

	key := mockKeyer{}.AccessSessionKey(accessID)
	if store.values[key] != token {
		t.Fatalf("stored token %q does not match returned token %q", store.values[key], token)
	}
	if store.ttls[key] != time.Hour {
		t.Fatalf("expected ttl %s, got %s", time.Hour, store.ttls[key])
	}
}

func TestGenerateRequiresAccessID(t *testing.T) {
	mgr := newTestManager(newMockStore())
	if _, err := mgr.Generate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestRotateIssuesNewPair(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)

	oldID := NewAccessID()
	oldToken, err := mgr.Generate(context.Background(), oldID)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	newID, newToken, err := mgr.Rotate(context.Background(), oldID, oldToken)
	if err != nil {
		t.Fatalf("Rotate returned error: %v", err)
	}
	if newID == oldID {
		t.Fatal("expected a new access id")
	}
	if newToken == oldToken {
		t.Fatal("expected a new refresh token")
	}

	oldKey := mockKeyer{}.AccessSessionKey(oldID)
	if _, ok := store.values[oldKey]; ok {
		t.Fatal("old session should be deleted after rotation")
	}
	newKey := mockKeyer{}.AccessSessionKey(newID)
	if store.values[newKey] != newToken {
		t.Fatal("new session should be stored after rotation")
	}
}

func TestRotateRejectsMismatchedToken(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)

	accessID := NewAccessID()
	if _, err := mgr.Generate(context.Background(), accessID); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	_, _, err := mgr.Rotate(context.Background(), accessID, "not-the-token")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateUnknownSession(t *testing.T) {
	mgr := newTestManager(newMockStore())
	_, _, err := mgr.Rotate(context.Background(), NewAccessID(), "anything")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevokeDeletesSession(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)

	accessID := NewAccessID()
	if _, err := mgr.Generate(context.Background(), accessID); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if err := mgr.Revoke(context.Background(), accessID); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	has, err := mgr.HasSession(context.Background(), accessID)
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if has {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestHasSession(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)

	accessID := NewAccessID()
	has, err := mgr.HasSession(context.Background(), accessID)
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if has {
		t.Fatal("expected no session before Generate")
	}

	if _, err := mgr.Generate(context.Background(), accessID); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	has, err = mgr.HasSession(context.Background(), accessID)
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if !has {
		t.Fatal("expected session after Generate")
	}
}

func TestHasSessionPropagatesStoreError(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("redis down")
	mgr := newTestManager(store)

	if _, err := mgr.HasSession(context.Background(), NewAccessID()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
