package services

import (
	"context"
	"errors"
	"testing"

	"MotoZonePos/app/models"
)

// newTestAuth isolates the key and session files in a temp config dir and
// returns an auth service running against the offline fallback.
func newTestAuth(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	env := newTestEnv(t)
	env.goOffline(t)
	auth := NewAuthService(env.client, env.store, env.status, env.data, env.logger, env.cfg)
	return env, auth
}

func TestOfflineLoginSeededUser(t *testing.T) {
	env, auth := newTestAuth(t)
	ctx := context.Background()

	user, err := auth.Login(ctx, "admin@motozone.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", user.Role)
	}
	if !auth.IsAdmin() {
		t.Error("IsAdmin false for admin user")
	}
	if !auth.IsOfflineSession() {
		t.Error("session not flagged offline")
	}
	if auth.SessionToken() == "" {
		t.Error("no session token issued")
	}

	// The gateway opens once a session exists
	if _, err := env.data.FetchProducts(ctx); err != nil {
		t.Errorf("gateway closed after login: %v", err)
	}
}

func TestOfflineLoginWrongPassword(t *testing.T) {
	_, auth := newTestAuth(t)

	if _, err := auth.Login(context.Background(), "admin@motozone.com", "nope"); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
	if auth.IsAuthenticated() {
		t.Error("session established with wrong password")
	}
}

func TestOfflineLoginDemoPassword(t *testing.T) {
	_, auth := newTestAuth(t)

	user, err := auth.Login(context.Background(), "anyone@example.com", "demo")
	if err != nil {
		t.Fatalf("demo login: %v", err)
	}
	if user.ID != "demo-user-001" {
		t.Errorf("demo user id = %q", user.ID)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("demo role = %q, want admin", user.Role)
	}
	if user.Email != "anyone@example.com" {
		t.Errorf("demo email = %q", user.Email)
	}
}

func TestOfflineLoginUnknownEmailBadPassword(t *testing.T) {
	_, auth := newTestAuth(t)

	if _, err := auth.Login(context.Background(), "anyone@example.com", "letmein"); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLogoutClosesGateway(t *testing.T) {
	env, auth := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Login(ctx, "admin@motozone.com", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := env.data.FetchProducts(ctx); err != nil {
		t.Fatalf("fetch while logged in: %v", err)
	}

	auth.Logout()

	if auth.IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
	if auth.SessionToken() != "" {
		t.Error("token survived logout")
	}
	if _, err := env.data.FetchProducts(ctx); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("gateway open after logout: err = %v", err)
	}
}

func TestForcedLogoutOnRejectedToken(t *testing.T) {
	env, auth := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Login(ctx, "admin@motozone.com", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// The gateway reports a rejected token; the session must end
	env.data.handleUnauthorized(models.ErrUnauthorized)

	if auth.IsAuthenticated() {
		t.Error("session survived a rejected token")
	}
}

func TestRestoreOfflineSession(t *testing.T) {
	env, auth := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Login(ctx, "empleado@motozone.com", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A fresh service instance picks the persisted session back up
	restored := NewAuthService(env.client, env.store, env.status, env.data, env.logger, env.cfg)
	user, err := restored.RestoreSession(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if user == nil {
		t.Fatal("no session restored")
	}
	if user.Email != "empleado@motozone.com" {
		t.Errorf("restored email = %q", user.Email)
	}
	if !restored.IsOfflineSession() {
		t.Error("restored session not flagged offline")
	}
}

func TestRestoreWithNoPersistedSession(t *testing.T) {
	_, auth := newTestAuth(t)

	user, err := auth.RestoreSession(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if user != nil {
		t.Errorf("restored a session out of thin air: %+v", user)
	}
}

func TestOfflineRegister(t *testing.T) {
	env, auth := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "nuevo@motozone.com", "secreto1", "Nuevo Empleado", "superuser"); err == nil {
		t.Error("invalid role accepted")
	}

	user, err := auth.Register(ctx, "nuevo@motozone.com", "secreto1", "Nuevo Empleado", models.RoleEmployee)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleEmployee {
		t.Errorf("role = %q", user.Role)
	}
	if !auth.IsAuthenticated() {
		t.Error("register did not open a session")
	}

	stored, err := env.store.UserByEmail("nuevo@motozone.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "secreto1" {
		t.Error("password stored without hashing")
	}
}
