package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"MotoZonePos/app/backend"
	"MotoZonePos/app/config"
	"MotoZonePos/app/database"
	"MotoZonePos/app/models"
	"MotoZonePos/app/security"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// Passwords accepted offline for any unknown email, yielding the demo
// account. They exist so the app is usable out of the box with no backend.
var demoPasswords = map[string]bool{
	"demo":     true,
	"123456":   true,
	"password": true,
	"admin":    true,
}

const sessionFileName = "session.json"

// AuthService manages the user session. Online it authenticates against the
// backend and holds the bearer token; offline it verifies credentials
// against the local store (or the demo passwords) and signs its own session
// token. The session is persisted encrypted so a restart restores it.
type AuthService struct {
	client *backend.Client
	store  *database.Store
	status *StatusService
	data   *DataService
	logger *LoggerService
	cfg    *config.AppConfig

	mu          sync.RWMutex
	currentUser *models.User
	offline     bool
}

// NewAuthService creates the auth service and wires the forced-logout hook:
// a 401 from any gateway call ends the session.
func NewAuthService(client *backend.Client, store *database.Store, status *StatusService, data *DataService, logger *LoggerService, cfg *config.AppConfig) *AuthService {
	service := &AuthService{
		client: client,
		store:  store,
		status: status,
		data:   data,
		logger: logger,
		cfg:    cfg,
	}
	data.OnUnauthorized(service.ForceLogout)
	return service
}

// CurrentUser returns the logged-in user, or nil
func (s *AuthService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	user := *s.currentUser
	return &user
}

// SessionToken returns the active session's bearer token, empty when
// logged out. REST clients present it on every request.
func (s *AuthService) SessionToken() string {
	return s.client.Token()
}

// IsAuthenticated reports whether a session is active
func (s *AuthService) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// IsAdmin reports whether the session user has the admin role
func (s *AuthService) IsAdmin() bool {
	user := s.CurrentUser()
	return user != nil && user.IsAdmin()
}

// IsOfflineSession reports whether the session was established offline
func (s *AuthService) IsOfflineSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offline
}

// Login authenticates with the active data source. Online it trades the
// credentials for a backend token; offline it checks the local store and
// the demo passwords and signs a local session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if s.status.IsOffline() {
		return s.loginOffline(email, password)
	}

	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.client.SetToken(result.Token)
	s.establishSession(&result.User, false)
	s.persistSession(&models.StoredSession{Token: result.Token, SavedAt: time.Now()})
	s.logger.LogInfo("User logged in", email)
	return s.CurrentUser(), nil
}

// loginOffline verifies credentials locally. Seeded accounts use bcrypt;
// any other email works with one of the demo passwords.
func (s *AuthService) loginOffline(email, password string) (*models.User, error) {
	if err := s.store.EnsureSeeded(); err != nil {
		s.logger.LogError("Failed to seed local store before offline login", err)
	}

	user, err := s.store.UserByEmail(email)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return nil, models.ErrUnauthorized
		}
	case errors.Is(err, models.ErrNotFound):
		if !demoPasswords[password] {
			return nil, models.ErrUnauthorized
		}
		user = &models.User{
			ID:    "demo-user-001",
			Email: email,
			Name:  "Usuario Demo",
			Role:  models.RoleAdmin,
		}
	default:
		return nil, err
	}

	token, err := s.signOfflineToken(user)
	if err != nil {
		return nil, err
	}

	s.client.SetToken(token)
	s.establishSession(user, true)
	s.persistSession(&models.StoredSession{Offline: true, Token: token, OfflineUser: user, SavedAt: time.Now()})
	s.logger.LogInfo("User logged in offline", email)
	return s.CurrentUser(), nil
}

// Register creates an account on the active data source and logs it in
func (s *AuthService) Register(ctx context.Context, email, password, name, role string) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleEmployee {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	if s.status.IsOffline() {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user := &models.User{Email: email, Name: name, Role: role, PasswordHash: string(hash)}
		if err := s.store.AddUser(user); err != nil {
			return nil, err
		}
		return s.loginOffline(email, password)
	}

	result, err := s.client.Register(ctx, email, password, name, role)
	if err != nil {
		return nil, err
	}

	s.client.SetToken(result.Token)
	s.establishSession(&result.User, false)
	s.persistSession(&models.StoredSession{Token: result.Token, SavedAt: time.Now()})
	s.logger.LogInfo("User registered", email)
	return s.CurrentUser(), nil
}

// Logout ends the session: token cleared, caches reset, persisted session
// removed.
func (s *AuthService) Logout() {
	s.mu.Lock()
	s.currentUser = nil
	s.offline = false
	s.mu.Unlock()

	s.client.ClearToken()
	s.data.Reset()
	s.removePersistedSession()
	s.logger.LogInfo("User logged out")
}

// ForceLogout ends the session after the backend rejected the token
func (s *AuthService) ForceLogout() {
	if !s.IsAuthenticated() {
		return
	}
	s.logger.LogWarning("Session token rejected by backend, forcing logout")
	s.Logout()
}

// RestoreSession tries to resume a persisted session. Call it after the
// first connectivity probe so online tokens are validated against the
// backend when it is reachable. Returns the restored user, or nil when no
// valid session exists.
func (s *AuthService) RestoreSession(ctx context.Context) (*models.User, error) {
	stored, err := s.loadPersistedSession()
	if err != nil || stored == nil {
		return nil, err
	}

	if stored.Offline {
		if stored.OfflineUser == nil || !s.validateOfflineToken(stored.Token) {
			s.removePersistedSession()
			return nil, nil
		}
		s.client.SetToken(stored.Token)
		s.establishSession(stored.OfflineUser, true)
		s.logger.LogInfo("Offline session restored", stored.OfflineUser.Email)
		return s.CurrentUser(), nil
	}

	s.client.SetToken(stored.Token)
	if s.status.IsOffline() {
		// Cannot validate against the backend; keep the token and wait
		// for the first authenticated call to confirm or reject it.
		return nil, nil
	}

	user, err := s.client.Profile(ctx)
	if err != nil {
		s.client.ClearToken()
		s.removePersistedSession()
		if errors.Is(err, models.ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}

	s.establishSession(user, false)
	s.logger.LogInfo("Session restored", user.Email)
	return s.CurrentUser(), nil
}

// establishSession records the user and opens the data gateway
func (s *AuthService) establishSession(user *models.User, offline bool) {
	s.mu.Lock()
	s.currentUser = user
	s.offline = offline
	s.mu.Unlock()
	s.data.SetAuthorized(true)
}

// --- Offline session tokens ---

type offlineClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// signOfflineToken issues a 24h session token for an offline login
func (s *AuthService) signOfflineToken(user *models.User) (string, error) {
	secret := s.cfg.Server.JWTSecret
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}

	claims := offlineClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validateOfflineToken checks signature and expiry of a local session token
func (s *AuthService) validateOfflineToken(tokenString string) bool {
	secret := s.cfg.Server.JWTSecret
	if secret == "" {
		return false
	}

	token, err := jwt.ParseWithClaims(tokenString, &offlineClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	return err == nil && token.Valid
}

// --- Session persistence ---

// sessionPath returns the session file location next to the config file
func sessionPath() (string, error) {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), sessionFileName), nil
}

// persistSession writes the session to disk, encrypted at rest
func (s *AuthService) persistSession(session *models.StoredSession) {
	path, err := sessionPath()
	if err != nil {
		s.logger.LogError("Could not resolve session path", err)
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		s.logger.LogError("Could not encode session", err)
		return
	}

	encrypted, err := security.Encrypt(string(data))
	if err != nil {
		s.logger.LogError("Could not encrypt session", err)
		return
	}

	if err := os.WriteFile(path, []byte(encrypted), 0600); err != nil {
		s.logger.LogError("Could not write session file", err)
	}
}

// loadPersistedSession reads and decrypts the stored session, if any
func (s *AuthService) loadPersistedSession() (*models.StoredSession, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decrypted, err := security.Decrypt(string(data))
	if err != nil {
		// Unreadable session files are discarded, not fatal
		s.removePersistedSession()
		return nil, nil
	}

	var session models.StoredSession
	if err := json.Unmarshal([]byte(decrypted), &session); err != nil {
		s.removePersistedSession()
		return nil, nil
	}
	return &session, nil
}

func (s *AuthService) removePersistedSession() {
	if path, err := sessionPath(); err == nil {
		os.Remove(path)
	}
}
