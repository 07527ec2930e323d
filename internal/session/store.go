package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/dto"
	"chemviz-client/internal/model"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/pkg/events"

	"github.com/go-playground/validator/v10"
)

const logModule = "SESSION"

// Authenticator is the part of the gateway the store needs.
type Authenticator interface {
	Login(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error)
}

type IStore interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, username, password string) (model.Session, error)
	Register(ctx context.Context, username, password string) (model.Session, error)
	Logout(ctx context.Context) error
	Clear(ctx context.Context) error
	CurrentToken() (string, bool)
	IsAuthenticated() bool
	OnClear(fn func())
}

// Store owns the session token. The in-memory copy is only changed after the
// storage write succeeded.
type Store struct {
	mu        sync.RWMutex
	token     string
	onClear   []func()
	storage   TokenStorage
	auth      Authenticator
	validate  *validator.Validate
	publisher events.Publisher
	logger    logger.ILogger
}

var _ IStore = (*Store)(nil)

func NewStore(storage TokenStorage, auth Authenticator, publisher events.Publisher, log logger.ILogger) *Store {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Store{
		storage:   storage,
		auth:      auth,
		validate:  validator.New(),
		publisher: publisher,
		logger:    log,
	}
}

// Init reads the persisted token once, at process start.
func (s *Store) Init(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Info(logModule, "Session initialised", map[string]interface{}{"authenticated": token != ""})
	return nil
}

func (s *Store) Login(ctx context.Context, username, password string) (model.Session, error) {
	return s.authenticate(ctx, "login", s.auth.Login, username, password)
}

func (s *Store) Register(ctx context.Context, username, password string) (model.Session, error) {
	return s.authenticate(ctx, "register", s.auth.Register, username, password)
}

type authCall func(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error)

func (s *Store) authenticate(ctx context.Context, mode string, call authCall, username, password string) (model.Session, error) {
	req := dto.CredentialsRequest{Username: username, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return model.Session{}, credentialsError(err)
	}

	resp, err := call(ctx, req)
	if err != nil {
		s.logger.Warn(logModule, "Authentication failed", map[string]interface{}{"mode": mode, "error": err.Error()})
		return model.Session{}, toAuthError(err)
	}
	if resp == nil || resp.Token == "" {
		return model.Session{}, &apperr.AuthError{Message: apperr.DefaultAuthMessage}
	}

	// Persist before anyone can observe the new session.
	if err := s.storage.Save(ctx, resp.Token); err != nil {
		s.logger.Error(logModule, "Failed to persist token", map[string]interface{}{"error": err.Error()})
		return model.Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.mu.Unlock()

	s.logger.Info(logModule, "Authenticated", map[string]interface{}{"mode": mode, "username": username})
	s.publish(ctx, events.SessionStarted, map[string]interface{}{"mode": mode, "username": username})
	return model.Session{Token: resp.Token}, nil
}

// Logout destroys the session and runs the OnClear hooks.
func (s *Store) Logout(ctx context.Context) error {
	s.logger.Info(logModule, "Logout requested", nil)
	return s.Clear(ctx)
}

// Clear removes the stored token. The in-memory session and dependent state
// are cleared even when the storage delete fails; the error is still returned.
func (s *Store) Clear(ctx context.Context) error {
	storeErr := s.storage.Delete(ctx)
	if storeErr != nil {
		s.logger.Error(logModule, "Failed to delete stored token", map[string]interface{}{"error": storeErr.Error()})
	}

	s.mu.Lock()
	s.token = ""
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	s.publish(ctx, events.SessionCleared, nil)

	if storeErr != nil {
		return fmt.Errorf("clear session: %w", storeErr)
	}
	return nil
}

func (s *Store) CurrentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Token satisfies gateway.TokenSource.
func (s *Store) Token() string {
	token, _ := s.CurrentToken()
	return token
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentToken()
	return ok
}

func (s *Store) Session() model.Session {
	return model.Session{Token: s.Token()}
}

// OnClear registers fn to run after every logout or clear.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

func (s *Store) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn(logModule, "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

func credentialsError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		return &apperr.ValidationError{Field: field, Message: field + " is required"}
	}
	return &apperr.ValidationError{Message: err.Error()}
}

func toAuthError(err error) error {
	var server *apperr.ServerError
	if errors.As(err, &server) && server.Message != "" {
		return &apperr.AuthError{Message: server.Message, Err: err}
	}
	return &apperr.AuthError{Message: apperr.DefaultAuthMessage, Err: err}
}
