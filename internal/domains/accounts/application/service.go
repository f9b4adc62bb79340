package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Option configures Service.
type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides uuid generation for user ids and session tokens.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Service implements registration, sessions and profiles.
type Service struct {
	users      ports.Repository
	profiles   ports.ProfileRepository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger

	mu          sync.RWMutex
	nextSubID   int
	subscribers map[int]func(domain.AuthEvent)
}

func NewService(users ports.Repository, profiles ports.ProfileRepository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		users:       users,
		profiles:    profiles,
		sessions:    sessions,
		sessionTTL:  DefaultSessionTTL,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      slog.New(slog.DiscardHandler),
		subscribers: map[int]func(domain.AuthEvent){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates the account, signs it in and announces AuthRegistered.
func (s *Service) Register(ctx context.Context, in ports.Registration) (*ports.AuthResult, error) {
	user, err := domain.NewUser(s.newID(), in.Name, in.Email, in.Password, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapError(err)
	}
	if err := s.profiles.Save(ctx, domain.Profile{UserID: user.ID, FullName: user.Name, UpdatedAt: s.now()}); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to create profile for new user",
			slog.String("user.id", user.ID), slog.String("error", err.Error()))
	}
	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.publish(domain.AuthEvent{Kind: domain.AuthRegistered, UserID: user.ID, At: s.now()})
	return &ports.AuthResult{User: user, Session: session}, nil
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, in ports.Credentials) (*ports.AuthResult, error) {
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil || in.Password == "" {
		return nil, ErrAuthentication
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(in.Password) {
		return nil, ErrAuthentication
	}
	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.publish(domain.AuthEvent{Kind: domain.AuthLoggedIn, UserID: user.ID, At: s.now()})
	return &ports.AuthResult{User: user, Session: session}, nil
}

// Logout revokes token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return err
	}
	s.publish(domain.AuthEvent{Kind: domain.AuthLoggedOut, UserID: session.UserID, At: s.now()})
	return nil
}

// CurrentUser resolves the user behind a session token.
func (s *Service) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return user, err
}

// OnAuthChange subscribes fn to auth events. The returned func unsubscribes.
func (s *Service) OnAuthChange(fn func(domain.AuthEvent)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return profile, nil
}

// UpdateProfile replaces the stored profile.
func (s *Service) UpdateProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	if strings.TrimSpace(profile.UserID) == "" {
		return nil, ErrUnauthenticated
	}
	profile = profile.Trimmed()
	profile.UpdatedAt = s.now()
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SyncShippingProfile overlays the non-empty fields of profile onto the stored one.
func (s *Service) SyncShippingProfile(ctx context.Context, profile domain.Profile) error {
	if strings.TrimSpace(profile.UserID) == "" {
		return ErrUnauthenticated
	}
	incoming := profile.Trimmed()
	current, err := s.profiles.Get(ctx, incoming.UserID)
	if errors.Is(err, ports.ErrProfileNotFound) {
		current = &domain.Profile{UserID: incoming.UserID}
	} else if err != nil {
		return err
	}
	merged := *current
	if incoming.FullName != "" {
		merged.FullName = incoming.FullName
	}
	if incoming.Phone != "" {
		merged.Phone = incoming.Phone
	}
	if !incoming.Address.IsZero() {
		merged.Address = incoming.Address
	}
	merged.UpdatedAt = s.now()
	return s.profiles.Save(ctx, merged)
}

// EnsureAdmin creates or promotes the account for email with the admin role.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, mapError(err)
	}
	existing, err := s.users.GetByEmail(ctx, normalized)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, nil
		}
		existing.Grant(domain.RoleAdmin)
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}
	user, err := domain.NewUser(s.newID(), name, normalized, password, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	user.Grant(domain.RoleAdmin)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// PurgeExpiredSessions removes stale sessions.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx)
}

func (s *Service) openSession(ctx context.Context, userID string) (domain.Session, error) {
	session := domain.Session{Token: s.newID(), UserID: userID, ExpiresAt: s.now().Add(s.sessionTTL)}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *Service) publish(event domain.AuthEvent) {
	s.mu.RLock()
	subs := make([]func(domain.AuthEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(event)
	}
}

var _ ports.Service = (*Service)(nil)
