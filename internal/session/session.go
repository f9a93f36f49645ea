// Package session holds the authentication state of one client profile:
// the persisted token pair (through the client's token store) and the
// profile of the logged-in user.  It replaces a process-wide auth store;
// callers construct a Session and pass it where it is needed.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/iliyamo/classroom-client/internal/apiclient"
	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/queue"
	"github.com/iliyamo/classroom-client/internal/service"
	"github.com/iliyamo/classroom-client/internal/tokenstore"
)

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
)

// ErrNotLoggedIn is returned by operations that need a stored token.
var ErrNotLoggedIn = errors.New("session: not logged in")

type Options struct {
	Client  *apiclient.Client
	Events  queue.Publisher // optional
	Logger  *slog.Logger
	Clock   clockwork.Clock
	Profile string
}

type Session struct {
	client  *apiclient.Client
	store   tokenstore.Store
	users   *service.UserService
	events  queue.Publisher
	log     *slog.Logger
	clock   clockwork.Clock
	profile string

	mu   sync.RWMutex
	user *model.User
}

// New builds a Session on top of client.  The session registers itself for
// the client's session-expired notification so that an expired session
// drops the cached profile too.
func New(opts Options) (*Session, error) {
	if opts.Client == nil {
		return nil, errors.New("session: client is required")
	}
	s := &Session{
		client:  opts.Client,
		store:   opts.Client.Store(),
		users:   service.New(opts.Client).Users,
		events:  opts.Events,
		log:     opts.Logger,
		clock:   opts.Clock,
		profile: opts.Profile,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.events == nil {
		s.events = queue.LogPublisher{Log: s.log}
	}
	opts.Client.OnSessionExpired(s.expired)
	return s, nil
}

// Login exchanges credentials for a token pair, stores it and loads the
// user's profile.  Any previously stored tokens are discarded first, so a
// rejected login leaves the store empty.  If the tokens were issued but
// the profile could not be loaded, the tokens stay stored and the profile
// error is returned.
func (s *Session) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	s.dropUser()
	if err := s.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("session: clear tokens: %w", err)
	}

	var res model.LoginResponse
	if err := s.client.Post(ctx, loginPath, req, &res); err != nil {
		s.log.Info("login rejected", "email", req.Email, "error", err)
		return nil, err
	}
	if err := s.store.Set(ctx, res.AccessToken, res.RefreshToken); err != nil {
		return nil, fmt.Errorf("session: store tokens: %w", err)
	}

	user, err := s.FetchProfile(ctx)
	if err != nil {
		return &res, fmt.Errorf("session: fetch profile: %w", err)
	}
	s.log.Info("logged in", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, queue.EventLogin, user, "")
	return &res, nil
}

// Logout revokes the refresh token remotely and forgets the session
// locally.  The local state is cleared even when the remote call fails;
// the remote error is still returned.
func (s *Session) Logout(ctx context.Context) error {
	refresh, err := s.store.RefreshToken(ctx)
	if err != nil {
		s.log.Warn("reading refresh token for logout", "error", err)
	}

	var remoteErr error
	if refresh != "" {
		remoteErr = s.client.Post(ctx, logoutPath, model.RefreshRequest{RefreshToken: refresh}, nil)
	} else {
		remoteErr = s.client.Post(ctx, logoutPath, nil, nil)
	}

	user := s.dropUser()
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Error("clearing tokens on logout", "error", err)
		remoteErr = errors.Join(remoteErr, err)
	}
	reason := ""
	if remoteErr != nil {
		reason = remoteErr.Error()
	}
	s.publish(ctx, queue.EventLogout, user, reason)
	return remoteErr
}

// FetchProfile loads the current user's profile and caches it.
func (s *Session) FetchProfile(ctx context.Context) (*model.User, error) {
	u, err := s.users.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return &u, nil
}

// Profile returns the cached profile, or nil before FetchProfile succeeds.
func (s *Session) Profile() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether an access token is stored.  It does not
// check the token's expiry.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	return tokenstore.IsAuthenticated(ctx, s.store)
}

func (s *Session) IsAdmin() bool   { return s.hasRole(model.RoleAdmin) }
func (s *Session) IsTeacher() bool { return s.hasRole(model.RoleTeacher) }

// FullName is "First Last" of the cached profile, or "" without one.
func (s *Session) FullName() string {
	u := s.Profile()
	if u == nil {
		return ""
	}
	return u.FullName()
}

// Refresh rotates the access token explicitly.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	tok, err := s.client.Refresh(ctx)
	if errors.Is(err, apiclient.ErrNoRefreshToken) {
		return "", fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
	}
	return tok, err
}

func (s *Session) hasRole(r model.Role) bool {
	u := s.Profile()
	return u != nil && u.Role == r
}

func (s *Session) dropUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user
	s.user = nil
	return u
}

func (s *Session) expired(ctx context.Context, cause error) {
	user := s.dropUser()
	s.publish(ctx, queue.EventExpired, user, cause.Error())
}

// publish never fails the calling operation; a broker outage is logged.
func (s *Session) publish(ctx context.Context, typ string, user *model.User, reason string) {
	ev := queue.SessionEvent{
		Type:       typ,
		Profile:    s.profile,
		Reason:     reason,
		OccurredAt: s.clock.Now().UTC(),
	}
	if user != nil {
		ev.UserID = user.ID.String()
		ev.Email = user.Email
		ev.Role = string(user.Role)
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("publishing session event failed", "type", typ, "error", err)
	}
}
