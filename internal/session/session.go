// Package session gates the scene behind an authenticated session. Issuing
// sessions is the auth backend's job; this package only consumes them.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	// ErrNoSession is returned when no valid session exists.
	ErrNoSession = errors.New("no session")
	// ErrExpired is returned when the session's access token has expired.
	ErrExpired = errors.New("session expired")
	// ErrUnsupported is returned by providers that cannot perform an auth flow locally.
	ErrUnsupported = errors.New("not supported by this provider")
)

// Session is an authenticated user session.
type Session struct {
	AccessToken string
	UserID      string
	ExpiresAt   time.Time
}

// Valid reports whether the session is usable at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.AccessToken != "" && s.ExpiresAt.After(now)
}

// Event is a session change notification.
type Event int

const (
	SignedIn Event = iota
	SignedOut
	TokenRefreshed
)

func (e Event) String() string {
	switch e {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case TokenRefreshed:
		return "token_refreshed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Provider is the authentication collaborator.
type Provider interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)
	// OnChange subscribes fn to session changes and returns an unsubscribe func.
	OnChange(fn func(Event, *Session)) (unsubscribe func())
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignInWithOAuth(ctx context.Context, provider string) (*Session, error)
}

// ParseAccessToken reads the subject and expiry of a JWT access token. The
// signature is not verified; the backend that issued it does that.
func ParseAccessToken(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoSession
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("access token has no exp claim")
	}
	return &Session{
		AccessToken: token,
		UserID:      claims.Subject,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Gate blocks until the provider reports a valid session.
type Gate struct {
	provider Provider
	now      func() time.Time
	log      *zap.Logger
}

// NewGate returns a gate over p.
func NewGate(p Provider, log *zap.Logger) *Gate {
	return &Gate{provider: p, now: time.Now, log: log.Named("session")}
}

// Check returns the current session without waiting. An expired session
// reports ErrExpired.
func (g *Gate) Check(ctx context.Context) (*Session, error) {
	s, err := g.provider.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Valid(g.now()) {
		return nil, ErrExpired
	}
	return s, nil
}

// Wait returns the first valid session, either current or published later.
// It returns ctx.Err() if the context ends first.
func (g *Gate) Wait(ctx context.Context) (*Session, error) {
	changes := make(chan *Session, 1)
	unsubscribe := g.provider.OnChange(func(e Event, s *Session) {
		g.log.Debug("session changed", zap.Stringer("event", e))
		if e == SignedOut {
			return
		}
		if !s.Valid(g.now()) {
			g.log.Warn("ignoring invalid session", zap.Stringer("event", e))
			return
		}
		select {
		case changes <- s:
		default:
		}
	})
	defer unsubscribe()

	s, err := g.provider.GetSession(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s.Valid(g.now()) {
		return s, nil
	}
	g.log.Info("waiting for sign-in")

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case s := <-changes:
		g.log.Info("session ready", zap.String("user", s.UserID))
		return s, nil
	}
}

// Static is a local provider holding one session, seeded from a token.
// Sign-in flows belong to the backend and return ErrUnsupported.
type Static struct {
	mu      sync.Mutex
	session *Session
	subs    map[int]func(Event, *Session)
	nextID  int
}

// NewStatic returns a provider seeded with token. An empty token starts signed out.
func NewStatic(token string) (*Static, error) {
	p := &Static{subs: make(map[int]func(Event, *Session))}
	if strings.TrimSpace(token) == "" {
		return p, nil
	}
	s, err := ParseAccessToken(token)
	if err != nil {
		return nil, err
	}
	p.session = s
	return p, nil
}

// GetSession returns the held session or ErrNoSession.
func (p *Static) GetSession(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil, ErrNoSession
	}
	return p.session, nil
}

// OnChange subscribes fn to Publish calls.
func (p *Static) OnChange(fn func(Event, *Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Publish replaces the session and notifies subscribers. A nil session signs out.
func (p *Static) Publish(s *Session) {
	p.mu.Lock()
	event := SignedIn
	switch {
	case s == nil:
		event = SignedOut
	case p.session != nil:
		event = TokenRefreshed
	}
	p.session = s
	subs := make([]func(Event, *Session), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(event, s)
	}
}

func (p *Static) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return nil, fmt.Errorf("sign up: %w", ErrUnsupported)
}

func (p *Static) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return nil, fmt.Errorf("password sign-in: %w", ErrUnsupported)
}

func (p *Static) SignInWithOAuth(ctx context.Context, provider string) (*Session, error) {
	return nil, fmt.Errorf("oauth sign-in with %s: %w", provider, ErrUnsupported)
}
