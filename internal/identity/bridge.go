package identity

import (
	"context"
	"log"
	"sync"

	"github.com/example/storefront/internal/clientstore"
	"github.com/example/storefront/internal/remote"
)

// SessionNamespace is the durable blob holding the persisted session,
// independent of the storefront state blob.
const SessionNamespace = "session"

// ProfileDirectory is the slice of the remote store the bridge needs for
// profile updates.
type ProfileDirectory interface {
	Update(ctx context.Context, id string, upd remote.ProfileUpdate) (*remote.Profile, error)
}

type sessionState struct {
	AccessToken string `json:"access_token"`
}

// Bridge exposes {user, isAuthenticated} and keeps it consistent with the
// identity provider. It has an explicit Init/Close lifecycle owned by the
// application entry point; nothing happens as an import side effect.
type Bridge struct {
	provider Provider
	profiles ProfileDirectory
	blob     *clientstore.Blob

	mu    sync.RWMutex
	user  *User
	token string

	unsubscribe func()
}

func NewBridge(provider Provider, profiles ProfileDirectory, blob *clientstore.Blob) *Bridge {
	return &Bridge{provider: provider, profiles: profiles, blob: blob}
}

// Init probes the provider once for a persisted session and subscribes to
// pushed session changes for the rest of the process lifetime.
func (b *Bridge) Init(ctx context.Context) error {
	var persisted sessionState
	if _, err := b.blob.Load(&persisted); err != nil {
		return err
	}

	if persisted.AccessToken != "" {
		if session, err := b.provider.GetSession(ctx, persisted.AccessToken); err == nil {
			b.adoptSession(ctx, session)
		} else {
			log.Printf("[AuthBridge] Persisted session rejected: %v", err)
			b.clearSession()
		}
	}

	b.unsubscribe = b.provider.OnAuthStateChange(b.handleAuthChange)
	return nil
}

// Close tears down the provider subscription.
func (b *Bridge) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// CurrentUser returns the signed-in user, if any.
func (b *Bridge) CurrentUser() (*User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.user == nil {
		return nil, false
	}
	u := *b.user
	return &u, true
}

// IsAuthenticated reports whether a user is signed in locally. Callers that
// are about to submit an order must use Probe instead; cached state can be
// stale relative to provider-side expiry.
func (b *Bridge) IsAuthenticated() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.user != nil
}

// Probe re-validates the session against the provider. It returns the live
// session, or ErrSessionInvalid when none exists, and clears local state on
// rejection.
func (b *Bridge) Probe(ctx context.Context) (*Session, error) {
	b.mu.RLock()
	token := b.token
	b.mu.RUnlock()

	if token == "" {
		return nil, ErrSessionInvalid
	}

	session, err := b.provider.GetSession(ctx, token)
	if err != nil {
		b.clearSession()
		return nil, ErrSessionInvalid
	}
	return session, nil
}

// Login signs in with password. It returns false on invalid credentials or
// any provider error rather than propagating them.
func (b *Bridge) Login(ctx context.Context, email, password string) bool {
	session, err := b.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		log.Printf("[AuthBridge] Login failed: %v", err)
		return false
	}
	b.adoptSession(ctx, session)
	return true
}

// Signup creates the remote account and profile. False on duplicate email or
// provider validation failure.
func (b *Bridge) Signup(ctx context.Context, email, password, name string) bool {
	session, err := b.provider.SignUp(ctx, email, password, map[string]string{"name": name})
	if err != nil {
		log.Printf("[AuthBridge] Signup failed: %v", err)
		return false
	}
	b.adoptSession(ctx, session)
	return true
}

// Logout invalidates the remote session. Failure of the remote invalidation
// propagates to the caller; local state is cleared only on success.
func (b *Bridge) Logout(ctx context.Context) error {
	b.mu.RLock()
	token := b.token
	b.mu.RUnlock()

	if token == "" {
		return ErrNotAuthenticated
	}
	if err := b.provider.SignOut(ctx, token); err != nil {
		return err
	}
	b.clearSession()
	return nil
}

// UpdateProfile merges partial fields into the remote profile and, on
// success, into the local user. Without an authenticated user it returns
// ErrNotAuthenticated.
func (b *Bridge) UpdateProfile(ctx context.Context, upd remote.ProfileUpdate) error {
	b.mu.RLock()
	user := b.user
	b.mu.RUnlock()

	if user == nil {
		return ErrNotAuthenticated
	}

	merged, err := b.profiles.Update(ctx, user.ID, upd)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.user != nil && b.user.ID == merged.ID {
		b.user = profileUser(merged)
	}
	b.mu.Unlock()
	return nil
}

// handleAuthChange is the asynchronous entry point for provider pushes.
func (b *Bridge) handleAuthChange(change AuthChange) {
	switch change.Event {
	case EventSignedIn:
		if change.Session != nil {
			b.adoptSession(context.Background(), change.Session)
		}
	case EventSignedOut:
		b.clearSession()
	}
}

func (b *Bridge) adoptSession(ctx context.Context, session *Session) {
	user, err := b.provider.GetUser(ctx, session.AccessToken)
	if err != nil {
		log.Printf("[AuthBridge] Profile fetch failed for session: %v", err)
		user = &User{ID: session.UserID, Email: session.Email, Role: session.Role}
	}

	b.mu.Lock()
	b.user = user
	b.token = session.AccessToken
	b.mu.Unlock()

	b.persist(sessionState{AccessToken: session.AccessToken})
}

func (b *Bridge) clearSession() {
	b.mu.Lock()
	b.user = nil
	b.token = ""
	b.mu.Unlock()

	b.persist(sessionState{})
}

func (b *Bridge) persist(state sessionState) {
	if err := b.blob.Save(state); err != nil {
		log.Printf("[AuthBridge] Failed to persist session: %v", err)
	}
}
