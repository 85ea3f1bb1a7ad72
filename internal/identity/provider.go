// Package identity exposes the identity provider contract and the session
// bridge that keeps the storefront's notion of "who is signed in" consistent
// with it.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/internal/geocode"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
	ErrNotAuthenticated   = errors.New("no authenticated user")
)

// User is the signed-in identity merged with its denormalized profile.
type User struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Address          string          `json:"address,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	DeliveryLocation *geocode.LatLng `json:"delivery_location,omitempty"`
	Role             string          `json:"role"`
}

// Session is the provider's time-bounded authenticated context.
type Session struct {
	UserID      string
	Email       string
	Role        string
	AccessToken string
	ExpiresAt   time.Time
}

const (
	EventSignedIn  = "SIGNED_IN"
	EventSignedOut = "SIGNED_OUT"
)

// AuthChange is a provider-pushed session-change notification.
type AuthChange struct {
	Event   string
	Session *Session
}

// Provider is the identity collaborator. Its user ids are stable and usable
// as foreign keys by the order store.
type Provider interface {
	SignUp(ctx context.Context, email, password string, attrs map[string]string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetSession(ctx context.Context, accessToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*User, error)
	// OnAuthStateChange registers a listener for pushed session changes and
	// returns an unsubscribe function.
	OnAuthStateChange(fn func(AuthChange)) func()
}
