package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/remote"
	"github.com/google/uuid"
)

// LocalProvider implements the identity contract over the profiles table,
// with bcrypt passwords and signed session tokens. Sign-out revokes the
// token id until its natural expiry.
type LocalProvider struct {
	profiles *remote.ProfileStore
	tokens   *auth.TokenService

	mu        sync.Mutex
	revoked   map[string]struct{}
	listeners map[int]func(AuthChange)
	nextID    int
}

func NewLocalProvider(profiles *remote.ProfileStore, tokens *auth.TokenService) *LocalProvider {
	return &LocalProvider{
		profiles:  profiles,
		tokens:    tokens,
		revoked:   make(map[string]struct{}),
		listeners: make(map[int]func(AuthChange)),
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, attrs map[string]string) (*Session, error) {
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	name := attrs["name"]
	if err := auth.ValidateName(name); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if _, err := p.profiles.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, remote.ErrProfileNotFound) {
		return nil, err
	}

	profile := &remote.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         "customer",
	}
	if err := p.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	session, err := p.mintSession(profile)
	if err != nil {
		return nil, err
	}
	p.notify(AuthChange{Event: EventSignedIn, Session: session})
	return session, nil
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	profile, err := p.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, remote.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(password, profile.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	session, err := p.mintSession(profile)
	if err != nil {
		return nil, err
	}
	p.notify(AuthChange{Event: EventSignedIn, Session: session})
	return session, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.tokens.ValidateSessionToken(accessToken)
	if err != nil {
		return ErrSessionInvalid
	}

	p.mu.Lock()
	p.revoked[claims.ID] = struct{}{}
	p.mu.Unlock()

	p.notify(AuthChange{Event: EventSignedOut})
	return nil
}

func (p *LocalProvider) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := p.tokens.ValidateSessionToken(accessToken)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	p.mu.Lock()
	_, revoked := p.revoked[claims.ID]
	p.mu.Unlock()
	if revoked {
		return nil, ErrSessionInvalid
	}

	return &Session{
		UserID:      claims.UserID,
		Email:       claims.Email,
		Role:        claims.Role,
		AccessToken: accessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (p *LocalProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	session, err := p.GetSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	profile, err := p.profiles.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return profileUser(profile), nil
}

func (p *LocalProvider) OnAuthStateChange(fn func(AuthChange)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) mintSession(profile *remote.Profile) (*Session, error) {
	token, expiresAt, err := p.tokens.GenerateSessionToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:      profile.ID,
		Email:       profile.Email,
		Role:        profile.Role,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (p *LocalProvider) notify(change AuthChange) {
	p.mu.Lock()
	fns := make([]func(AuthChange), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func profileUser(p *remote.Profile) *User {
	return &User{
		ID:               p.ID,
		Email:            p.Email,
		Name:             p.Name,
		Address:          p.Address,
		Phone:            p.Phone,
		DeliveryLocation: p.DeliveryLocation,
		Role:             p.Role,
	}
}
