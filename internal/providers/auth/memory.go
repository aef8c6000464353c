package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yoockh/dojoportal/internal/models"
)

// MemoryProvider keeps accounts in memory and mints HS256 tokens shaped
// like supabase access tokens, so JWTAuth accepts them. Used for local
// runs with DATA_BACKEND=memory and in tests.
type MemoryProvider struct {
	secret []byte
	ttl    time.Duration

	mu       sync.Mutex
	accounts map[string]memoryAccount // by lower-cased email
	revoked  map[string]struct{}
}

type memoryAccount struct {
	id       string
	email    string
	password string
}

func NewMemoryProvider(secret string, ttl time.Duration) *MemoryProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryProvider{
		secret:   []byte(secret),
		ttl:      ttl,
		accounts: map[string]memoryAccount{},
		revoked:  map[string]struct{}{},
	}
}

func (p *MemoryProvider) SignUp(_ context.Context, email, password string) (*Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	p.mu.Lock()
	if _, ok := p.accounts[key]; ok {
		p.mu.Unlock()
		return nil, ErrEmailInUse
	}
	acc := memoryAccount{id: uuid.NewString(), email: email, password: password}
	p.accounts[key] = acc
	p.mu.Unlock()

	return p.mint(acc)
}

func (p *MemoryProvider) SignIn(_ context.Context, email, password string) (*Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	p.mu.Lock()
	acc, ok := p.accounts[key]
	p.mu.Unlock()
	if !ok || acc.password != password {
		return nil, ErrInvalidCredentials
	}
	return p.mint(acc)
}

func (p *MemoryProvider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[accessToken] = struct{}{}
	return nil
}

// Revoked reports whether SignOut was called with token.
func (p *MemoryProvider) Revoked(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.revoked[token]
	return ok
}

func (p *MemoryProvider) mint(acc memoryAccount) (*Session, error) {
	exp := time.Now().Add(p.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acc.id,
		"email": acc.email,
		"role":  "authenticated",
		"exp":   exp.Unix(),
		"iat":   time.Now().Unix(),
	})
	signed, err := tok.SignedString(p.secret)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: signed,
		ExpiresAt:   exp.Unix(),
		Identity:    models.Identity{ID: acc.id, Email: acc.email},
	}, nil
}
