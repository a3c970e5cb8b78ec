// Package session issues and checks the signed session tokens stored in the
// signedIn cookie. Every token is also recorded server side so it can be
// revoked before it expires.
package session

import (
	"errors"
	"fmt"
	"time"

	"bitwise74/demo-app/pkg/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jellydator/ttlcache/v2"
)

const (
	CookieName = "signedIn"
	idSize     = 16
)

var ErrInvalidSession = errors.New("session invalid or expired")

type Options struct {
	Secret string
	MaxAge time.Duration

	// Cookie attributes
	Domain string
	Secure bool
}

type Manager struct {
	secret []byte
	maxAge time.Duration
	domain string
	secure bool
	live   *ttlcache.Cache
}

func NewManager(o Options) *Manager {
	live := ttlcache.NewCache()
	live.SkipTTLExtensionOnHit(true)

	return &Manager{
		secret: []byte(o.Secret),
		maxAge: o.MaxAge,
		domain: o.Domain,
		secure: o.Secure,
		live:   live,
	}
}

// Issue creates a session for the user with the given email and returns
// the signed token to put in the cookie
func (m *Manager) Issue(email string) (string, error) {
	id, err := util.GenerateToken(idSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID, %w", err)
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        id,
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
	})

	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token, %w", err)
	}

	if err := m.live.SetWithTTL(id, email, m.maxAge); err != nil {
		return "", fmt.Errorf("failed to store session, %w", err)
	}

	return signed, nil
}

// Validate returns the email the session belongs to
func (m *Manager) Validate(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}

	v, err := m.live.Get(claims.ID)
	if err != nil {
		return "", ErrInvalidSession
	}

	if email, ok := v.(string); !ok || email != claims.Subject {
		return "", ErrInvalidSession
	}

	return claims.Subject, nil
}

// Revoke invalidates the session. Revoking an invalid or already revoked
// token is not an error.
func (m *Manager) Revoke(token string) {
	claims, err := m.parse(token)
	if err != nil {
		return
	}

	m.live.Remove(claims.ID)
}

func (m *Manager) Close() error {
	return m.live.Close()
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidSession
	}

	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
