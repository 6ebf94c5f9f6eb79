package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/gophsocial/internal/model"
)

// Claims are the access token claims issued by the remote service.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string     `json:"_id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
}

// Inspector derives a session from an access token. Without a secret the
// signature is not checked; the server remains the authority on validity.
type Inspector struct {
	secret []byte
	now    func() time.Time
}

// InspectorOption configures an Inspector.
type InspectorOption func(*Inspector)

// WithSecret makes the Inspector verify HMAC signatures with secret.
func WithSecret(secret string) InspectorOption {
	return func(i *Inspector) {
		if secret != "" {
			i.secret = []byte(secret)
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) InspectorOption {
	return func(i *Inspector) { i.now = now }
}

func NewInspector(opts ...InspectorOption) *Inspector {
	i := &Inspector{now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect parses tokenString and returns the session it describes.
func (i *Inspector) Inspect(tokenString string) (model.Session, error) {
	if tokenString == "" {
		return model.Session{}, fmt.Errorf("%w: empty access token", model.ErrUnauthorized)
	}

	claims := &Claims{}
	if err := i.parse(tokenString, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Session{}, model.ErrTokenExpired
		}
		return model.Session{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.AccountID == "" {
		return model.Session{}, fmt.Errorf("%w: access token has no account id", model.ErrUnauthorized)
	}

	session := model.Session{
		Account: model.Account{
			ID:       claims.AccountID,
			Email:    claims.Email,
			Username: claims.Username,
			Role:     claims.Role,
		},
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	if session.Expired(i.now()) {
		return model.Session{}, model.ErrTokenExpired
	}

	return session, nil
}

func (i *Inspector) parse(tokenString string, claims *Claims) error {
	if i.secret == nil {
		_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
		return err
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("access token is invalid")
	}
	return nil
}
