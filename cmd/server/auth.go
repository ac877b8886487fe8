package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/importhub/internal/store"
)

const tokenIssuer = "importhub"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	errUnauthenticated    = errors.New("authentication required")
	errForbidden          = errors.New("admin role required")
	errEmptySecret        = errors.New("token signing secret is empty")
)

type userLookup interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
}

type authService struct {
	users  userLookup
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type principal struct {
	Email string
	Role  string
}

type principalKey struct{}

func newAuthService(users userLookup, secret string, ttl time.Duration) (*authService, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &authService{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// login checks the credentials and returns a signed token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (a *authService) login(ctx context.Context, email, password string) (string, store.User, error) {
	u, err := a.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", store.User{}, fmt.Errorf("query user credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", store.User{}, ErrInvalidCredentials
	}

	token, err := a.issueToken(u)
	if err != nil {
		return "", store.User{}, err
	}
	return token, u, nil
}

func (a *authService) issueToken(u store.User) (string, error) {
	if len(a.secret) == 0 {
		return "", errEmptySecret
	}
	now := a.now()
	claims := tokenClaims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *authService) verifyToken(raw string) (principal, error) {
	if len(a.secret) == 0 {
		return principal{}, fmt.Errorf("%w: %v", errUnauthenticated, errEmptySecret)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)

	var claims tokenClaims
	t, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return principal{}, fmt.Errorf("%w: %v", errUnauthenticated, err)
	}
	if !t.Valid || claims.Email == "" {
		return principal{}, errUnauthenticated
	}
	return principal{Email: claims.Email, Role: claims.Role}, nil
}

func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

// authenticate requires a valid bearer token on every request it wraps.
func (s *server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			s.writeError(w, r, errUnauthenticated)
			return
		}

		p, err := s.auth.verifyToken(strings.TrimSpace(raw))
		if err != nil {
			s.logger.Debug("rejected token", zap.Error(err))
			s.writeError(w, r, errUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok {
			s.writeError(w, r, errUnauthenticated)
			return
		}
		if p.Role != store.RoleAdmin {
			s.writeError(w, r, errForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
