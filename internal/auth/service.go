package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential store the auth core reads from. A lookup
// for an unknown username returns ErrUserNotFound.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
}

// dummyHash is compared against when a username does not exist, so the
// unknown-user path costs a bcrypt verification just like the
// wrong-password path.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("visitlog-timing-pad"), bcrypt.DefaultCost)

type Service struct {
	store    UserStore
	codec    *Codec
	loginTTL time.Duration
}

func NewService(store UserStore, codec *Codec, loginTTL time.Duration) *Service {
	if loginTTL <= 0 {
		loginTTL = 30 * time.Minute
	}
	return &Service{store: store, codec: codec, loginTTL: loginTTL}
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// A mismatch is a normal false result, not an error.
func VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// Authenticate answers "is this username/password pair valid, and if
// so, whose identity is it". Unknown username and wrong password both
// come back as ErrInvalidCredentials; only store infrastructure
// failures surface as distinct errors.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates and issues a bearer token with the subject set
// to the username and the service's issuance TTL.
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}

	access, err := s.codec.Encode(Claims{Subject: user.Username}, s.loginTTL)
	if err != nil {
		return Token{}, err
	}

	return Token{AccessToken: access, TokenType: "bearer"}, nil
}

// Resolve maps a presented bearer token to the current identity. The
// credential record is re-fetched on every call, never cached, so a
// disabled or removed account is rejected even while its token is
// still unexpired. Bad token, empty subject and unknown subject all
// collapse to ErrUnauthorized.
func (s *Service) Resolve(ctx context.Context, tokenString string) (User, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return User{}, ErrUnauthorized
	}

	if claims.Subject == "" {
		return User{}, ErrUnauthorized
	}

	user, err := s.store.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrUnauthorized
		}
		return User{}, fmt.Errorf("lookup token subject: %w", err)
	}

	return user, nil
}

// RequireActive gates operations that need a non-disabled account,
// distinct from mere authentication.
func (s *Service) RequireActive(user User) error {
	if user.Disabled {
		return ErrInactiveAccount
	}
	return nil
}
