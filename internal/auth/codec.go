package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL applies when a call site passes no TTL to Encode.
// Login issuance always passes its own TTL, so this only matters for
// other token-issuing call sites.
const defaultTokenTTL = 60 * time.Minute

// Codec signs and verifies access tokens. The secret and the signing
// method are fixed at construction; verification pins the configured
// method and never trusts the algorithm the token itself declares.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
}

func NewCodec(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("token codec: empty secret")
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token codec: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token codec: algorithm %q is not an HMAC method", algorithm)
	}

	return &Codec{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTokenTTL,
	}, nil
}

// Encode signs claims into a compact token expiring at now+ttl. A ttl
// of zero or less falls back to the codec default.
func (c *Codec) Encode(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	payload := jwt.MapClaims{}
	for key, value := range claims.Extra {
		payload[key] = value
	}
	payload["sub"] = claims.Subject
	payload["exp"] = jwt.NewNumericDate(time.Now().UTC().Add(ttl))

	encoded, err := jwt.NewWithClaims(c.method, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return encoded, nil
}

// Decode verifies signature and expiry and returns the claims. Any
// failure (bad signature, algorithm mismatch, malformed claims, past
// or missing expiry) is reported as ErrInvalidToken.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	payload := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, payload, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{}
	if subject, err := payload.GetSubject(); err == nil {
		claims.Subject = subject
	}
	if expiry, err := payload.GetExpirationTime(); err == nil && expiry != nil {
		claims.ExpiresAt = expiry.Time
	}
	for key, value := range payload {
		if key == "sub" || key == "exp" {
			continue
		}
		if claims.Extra == nil {
			claims.Extra = map[string]any{}
		}
		claims.Extra[key] = value
	}

	return claims, nil
}
