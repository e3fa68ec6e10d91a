package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskville/internal/config"
)

// CSRFMinter issues per-session CSRF tokens as HS256 JWTs bound to a
// digest of the session token. Verification is stateless: the handler
// only needs the session token it already resolved.
type CSRFMinter struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewCSRFMinter(cfg config.CSRFConfig) *CSRFMinter {
	secret := cfg.Secret
	if secret == "" {
		secret = "taskville-default-secret-change-in-production"
	}
	return &CSRFMinter{
		secret: []byte(secret),
		ttl:    cfg.TTLDuration(),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Mint signs a CSRF token for the given session token.
func (m *CSRFMinter) Mint(sessionToken string) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sid": sessionDigest(sessionToken),
		"exp": now.Add(m.ttl).Unix(),
		"iat": now.Unix(),
		"iss": m.issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify reports whether the CSRF token is valid for the session token.
func (m *CSRFMinter) Verify(csrfToken, sessionToken string) bool {
	parsed, err := jwt.Parse(csrfToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	sid, _ := claims["sid"].(string)
	return sid == sessionDigest(sessionToken)
}

func sessionDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
