package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Config carries the signing material and validation expectations. It is
// loaded once at startup and passed by reference into the service.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Identity is the validated content of an assertion.
type Identity struct {
	UserID   int64
	UserName string
	Mail     string
	Role     string
}

type claims struct {
	Mail string `json:"email"`
	Role string `json:"role"`
	UID  string `json:"uid"`
	jwt.RegisteredClaims
}

// ErrInvalidToken covers every validation failure. Callers treat it as
// "unauthenticated"; the reason is not surfaced to the client.
var ErrInvalidToken = errors.New("invalid token")

// Service issues and validates signed identity assertions. Validation is pure
// computation and performs no I/O.
type Service struct {
	cfg Config
	now func() time.Time
}

// New builds a token service. TTL defaults to 30 minutes.
func New(cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return &Service{cfg: cfg, now: time.Now}
}

// Issue mints an HS256-signed assertion for the user. The numeric id travels
// as a decimal string in the uid claim.
func (s *Service) Issue(userName, mail string, userID int64) (string, error) {
	now := s.now()
	c := claims{
		Mail: mail,
		Role: "User",
		UID:  strconv.FormatInt(userID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userName,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString([]byte(s.cfg.Secret))
}

// Validate verifies signature, algorithm, issuer, audience and expiry, then
// extracts the identity. Any failure, including a missing or non-numeric uid
// claim, yields ErrInvalidToken: the gate fails closed.
func (s *Service) Validate(assertion string) (*Identity, error) {
	// Claims are validated explicitly below against the service clock, so
	// the parser only checks structure and signature.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var c claims
	tok, err := parser.ParseWithClaims(assertion, &c, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	now := s.now()
	switch {
	case !c.VerifyExpiresAt(now, true):
		return nil, ErrInvalidToken
	case !c.VerifyNotBefore(now, false):
		return nil, ErrInvalidToken
	case !c.VerifyIssuer(s.cfg.Issuer, true):
		return nil, ErrInvalidToken
	case !c.VerifyAudience(s.cfg.Audience, true):
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(c.UID, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:   userID,
		UserName: c.Subject,
		Mail:     c.Mail,
		Role:     c.Role,
	}, nil
}
