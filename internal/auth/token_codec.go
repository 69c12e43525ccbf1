package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultIssuer is stamped on every guest and session token.
	DefaultIssuer = "romyseb.ch"
	// DefaultAudience identifies guest access tokens.
	DefaultAudience = "guest"
	// DefaultSessionAudience identifies guest session tokens issued after login.
	DefaultSessionAudience = "guest-session"
	// DefaultTokenTTL is the validity period of a guest access token (525600 minutes).
	DefaultTokenTTL = 365 * 24 * time.Hour
	// DefaultSessionTTL matches the lifetime of the session cookie.
	DefaultSessionTTL = 365 * 24 * time.Hour
	// DefaultClockSkew is the leeway applied to time based claims.
	DefaultClockSkew = 60 * time.Second
)

var (
	// ErrMissingSecret is returned when the codec is built without a signing secret.
	ErrMissingSecret = errors.New("auth: token secret must be provided")
	// ErrInvalidIdentity is returned when the claims to sign lack an email.
	ErrInvalidIdentity = errors.New("auth: identity email is required")
)

// Verification failure reasons. They are safe to log and never include token material.
const (
	ReasonEmpty         = "token is empty"
	ReasonMalformed     = "token is malformed"
	ReasonSignature     = "token signature is invalid"
	ReasonExpired       = "token has expired"
	ReasonNotYetValid   = "token is not valid yet"
	ReasonIssuer        = "token issuer mismatch"
	ReasonAudience      = "token audience mismatch"
	ReasonEmptyWindow   = "token validity window is empty"
	ReasonEmailClaim    = "token email claim is invalid"
	ReasonSessionClaims = "session claims are incomplete"
	ReasonUnverifiable  = "token could not be verified"
)

// TokenConfig bundles the configuration required to build a TokenCodec.
type TokenConfig struct {
	Secret          string
	Issuer          string
	Audience        string
	SessionAudience string
	TTL             time.Duration
	SessionTTL      time.Duration
	ClockSkew       time.Duration
	Clock           func() time.Time
}

// GuestIdentity carries the identity claims of a single invitation member.
type GuestIdentity struct {
	Email     string   `json:"email"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Age       *float64 `json:"age,omitempty"`
	IsChild   *bool    `json:"isChild,omitempty"`
	GroupID   string   `json:"groupId,omitempty"`
	Role      string   `json:"role,omitempty"`
}

// GuestClaims are the decoded contents of a guest access token.
type GuestClaims struct {
	GuestIdentity
	jwt.RegisteredClaims
}

// VerifyResult reports the outcome of a guest token verification.
type VerifyResult struct {
	Claims *GuestClaims
	Reason string
}

// OK reports whether verification succeeded.
func (r VerifyResult) OK() bool {
	return r.Reason == "" && r.Claims != nil
}

// SessionPayload describes the guest session established after a confirmed login.
type SessionPayload struct {
	InvitationID string `json:"invitationId"`
	MemberID     string `json:"memberId"`
	GroupID      string `json:"groupId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Locale       string `json:"locale"`
}

// SessionClaims are the decoded contents of a guest session token.
type SessionClaims struct {
	SessionPayload
	jwt.RegisteredClaims
}

// SessionResult reports the outcome of a session token verification.
type SessionResult struct {
	Claims *SessionClaims
	Reason string
}

// OK reports whether verification succeeded.
func (r SessionResult) OK() bool {
	return r.Reason == "" && r.Claims != nil
}

// TokenCodec signs and verifies guest access and session tokens with a shared HS256 secret.
type TokenCodec struct {
	secret          []byte
	issuer          string
	audience        string
	sessionAudience string
	ttl             time.Duration
	sessionTTL      time.Duration
	skew            time.Duration
	now             func() time.Time
}

// NewTokenCodec constructs a TokenCodec. The secret is mandatory and has no fallback.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSecret
	}

	codec := &TokenCodec{
		secret:          []byte(cfg.Secret),
		issuer:          firstNonEmpty(cfg.Issuer, DefaultIssuer),
		audience:        firstNonEmpty(cfg.Audience, DefaultAudience),
		sessionAudience: firstNonEmpty(cfg.SessionAudience, DefaultSessionAudience),
		ttl:             cfg.TTL,
		sessionTTL:      cfg.SessionTTL,
		skew:            cfg.ClockSkew,
		now:             time.Now,
	}
	if codec.ttl <= 0 {
		codec.ttl = DefaultTokenTTL
	}
	if codec.sessionTTL <= 0 {
		codec.sessionTTL = DefaultSessionTTL
	}
	if codec.skew < 0 {
		codec.skew = 0
	} else if codec.skew == 0 {
		codec.skew = DefaultClockSkew
	}
	if cfg.Clock != nil {
		codec.now = cfg.Clock
	}
	if codec.audience == codec.sessionAudience {
		return nil, fmt.Errorf("auth: guest and session audiences must differ (%q)", codec.audience)
	}

	return codec, nil
}

// TTL returns the configured guest token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Sign issues a guest access token valid for the configured TTL.
func (c *TokenCodec) Sign(identity GuestIdentity) (string, error) {
	return c.SignWithTTL(identity, c.ttl)
}

// SignWithTTL issues a guest access token valid for ttl. A non-positive ttl yields a
// token that never verifies.
func (c *TokenCodec) SignWithTTL(identity GuestIdentity, ttl time.Duration) (string, error) {
	identity.Email = strings.TrimSpace(identity.Email)
	if identity.Email == "" {
		return "", ErrInvalidIdentity
	}

	claims := &GuestClaims{
		GuestIdentity:    identity,
		RegisteredClaims: c.registeredClaims(c.audience, ttl),
	}
	return c.signClaims(claims)
}

// Verify checks signature, issuer, audience and time window of a guest token.
// Ordinary failures are reported through the result, never as an error.
func (c *TokenCodec) Verify(token string) VerifyResult {
	var claims GuestClaims
	if reason := c.parse(token, c.audience, &claims); reason != "" {
		return VerifyResult{Reason: reason}
	}
	if reason := checkWindow(&claims.RegisteredClaims); reason != "" {
		return VerifyResult{Reason: reason}
	}
	if !strings.Contains(claims.Email, "@") {
		return VerifyResult{Reason: ReasonEmailClaim}
	}
	return VerifyResult{Claims: &claims}
}

// SignSession issues a session token for a confirmed guest.
func (c *TokenCodec) SignSession(payload SessionPayload) (string, error) {
	if payload.MemberID == "" || payload.InvitationID == "" {
		return "", errors.New("auth: session requires invitation and member ids")
	}

	claims := &SessionClaims{
		SessionPayload:   payload,
		RegisteredClaims: c.registeredClaims(c.sessionAudience, c.sessionTTL),
	}
	claims.Subject = payload.MemberID
	return c.signClaims(claims)
}

// VerifySession checks a session token. Guest access tokens are rejected by audience.
func (c *TokenCodec) VerifySession(token string) SessionResult {
	var claims SessionClaims
	if reason := c.parse(token, c.sessionAudience, &claims); reason != "" {
		return SessionResult{Reason: reason}
	}
	if reason := checkWindow(&claims.RegisteredClaims); reason != "" {
		return SessionResult{Reason: reason}
	}
	if claims.MemberID == "" || claims.InvitationID == "" {
		return SessionResult{Reason: ReasonSessionClaims}
	}
	return SessionResult{Claims: &claims}
}

func (c *TokenCodec) registeredClaims(audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := c.now()
	return jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{audience},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (c *TokenCodec) signClaims(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

func (c *TokenCodec) parse(token, audience string, claims jwt.Claims) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ReasonEmpty
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(audience),
		jwt.WithLeeway(c.skew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return reasonFor(err)
	}
	return ""
}

// checkWindow rejects tokens whose expiry is not after their issue time.
func checkWindow(claims *jwt.RegisteredClaims) string {
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return ReasonMalformed
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return ReasonEmptyWindow
	}
	return ""
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ReasonNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ReasonAudience
	default:
		return ReasonUnverifiable
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
