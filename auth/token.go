package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
)

// Denylist records revoked credentials until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Subject is what an issued credential asserts.
type Subject struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CompanyID string
}

// Verifier turns a bearer credential into an Identity.
type Verifier struct {
	secret   []byte
	denylist Denylist
}

// NewVerifier creates a verifier for HS256 credentials signed with secret.
// denylist may be nil when revocation is not configured.
func NewVerifier(secret []byte, denylist Denylist) *Verifier {
	return &Verifier{secret: secret, denylist: denylist}
}

// Verify checks signature, algorithm, expiry, role and revocation. It
// returns an error wrapping ErrMissingCredential for an empty token and
// ErrInvalidCredential for anything else a caller could fix by logging in
// again. Denylist outages wrap ErrStoreUnavailable.
func (v *Verifier) Verify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperrors.ErrMissingCredential
	}
	if len(v.secret) == 0 {
		return Identity{}, apperrors.Wrap(apperrors.ErrInvalidCredential, errors.New("signing key not configured"))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return Identity{}, apperrors.Wrap(apperrors.ErrInvalidCredential, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperrors.Wrap(apperrors.ErrInvalidCredential, errors.New("invalid token claims"))
	}
	if _, ok := claims["exp"]; !ok {
		return Identity{}, apperrors.Wrap(apperrors.ErrInvalidCredential, errors.New("token has no expiry"))
	}

	id := Identity{
		SubjectID: stringClaim(claims, "id"),
		Email:     stringClaim(claims, "email"),
		Name:      stringClaim(claims, "name"),
		Role:      Role(stringClaim(claims, "role")),
		TokenID:   stringClaim(claims, "jti"),
	}
	if id.SubjectID == "" {
		return Identity{}, apperrors.Wrap(apperrors.ErrInvalidCredential, errors.New("token has no subject"))
	}
	if id.Role != RoleAdmin && id.Role != RoleCompany {
		return Identity{}, apperrors.Wrap(apperrors.ErrInvalidCredential, fmt.Errorf("unknown role %q", id.Role))
	}
	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0)
	}
	id.ScopeKey = stringClaim(claims, "companyId")
	if id.ScopeKey == "" {
		id.ScopeKey = id.SubjectID
	}

	if v.denylist != nil && id.TokenID != "" {
		revoked, err := v.denylist.IsRevoked(ctx, id.TokenID)
		if err != nil {
			return Identity{}, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
		}
		if revoked {
			return Identity{}, apperrors.Wrap(apperrors.ErrInvalidCredential, errors.New("token revoked"))
		}
	}

	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// Issuer signs credentials for authenticated subjects.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// TTL returns how long issued credentials stay valid.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue returns a signed credential and its expiry.
func (i *Issuer) Issue(s Subject) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}
	now := i.now()
	expires := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"id":    s.ID,
		"email": s.Email,
		"name":  s.Name,
		"role":  string(s.Role),
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	}
	if s.CompanyID != "" {
		claims["companyId"] = s.CompanyID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}
