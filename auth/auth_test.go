package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
)

var testSecret = []byte("test-signing-key")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"id":    "u1",
		"email": "ops@lezzetli.test",
		"name":  "Ops",
		"role":  "company",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerifySuccess(t *testing.T) {
	v := NewVerifier(testSecret, nil)

	id, err := v.Verify(context.Background(), sign(t, jwt.SigningMethodHS256, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "u1", id.SubjectID)
	assert.Equal(t, RoleCompany, id.Role)
	assert.Equal(t, "u1", id.ScopeKey, "scope falls back to the subject id")

	claims := validClaims()
	claims["companyId"] = "c9"
	id, err = v.Verify(context.Background(), sign(t, jwt.SigningMethodHS256, testSecret, claims))
	require.NoError(t, err)
	assert.Equal(t, "c9", id.ScopeKey)
}

func TestVerifyFailures(t *testing.T) {
	v := NewVerifier(testSecret, nil)

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	unknownRole := validClaims()
	unknownRole["role"] = "superuser"

	noRole := validClaims()
	delete(noRole, "role")

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", apperrors.ErrMissingCredential},
		{"blank", "   ", apperrors.ErrMissingCredential},
		{"garbage", "not.a.jwt", apperrors.ErrInvalidCredential},
		{"wrong key", sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()), apperrors.ErrInvalidCredential},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, testSecret, validClaims()), apperrors.ErrInvalidCredential},
		{"expired", sign(t, jwt.SigningMethodHS256, testSecret, expired), apperrors.ErrInvalidCredential},
		{"no expiry", sign(t, jwt.SigningMethodHS256, testSecret, noExpiry), apperrors.ErrInvalidCredential},
		{"unknown role", sign(t, jwt.SigningMethodHS256, testSecret, unknownRole), apperrors.ErrInvalidCredential},
		{"no role", sign(t, jwt.SigningMethodHS256, testSecret, noRole), apperrors.ErrInvalidCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(context.Background(), tt.token)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, Identity{}, id, "no partial identity on failure")
		})
	}
}

func TestIssueAndRevoke(t *testing.T) {
	denylist := NewMemoryDenylist()
	issuer := NewIssuer(testSecret, 24*time.Hour)
	v := NewVerifier(testSecret, denylist)

	token, expires, err := issuer.Issue(Subject{ID: "c1", Email: "co@lezzetli.test", Role: RoleCompany, CompanyID: "c1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, time.Minute)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "c1", id.ScopeKey)
	require.NotEmpty(t, id.TokenID)

	require.NoError(t, denylist.Revoke(context.Background(), id.TokenID, expires))
	_, err = v.Verify(context.Background(), token)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredential))
}

func TestIssuedTokenExpires(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue(Subject{ID: "a1", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, nil).Verify(context.Background(), token)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredential))
}

type failingDenylist struct{}

func (failingDenylist) Revoke(context.Context, string, time.Time) error { return nil }
func (failingDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestVerifyDenylistOutage(t *testing.T) {
	token, _, err := NewIssuer(testSecret, time.Hour).Issue(Subject{ID: "a1", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, failingDenylist{}).Verify(context.Background(), token)
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
}

func TestIdentityFromContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{SubjectID: "a1", Role: RoleAdmin})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.True(t, id.IsAdmin())

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(12)
	require.NoError(t, err)
	b, err := GeneratePassword(12)
	require.NoError(t, err)
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, passwordAlphabet, string(r))
	}
}
