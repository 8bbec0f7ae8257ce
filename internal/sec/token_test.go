package sec

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	identity := Identity{ID: 42, Username: "ann", Role: RoleStaff}
	token, err := SignToken(identity, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, identity, parsed)
}

func TestParseTokenFailures(t *testing.T) {
	t.Parallel()

	valid, err := SignToken(Identity{ID: 1, Username: "ann", Role: RoleAdmin}, testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "malformed", token: "not.a.jwt", secret: testSecret},
		{name: "empty token", token: "", secret: testSecret},
		{name: "wrong secret", token: valid, secret: "other-secret"},
		{name: "empty secret", token: valid, secret: ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseToken(test.token, test.secret)
			require.Error(t, err)
		})
	}
}

func TestParseTokenExpired(t *testing.T) {
	t.Parallel()

	token, err := SignToken(Identity{ID: 1, Username: "ann", Role: RoleStaff}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	require.Error(t, err)
}

func TestParseTokenRejectsForeignAlg(t *testing.T) {
	t.Parallel()

	// Signed with "none", which the parser must refuse regardless of claims.
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":       1,
		"username": "ann",
		"role":     RoleAdmin,
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(signed, testSecret)
	require.Error(t, err)
}

func TestIdentityRoles(t *testing.T) {
	t.Parallel()

	admin := Identity{Role: RoleAdmin}
	staff := Identity{Role: RoleStaff}
	none := Identity{}

	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsStaff())
	assert.False(t, staff.IsAdmin())
	assert.True(t, staff.IsStaff())
	assert.False(t, none.IsAdmin())
	assert.False(t, none.IsStaff())
}
