package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Mint(Identity{Email: "asha@example.com", Name: "Asha"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", id.Email)
	assert.Equal(t, "Asha", id.Name)
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Mint(Identity{Email: "asha@example.com"}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	minter := NewJWTVerifier("secret-a")
	v := NewJWTVerifier("secret-b")

	token, err := minter.Mint(Identity{Email: "asha@example.com"}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyRequiresEmailClaim(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Mint(Identity{Name: "No Email"}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
