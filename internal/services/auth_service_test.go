package services_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHMACVerifier(t *testing.T) {
	v := services.NewHMACVerifier(testutil.Secret, "", "")

	id, err := v.Verify(ctx(), testutil.Token(t, "u-1", "PM"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "u-1@example.com", id.Email)
	assert.Equal(t, "User u-1", id.DisplayName)
	assert.Equal(t, authz.GlobalPM, id.GlobalRole)

	id, err = v.Verify(ctx(), testutil.Token(t, "u-2", "Technician"))
	require.NoError(t, err)
	assert.Equal(t, authz.GlobalNone, id.GlobalRole)

	_, err = v.Verify(ctx(), "not-a-token")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	wrong := services.NewHMACVerifier("another-secret", "", "")
	_, err = wrong.Verify(ctx(), testutil.Token(t, "u-1", ""))
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	noSub := sign(t, testutil.Secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	_, err = v.Verify(ctx(), noSub)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	noExp := sign(t, testutil.Secret, jwt.MapClaims{"sub": "u-1"})
	_, err = v.Verify(ctx(), noExp)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	expired := sign(t, testutil.Secret, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = v.Verify(ctx(), expired)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestHMACVerifierIssuerAudience(t *testing.T) {
	v := services.NewHMACVerifier(testutil.Secret, "https://id.example.com", "gigcrew")
	exp := time.Now().Add(time.Hour).Unix()

	good := sign(t, testutil.Secret, jwt.MapClaims{"sub": "u-1", "exp": exp, "iss": "https://id.example.com", "aud": "gigcrew"})
	_, err := v.Verify(ctx(), good)
	require.NoError(t, err)

	badAud := sign(t, testutil.Secret, jwt.MapClaims{"sub": "u-1", "exp": exp, "iss": "https://id.example.com", "aud": "other"})
	_, err = v.Verify(ctx(), badAud)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, err = v.Verify(ctx(), testutil.Token(t, "u-1", ""))
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestNewVerifier(t *testing.T) {
	v, err := services.NewVerifier(&config.Config{AuthMode: config.AuthModeHMAC, JWTSecret: testutil.Secret})
	require.NoError(t, err)
	assert.IsType(t, &services.HMACVerifier{}, v)

	v, err = services.NewVerifier(&config.Config{
		AuthMode:    config.AuthModeJWKS,
		JWTJWKSURL:  "https://id.example.com/.well-known/jwks.json",
		JWTIssuer:   "https://id.example.com/",
		JWTAudience: "gigcrew",
	})
	require.NoError(t, err)
	assert.IsType(t, &services.JWKSVerifier{}, v)

	v, err = services.NewVerifier(&config.Config{AuthMode: config.AuthModeAuthorizer, AuthzURL: "http://127.0.0.1:1", AuthzClientID: "client"})
	require.NoError(t, err)
	assert.IsType(t, &services.AuthorizerVerifier{}, v)

	_, err = services.NewVerifier(&config.Config{AuthMode: "basic"})
	assert.Error(t, err)
}
