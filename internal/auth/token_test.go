package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gharsewa/internal/general/contracts"
)

func TestParseIdentityRoundTrip(t *testing.T) {
	token, err := MintDevToken("dev-secret", "worker-42", contracts.RoleWorker, time.Hour)
	require.NoError(t, err)

	identity, err := ParseIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "worker-42", identity.UserID)
	assert.Equal(t, contracts.RoleWorker, identity.Role)
}

func TestParseIdentityStripsBearerPrefix(t *testing.T) {
	token, err := MintDevToken("dev-secret", "user-7", contracts.RoleUser, time.Hour)
	require.NoError(t, err)

	identity, err := ParseIdentity("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", identity.UserID)
}

func TestParseIdentityErrors(t *testing.T) {
	_, err := ParseIdentity("")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = ParseIdentity("Bearer   ")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = ParseIdentity("not.a.jwt")
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestParseIdentityRejectsMissingClaims(t *testing.T) {
	// minted tokens always carry both claims, so forge the gaps directly
	_, err := ParseIdentity(forgeToken(t, `{"role":"user"}`))
	assert.ErrorIs(t, err, ErrNoSubject)

	_, err = ParseIdentity(forgeToken(t, `{"sub":"u1","role":"admin"}`))
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = ParseIdentity(forgeToken(t, `{"sub":"u1"}`))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

// forgeToken builds an unsigned header.claims.sig triple; ParseIdentity never
// checks the signature, so any third segment will do.
func forgeToken(t *testing.T, claims string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(claims))
	return header + "." + body + ".sig"
}

func TestMintDevTokenValidation(t *testing.T) {
	_, err := MintDevToken("", "u1", contracts.RoleUser, time.Hour)
	assert.Error(t, err)

	_, err = MintDevToken("secret", "", contracts.RoleUser, time.Hour)
	assert.ErrorIs(t, err, ErrNoSubject)

	_, err = MintDevToken("secret", "u1", "admin", time.Hour)
	assert.ErrorIs(t, err, ErrUnknownRole)
}
