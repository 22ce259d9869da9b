package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("exp-1", "reports/2026-10.xlsx")
	require.NoError(t, err)

	id, path, parsed, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "exp-1", id)
	require.Equal(t, "reports/2026-10.xlsx", path)
	require.True(t, expiresAt.Equal(parsed))
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("exp-1", "reports/a.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, _, _, err = signer.Parse(token, false)
	require.ErrorIs(t, err, ErrTokenExpired)

	_, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "reports/a.csv", path)
}

func TestSignedURLTampered(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("exp-1", "reports/a.csv")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, _, _, err = other.Parse(token, false)
	require.ErrorIs(t, err, ErrTokenSignature)

	_, _, _, err = signer.Parse("a.b.c", false)
	require.ErrorIs(t, err, ErrTokenMalformed)
}
