package storage

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Minute)

	payload, sig := s.Sign(ActionUpload, "jobs/j1/f1-a.txt")
	grant, err := s.Verify(payload, sig, ActionUpload)
	require.NoError(t, err)
	assert.Equal(t, "jobs/j1/f1-a.txt", grant.ObjectKey)

	_, err = s.Verify(payload, sig, ActionDownload)
	assert.ErrorIs(t, err, ErrWrongAction)

	_, err = NewSigner("other", time.Minute).Verify(payload, sig, ActionUpload)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = s.Verify(payload+"x", sig, ActionUpload)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestSignerExpiry(t *testing.T) {
	s := NewSigner("secret", time.Minute)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	payload, sig := s.Sign(ActionDownload, "k")

	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err := s.Verify(payload, sig, ActionDownload)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestLocalWriteReadDelete(t *testing.T) {
	l, err := NewLocal(t.TempDir(), NewSigner("secret", time.Minute), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	require.NoError(t, l.Write("jobs/j1/f1-a.txt", strings.NewReader("hello")))

	data, err := l.Read("jobs/j1/f1-a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, l.Delete("jobs/j1/f1-a.txt"))
	require.NoError(t, l.Delete("jobs/j1/f1-a.txt"))

	_, err = l.Read("jobs/j1/f1-a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir(), NewSigner("secret", time.Minute), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	for _, key := range []string{"../x", "/etc/passwd", "a/../../x", ""} {
		assert.Error(t, l.Write(key, strings.NewReader("x")), key)
	}
}

func TestSignedURLs(t *testing.T) {
	l, err := NewLocal(t.TempDir(), NewSigner("secret", time.Minute), "https://crew.example.com/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	up := l.SignedUploadURL("jobs/j/f-a.pdf", "application/pdf")
	assert.Equal(t, "PUT", up.Method)
	assert.Equal(t, "application/pdf", up.Headers["content-type"])
	assert.True(t, strings.HasPrefix(up.URL, "https://crew.example.com"+UploadPath+"?"))

	down := l.SignedDownloadURL("jobs/j/f-a.pdf", "a.pdf")
	u, err := url.Parse(down.URL)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", u.Query().Get("name"))

	_, err = l.Signer().Verify(u.Query().Get("payload"), u.Query().Get("sig"), ActionDownload)
	assert.NoError(t, err)
}
