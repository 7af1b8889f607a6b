// internal/domain/delivery/signedurl_test.go
package delivery

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-signing-secret"

func TestSignedURLRoundTrip(t *testing.T) {
	signed, err := CreateSignedDownloadURL("assets/ebook-v2.pdf", "https://cdn.example.com/delivery", testSecret, 15*time.Minute)
	require.NoError(t, err)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/delivery/assets/ebook-v2.pdf", parsed.Path)
	assert.NotEmpty(t, parsed.Query().Get("expires"))
	assert.NotEmpty(t, parsed.Query().Get("signature"))

	assert.True(t, VerifySignedDownloadURL(signed, testSecret))
}

func TestSignedURLExpired(t *testing.T) {
	signed, err := CreateSignedDownloadURL("assets/ebook.pdf", "https://cdn.example.com", testSecret, -time.Minute)
	require.NoError(t, err)

	assert.False(t, VerifySignedDownloadURL(signed, testSecret))
}

func TestSignedURLTamperedSignature(t *testing.T) {
	signed, err := CreateSignedDownloadURL("assets/ebook.pdf", "https://cdn.example.com", testSecret, time.Hour)
	require.NoError(t, err)

	// Flip one hex character of the signature.
	idx := strings.Index(signed, "signature=") + len("signature=")
	flipped := byte('0')
	if signed[idx] == '0' {
		flipped = '1'
	}
	tampered := signed[:idx] + string(flipped) + signed[idx+1:]

	assert.False(t, VerifySignedDownloadURL(tampered, testSecret))
}

func TestSignedURLTamperedPath(t *testing.T) {
	signed, err := CreateSignedDownloadURL("assets/cheap.pdf", "https://cdn.example.com", testSecret, time.Hour)
	require.NoError(t, err)

	tampered := strings.Replace(signed, "cheap.pdf", "premium.pdf", 1)
	assert.False(t, VerifySignedDownloadURL(tampered, testSecret))
}

func TestSignedURLWrongSecret(t *testing.T) {
	signed, err := CreateSignedDownloadURL("assets/ebook.pdf", "https://cdn.example.com", testSecret, time.Hour)
	require.NoError(t, err)

	assert.False(t, VerifySignedDownloadURL(signed, "some-other-secret"))
}

func TestVerifyRejectsMalformedURLs(t *testing.T) {
	assert.False(t, VerifySignedDownloadURL("https://cdn.example.com/delivery/x.pdf", testSecret))
	assert.False(t, VerifySignedDownloadURL("https://cdn.example.com/x.pdf?expires=abc&signature=deadbeef", testSecret))
	assert.False(t, VerifySignedDownloadURL("https://cdn.example.com/x.pdf?expires=9999999999", testSecret))
}
