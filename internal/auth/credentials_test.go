package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCredential_APIKeyHeader(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderAPIKey, "sdk_abc123")

	cred := ResolveCredential(h)

	assert.Equal(t, CredentialAPIKey, cred.Type)
	assert.Equal(t, "sdk_abc123", cred.APIKey)
}

func TestResolveCredential_BearerToken(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer eyJtoken")

	cred := ResolveCredential(h)

	assert.Equal(t, CredentialSession, cred.Type)
	assert.Equal(t, "eyJtoken", cred.SessionToken)
}

func TestResolveCredential_SessionCookie(t *testing.T) {
	h := http.Header{}
	h.Set("Cookie", SessionCookieName+"=eyJcookie")

	cred := ResolveCredential(h)

	assert.Equal(t, CredentialSession, cred.Type)
	assert.Equal(t, "eyJcookie", cred.SessionToken)
}

func TestResolveCredential_APIKeyWinsOverSession(t *testing.T) {
	// A request may carry both a key and a session; the key decides the
	// identity for that request.
	h := http.Header{}
	h.Set(HeaderAPIKey, "sdk_abc123")
	h.Set("Authorization", "Bearer eyJtoken")
	h.Set("Cookie", SessionCookieName+"=eyJcookie")

	cred := ResolveCredential(h)

	assert.Equal(t, CredentialAPIKey, cred.Type)
	assert.Equal(t, "sdk_abc123", cred.APIKey)
	assert.Empty(t, cred.SessionToken)
}

func TestResolveCredential_BearerWinsOverCookie(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer eyJtoken")
	h.Set("Cookie", SessionCookieName+"=eyJcookie")

	cred := ResolveCredential(h)

	assert.Equal(t, CredentialSession, cred.Type)
	assert.Equal(t, "eyJtoken", cred.SessionToken)
}

func TestResolveCredential_EmptyAPIKeyHeaderIgnored(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderAPIKey, "   ")
	h.Set("Authorization", "Bearer eyJtoken")

	cred := ResolveCredential(h)

	assert.Equal(t, CredentialSession, cred.Type)
}

func TestResolveCredential_MalformedAuthorizationIgnored(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Basic dXNlcjpwYXNz")

	cred := ResolveCredential(h)

	assert.Equal(t, CredentialNone, cred.Type)
}

func TestResolveCredential_NoCredential(t *testing.T) {
	cred := ResolveCredential(http.Header{})
	assert.Equal(t, CredentialNone, cred.Type)
}

func TestHashKey_Deterministic(t *testing.T) {
	a := HashKey("sdk_abc123")
	b := HashKey("sdk_abc123")
	c := HashKey("sdk_abc124")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex sha256
}
