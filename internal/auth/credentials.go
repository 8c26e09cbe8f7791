// Package auth resolves an inbound request's credential to a tenant context:
// which organization, which user, and which role apply. Membership lookups
// run on the administrative pool; nothing here touches tenant business data.
package auth

import (
	"net/http"
	"strings"
)

const (
	// HeaderAPIKey carries an API key credential. When present it is the
	// sole credential for the request: session cookies and bearer tokens
	// are ignored on that path.
	HeaderAPIKey = "X-API-Key"

	// SessionCookieName carries the session JWT for browser clients.
	SessionCookieName = "supportdesk_session"
)

// CredentialType discriminates the credential a request presented.
type CredentialType int

const (
	CredentialNone CredentialType = iota
	CredentialAPIKey
	CredentialSession
)

// Credential is the raw identity extracted from request headers. Extraction
// is pure; validity is decided downstream.
type Credential struct {
	Type         CredentialType
	APIKey       string
	SessionToken string
}

// ResolveCredential inspects the request headers and produces exactly one of
// {API key, session token, none}.
func ResolveCredential(h http.Header) Credential {
	if key := strings.TrimSpace(h.Get(HeaderAPIKey)); key != "" {
		return Credential{Type: CredentialAPIKey, APIKey: key}
	}

	if authz := h.Get("Authorization"); authz != "" {
		token := strings.TrimPrefix(authz, "Bearer ")
		if token != authz && strings.TrimSpace(token) != "" {
			return Credential{Type: CredentialSession, SessionToken: strings.TrimSpace(token)}
		}
	}

	if cookie := sessionCookie(h); cookie != "" {
		return Credential{Type: CredentialSession, SessionToken: cookie}
	}

	return Credential{Type: CredentialNone}
}

func sessionCookie(h http.Header) string {
	req := http.Request{Header: h}
	cookie, err := req.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
