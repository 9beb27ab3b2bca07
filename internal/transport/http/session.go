package http

import (
	"net/http"

	"github.com/google/uuid"
)

const sessionCookie = "lingo_session"

// sessionID returns the caller's session id, minting a new one when the cookie
// is missing or malformed. The returned cookie is nil when the request
// already carried a valid one.
func sessionID(r *http.Request) (string, *http.Cookie) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), nil
		}
	}
	id := uuid.NewString()
	return id, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
