package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// SessionCookieName is the browser session cookie carrying the encoded
// Supabase token pair.
const SessionCookieName = "ba_session"

const sessionMaxAge = 7 * 24 * time.Hour

// SessionTokens is the payload stored in the session cookie. The access
// token is still verified against JWKS on every request; the cookie only
// transports it for browser navigation where no Authorization header is
// available.
type SessionTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

var sessionCodec *securecookie.SecureCookie

// InitSessionCodec configures the authenticated-and-encrypted cookie
// codec. hashKey is required; blockKey enables encryption and may be
// empty to store signed-but-readable cookies.
func InitSessionCodec(hashKey, blockKey []byte) error {
	if len(hashKey) == 0 {
		return errors.New("session hash key must be set")
	}
	var block []byte
	if len(blockKey) > 0 {
		block = blockKey
	}
	sessionCodec = securecookie.New(hashKey, block)
	sessionCodec.MaxAge(int(sessionMaxAge.Seconds()))
	return nil
}

// WriteSessionCookie encodes the token pair into the session cookie.
func WriteSessionCookie(w http.ResponseWriter, tokens SessionTokens) error {
	if sessionCodec == nil {
		return errors.New("session codec not initialized")
	}
	encoded, err := sessionCodec.Encode(SessionCookieName, tokens)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// DecodeSessionCookie reads the token pair back out of a cookie value.
func DecodeSessionCookie(value string) (SessionTokens, error) {
	var tokens SessionTokens
	if sessionCodec == nil {
		return tokens, errors.New("session codec not initialized")
	}
	err := sessionCodec.Decode(SessionCookieName, value, &tokens)
	return tokens, err
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
