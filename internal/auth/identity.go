// Package auth attaches a user identity to requests. There are no accounts:
// every visitor is anonymous, identified by a stable id kept in a cookie.
package auth

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey      contextKey = "userID"
	DisplayNameKey contextKey = "displayName"

	CookieName = "sketchpad_uid"

	anonymousPrefix = "anon-"
	maxNameLen      = 40
)

// Identity ensures every request carries a user id, minting one and setting
// it as a cookie on first contact. A display name may be passed as the
// "name" query parameter; it defaults to "Anonymous".
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := ""
		if c, err := r.Cookie(CookieName); err == nil && validUserID(c.Value) {
			userID = c.Value
		} else {
			userID = NewUserID()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    userID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, DisplayNameKey, DisplayName(r.URL.Query().Get("name")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NewUserID returns a fresh anonymous user id.
func NewUserID() string {
	return anonymousPrefix + uuid.New().String()[:8]
}

func validUserID(v string) bool {
	rest, ok := strings.CutPrefix(v, anonymousPrefix)
	if !ok || len(rest) != 8 {
		return false
	}
	for _, c := range rest {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

// DisplayName trims and bounds a user-supplied name.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Anonymous"
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

func DisplayNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(DisplayNameKey).(string)
	if name == "" {
		return "Anonymous"
	}
	return name
}
