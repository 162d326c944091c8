package middleware

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/httputil"
	"github.com/AdamBeresnev/toilescoins/internal/logging"
	users "github.com/AdamBeresnev/toilescoins/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/cockroachdb/errors"
)

// SessionUserKey is the session entry holding the signed-in user id.
const SessionUserKey = "userID"

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*users.User, error)
}

// LoadAuthenticatedUser puts the session's user, if any, on the request context.
// A session pointing at a deleted user is cleared.
func LoadAuthenticatedUser(sessionManager *scs.SessionManager, lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessionManager.GetString(r.Context(), SessionUserKey)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := lookup.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, bracket.ErrNotFound) {
					sessionManager.Remove(r.Context(), SessionUserKey)
				} else {
					logging.Warn("load session user", "user_id", userID, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), users.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session user is missing or not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthenticatedUser(r.Context())
		if user == nil || !user.IsAdmin {
			httputil.WriteError(w, r, bracket.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	val := ctx.Value(users.UserKey)
	if val == nil {
		return nil
	}
	user, ok := val.(*users.User)
	if !ok {
		return nil
	}
	return user
}
