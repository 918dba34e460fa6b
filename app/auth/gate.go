package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/mytheresa/retail-manager/app/api"
	"github.com/mytheresa/retail-manager/models"
	"github.com/sirupsen/logrus"
)

type UserProvider interface {
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}

type ctxKey struct{}

// UserFromContext returns the user attached by the gate, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// Gate resolves the session cookie to a user and admits only staff and
// superusers.
type Gate struct {
	sessions   SessionStore
	users      UserProvider
	cookieName string
	log        logrus.FieldLogger
}

func NewGate(sessions SessionStore, users UserProvider, cookieName string, log logrus.FieldLogger) *Gate {
	return &Gate{
		sessions:   sessions,
		users:      users,
		cookieName: cookieName,
		log:        log,
	}
}

// Authenticate returns the active user owning the request's session.
func (g *Gate) Authenticate(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrSessionNotFound
	}
	userID, err := g.sessions.Lookup(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	user, err := g.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// RequireStaff redirects anonymous callers to the login page and plain users
// to the welcome page. A failing session store answers 500. Everyone else
// reaches next with the user in context.
func (g *Gate) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Authenticate(r)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				g.log.WithError(err).Error("session lookup failed")
				api.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}
			http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		if !CanOperate(user.Role()) {
			g.log.WithField("user_id", user.ID).Warn("user without staff role denied")
			http.Redirect(w, r, DestinationFor(user.Role()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
