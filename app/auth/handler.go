package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mytheresa/retail-manager/app/api"
	"github.com/mytheresa/retail-manager/models"
	"github.com/sirupsen/logrus"
)

type LoginHandler struct {
	sessions   SessionStore
	users      UserProvider
	cookieName string
	ttl        time.Duration
	log        logrus.FieldLogger
}

func NewLoginHandler(sessions SessionStore, users UserProvider, cookieName string, ttl time.Duration, log logrus.FieldLogger) *LoginHandler {
	return &LoginHandler{
		sessions:   sessions,
		users:      users,
		cookieName: cookieName,
		ttl:        ttl,
		log:        log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

// LoginForm describes what HandleLogin expects.
type LoginForm struct {
	Fields []string `json:"fields"`
	Action string   `json:"action"`
	Next   string   `json:"next,omitempty"`
}

// HandleLoginForm answers the login page the gate redirects to.
func (h *LoginHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if !isLocalPath(next) {
		next = ""
	}
	api.WriteJSON(w, http.StatusOK, LoginForm{
		Fields: []string{"username", "password"},
		Action: LoginPath,
		Next:   next,
	})
}

func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	api.LimitBody(w, r)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			api.WriteError(w, http.StatusBadRequest, "Invalid form body")
			return
		}
		input.Username = r.PostForm.Get("username")
		input.Password = r.PostForm.Get("password")
		input.Next = r.PostForm.Get("next")
	}
	if input.Next == "" {
		input.Next = r.URL.Query().Get("next")
	}

	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	log := h.log.WithField("username", input.Username)

	user, err := h.users.GetByUsername(input.Username)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		log.WithError(err).Error("user lookup failed")
		api.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !user.IsActive || !user.CheckPassword(input.Password) {
		log.Warn("login rejected")
		api.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		log.WithError(err).Error("failed to create session")
		api.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	dest := DestinationFor(user.Role())
	if CanOperate(user.Role()) && isLocalPath(input.Next) {
		dest = input.Next
	}
	log.WithField("role", user.Role().String()).Info("user logged in")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.log.WithError(err).Warn("failed to delete session")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, WelcomePath, http.StatusSeeOther)
}

// isLocalPath accepts only same-site absolute paths.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}
