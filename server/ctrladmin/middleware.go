package ctrladmin

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/sessions"

	"go.senan.xyz/ams/authz"
	"go.senan.xyz/ams/db"
)

func (c *Controller) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := c.flashStore.Get(r, flashSessionName)
		withSession := context.WithValue(r.Context(), CtxSession, session)
		next.ServeHTTP(w, r.WithContext(withSession))
	})
}

func (c *Controller) WithUserSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// session exists at this point
		session := r.Context().Value(CtxSession).(*sessions.Session)
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			c.redirectToLogin(w, r, session)
			return
		}
		userID, ok := c.sessions.Resolve(cookie.Value)
		if !ok {
			http.SetCookie(w, sessionCookieClear())
			c.redirectToLogin(w, r, session)
			return
		}
		// take the user id from the session token and add the user row to the context
		user, err := c.DB.GetUser(userID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			// the token no longer relates to a user in the database (maybe
			// the user was deleted)
			c.sessions.Invalidate(cookie.Value)
			http.SetCookie(w, sessionCookieClear())
			c.redirectToLogin(w, r, session)
			return
		case err != nil:
			log.Error("getting session user", "user_id", userID, "err", err)
			http.Error(w, "error getting session user", http.StatusInternalServerError)
			return
		}
		withUser := context.WithValue(r.Context(), CtxUser, user)
		next.ServeHTTP(w, r.WithContext(withUser))
	})
}

// WithAction lets the request through only if the session user may perform the
// action. it must come after WithUserSession
func (c *Controller) WithAction(action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := r.Context().Value(CtxSession).(*sessions.Session)
			user := r.Context().Value(CtxUser).(*db.User)
			err := c.gate.Check(user.ID, action)
			switch {
			case errors.Is(err, authz.ErrNotAuthenticated):
				http.SetCookie(w, sessionCookieClear())
				c.redirectToLogin(w, r, session)
			case errors.Is(err, authz.ErrNotAuthorized):
				log.Warn("denied admin action", "user_id", user.ID, "action", action)
				c.render(w, r, session, &Response{template: "access_denied.tmpl", code: http.StatusForbidden})
			case err != nil:
				log.Error("checking admin action", "action", action, "err", err)
				http.Error(w, "error checking permissions", http.StatusInternalServerError)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func (c *Controller) redirectToLogin(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	sessAddFlashW(session, []string{"you are not authenticated"})
	sessLogSave(session, w, r)
	http.Redirect(w, r, c.Path("/admin/login"), http.StatusSeeOther)
}
