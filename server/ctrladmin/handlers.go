package ctrladmin

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"go.senan.xyz/ams/db"
	"go.senan.xyz/ams/passhash"
)

func (c *Controller) ServeNotFound(r *http.Request) *Response {
	return &Response{template: "not_found.tmpl", code: http.StatusNotFound}
}

func (c *Controller) ServeLogin(r *http.Request) *Response {
	return &Response{template: "login.tmpl"}
}

func (c *Controller) ServeLoginDo(r *http.Request) *Response {
	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		return &Response{
			redirect: "/admin/login",
			flashW:   []string{errValiLoginAllField.Error()},
		}
	}
	user, err := c.DB.GetUserByEmail(email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return errorResponse(err, "/admin/login")
	}
	if user == nil || !passhash.Verify(user.Password, password) {
		log.Warn("failed login", "email", email)
		return &Response{
			template: "login.tmpl",
			code:     http.StatusUnauthorized,
			flashW:   []string{"invalid email / password"},
		}
	}
	token, err := c.sessions.Create(user.ID)
	if err != nil {
		return &Response{code: http.StatusInternalServerError, err: "couldn't create session"}
	}
	log.Info("logged in", "user_id", user.ID, "role", user.Role)
	// future endpoints after this one are wrapped with WithUserSession() which
	// will resolve the token and put the user row into the request context
	return &Response{
		redirect: "/admin/home",
		cookies:  []*http.Cookie{sessionCookieSet(token)},
	}
}

func (c *Controller) ServeLogout(r *http.Request) *Response {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		c.sessions.Invalidate(cookie.Value)
	}
	return &Response{
		redirect: "/admin/login",
		flashN:   []string{"logged out"},
		cookies:  []*http.Cookie{sessionCookieClear()},
	}
}

func (c *Controller) ServeHome(r *http.Request) *Response {
	user := r.Context().Value(CtxUser).(*db.User)
	data := &templateData{}
	if user.Is(db.RoleArtist) {
		// artists only get to see the songs of artists linked to them
		songs, err := c.DB.ListSongsForUser(user.ID)
		if err != nil {
			return errorResponse(err, "/admin/home")
		}
		data.Songs = songs
		return &Response{template: "home.tmpl", data: data}
	}
	var err error
	if data.ArtistCount, err = c.DB.CountArtists(); err != nil {
		return errorResponse(err, "/admin/home")
	}
	if data.SongCount, err = c.DB.CountSongs(); err != nil {
		return errorResponse(err, "/admin/home")
	}
	if user.Is(db.RoleSuperAdmin) {
		if data.UserCount, err = c.DB.CountUsers(); err != nil {
			return errorResponse(err, "/admin/home")
		}
	}
	return &Response{template: "home.tmpl", data: data}
}
