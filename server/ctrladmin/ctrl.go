// Package ctrladmin provides HTTP handlers for admin UI
package ctrladmin

import (
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gorilla/sessions"
	"github.com/oxtoacart/bpool"

	"go.senan.xyz/ams"
	"go.senan.xyz/ams/authz"
	"go.senan.xyz/ams/db"
	"go.senan.xyz/ams/server/ctrladmin/adminui"
	"go.senan.xyz/ams/server/ctrlbase"
	"go.senan.xyz/ams/sessionstore"
)

type CtxKey int

const (
	CtxUser CtxKey = iota
	CtxSession
)

const (
	flashSessionName = ams.Name
	sessionCookie    = "session_id"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"date": func(in time.Time) string {
			return strings.ToLower(in.Format("Jan 02, 2006"))
		},
		"dateHuman": humanize.Time,
	}
}

type Controller struct {
	*ctrlbase.Controller
	buffPool   *bpool.BufferPool
	templates  map[string]*template.Template
	flashStore sessions.Store
	sessions   sessionstore.Store
	gate       *authz.Gate
}

func New(b *ctrlbase.Controller, flashStore sessions.Store, sessStore sessionstore.Store) (*Controller, error) {
	tmplBase := template.
		New("layout").
		Funcs(sprig.FuncMap()).
		Funcs(funcMap()).       // static
		Funcs(template.FuncMap{ // from base
			"path": b.Path,
		})
	tmplBase, err := tmplBase.ParseFS(adminui.TemplatesFS, "components.tmpl")
	if err != nil {
		return nil, fmt.Errorf("extend base templates: %w", err)
	}
	pages, err := pagesFromFS(tmplBase, adminui.TemplatesFS, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("build pages: %w", err)
	}
	return &Controller{
		Controller: b,
		buffPool:   bpool.NewBufferPool(64),
		templates:  pages,
		flashStore: flashStore,
		sessions:   sessStore,
		gate:       authz.NewGate(b.DB),
	}, nil
}

// pagesFromFS clones the base template for every page matching the pattern,
// keyed by the page's file name
func pagesFromFS(base *template.Template, fsys fs.FS, pattern string) (map[string]*template.Template, error) {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	ret := map[string]*template.Template{}
	for _, path := range paths {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone for %q: %w", path, err)
		}
		page, err := clone.ParseFS(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", path, err)
		}
		ret[filepath.Base(path)] = page
	}
	return ret, nil
}

type templateData struct {
	// common
	Flashes []interface{}
	User    *db.User
	Version string
	// home
	UserCount   int
	ArtistCount int
	SongCount   int
	// lists
	Users   []*db.User
	Artists []*db.Artist
	Songs   []*db.SongView
	Pager   *pager
	// forms
	Roles          []db.Role
	SelectedUser   *db.User
	SelectedArtist *db.Artist
	SelectedSong   *db.Song
}

// Can reports whether the current user may perform the named action
func (d *templateData) Can(action string) bool {
	if d.User == nil {
		return false
	}
	return authz.Can(d.User.Role, authz.Action(action))
}

type pager struct {
	Path  string
	Page  db.Page
	Total int
}

func newPager(path string, page db.Page, total int) *pager {
	return &pager{Path: path, Page: page, Total: total}
}

func (p *pager) Prev() int { return p.Page.Prev() }
func (p *pager) Next() int { return p.Page.Next(p.Total) }

type Response struct {
	// code is 200
	template string
	data     *templateData
	// code is 303
	redirect string
	flashN   []string // normal
	flashW   []string // warning
	// set on any response
	cookies []*http.Cookie
	// code is >= 400
	code int
	err  string
}

type (
	handlerAdmin    func(r *http.Request) *Response
	handlerAdminRaw func(w http.ResponseWriter, r *http.Request)
)

func (c *Controller) H(h handlerAdmin) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h(r)
		for _, cookie := range resp.cookies {
			http.SetCookie(w, cookie)
		}
		session, ok := r.Context().Value(CtxSession).(*sessions.Session)
		if ok {
			sessAddFlashN(session, resp.flashN)
			sessAddFlashW(session, resp.flashW)
			if err := session.Save(r, w); err != nil {
				http.Error(w, fmt.Sprintf("error saving session: %v", err), 500)
				return
			}
		}
		if resp.redirect != "" {
			to := resp.redirect
			if strings.HasPrefix(to, "/") {
				to = c.Path(to)
			}
			http.Redirect(w, r, to, http.StatusSeeOther)
			return
		}
		if resp.err != "" {
			http.Error(w, resp.err, resp.code)
			return
		}
		if resp.template == "" {
			http.Error(w, "useless handler return", 500)
			return
		}
		c.render(w, r, session, resp)
	})
}

func (c *Controller) render(w http.ResponseWriter, r *http.Request, session *sessions.Session, resp *Response) {
	if resp.data == nil {
		resp.data = &templateData{}
	}
	resp.data.Version = ams.Version
	if session != nil {
		resp.data.Flashes = session.Flashes()
		if err := session.Save(r, w); err != nil {
			http.Error(w, fmt.Sprintf("error saving session: %v", err), 500)
			return
		}
	}
	if user, ok := r.Context().Value(CtxUser).(*db.User); ok {
		resp.data.User = user
	}
	buff := c.buffPool.Get()
	defer c.buffPool.Put(buff)
	tmpl, ok := c.templates[resp.template]
	if !ok {
		http.Error(w, fmt.Sprintf("finding template %q", resp.template), 500)
		return
	}
	if err := tmpl.Execute(buff, resp.data); err != nil {
		http.Error(w, fmt.Sprintf("executing template: %v", err), 500)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if resp.code != 0 {
		w.WriteHeader(resp.code)
	}
	if _, err := buff.WriteTo(w); err != nil {
		log.Error("writing to response buffer", "err", err)
	}
}

func (c *Controller) HR(h handlerAdminRaw) http.Handler {
	return http.HandlerFunc(h)
}

// ## begin utilities
// ## begin utilities
// ## begin utilities

type FlashType string

const (
	FlashNormal  = FlashType("normal")
	FlashWarning = FlashType("warning")
)

type Flash struct {
	Message string
	Type    FlashType
}

func init() {
	gob.Register(&Flash{})
}

func sessAddFlashN(s *sessions.Session, messages []string) {
	sessAddFlash(s, messages, FlashNormal)
}

func sessAddFlashW(s *sessions.Session, messages []string) {
	sessAddFlash(s, messages, FlashWarning)
}

func sessAddFlash(s *sessions.Session, messages []string, flashT FlashType) {
	if len(messages) == 0 {
		return
	}
	for i, message := range messages {
		if i > 6 {
			break
		}
		s.AddFlash(Flash{
			Message: message,
			Type:    flashT,
		})
	}
}

func sessLogSave(s *sessions.Session, w http.ResponseWriter, r *http.Request) {
	if err := s.Save(r, w); err != nil {
		log.Error("saving session", "err", err)
	}
}

func sessionCookieSet(token string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func sessionCookieClear() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// errorResponse maps a storage error to the response the user sees. back is
// where constraint failures are sent with a flash
func errorResponse(err error, back string) *Response {
	var cerr *db.ConstraintError
	switch {
	case errors.Is(err, db.ErrNotFound):
		return &Response{template: "not_found.tmpl", code: http.StatusNotFound}
	case errors.As(err, &cerr):
		return &Response{redirect: back, flashW: []string{cerr.Error()}}
	case errors.Is(err, db.ErrInvalidRole), errors.Is(err, db.ErrInvalidPage):
		return &Response{err: err.Error(), code: http.StatusBadRequest}
	default:
		log.Error("admin request", "err", err)
		return &Response{err: err.Error(), code: http.StatusInternalServerError}
	}
}
