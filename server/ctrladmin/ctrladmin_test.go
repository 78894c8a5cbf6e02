package ctrladmin

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.senan.xyz/ams/db"
	"go.senan.xyz/ams/passhash"
	"go.senan.xyz/ams/server/ctrlbase"
	"go.senan.xyz/ams/sessionstore"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type env struct {
	c        *Controller
	router   *mux.Router
	db       *db.DB
	sessions *sessionstore.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dbc, err := db.NewMock()
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, dbc.Migrate(db.MigrationContext{}))

	sessStore := sessionstore.NewMemory()
	flashStore := sessions.NewCookieStore(securecookie.GenerateRandomKey(32))
	c, err := New(&ctrlbase.Controller{DB: dbc}, flashStore, sessStore)
	require.NoError(t, err)

	r := mux.NewRouter()
	AddRoutes(c, r.PathPrefix("/admin").Subrouter())
	return &env{c: c, router: r, db: dbc, sessions: sessStore}
}

func (e *env) user(t *testing.T, email, password string, role db.Role) *db.User {
	t.Helper()
	hash, err := passhash.Hash(password)
	require.NoError(t, err)
	user := &db.User{
		FirstName: "jo",
		LastName:  "doe",
		Email:     email,
		Password:  hash,
		Gender:    "f",
		Role:      role,
	}
	require.NoError(t, e.db.CreateUser(user))
	return user
}

// login skips the login form and hands back a cookie for a fresh session
func (e *env) login(t *testing.T, user *db.User) *http.Cookie {
	t.Helper()
	token, err := e.sessions.Create(user.ID)
	require.NoError(t, err)
	return sessionCookieSet(token)
}

func (e *env) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *env) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (e *env) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookie)
}

func responseCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAccessByRole(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	admin := e.login(t, e.user(t, "admin@example.com", "pw", db.RoleSuperAdmin))
	manager := e.login(t, e.user(t, "manager@example.com", "pw", db.RoleArtistManager))
	artist := e.login(t, e.user(t, "artist@example.com", "pw", db.RoleArtist))

	tcases := []struct {
		name   string
		path   string
		cookie *http.Cookie
		code   int
	}{
		{"admin users", "/admin/users", admin, http.StatusOK},
		{"manager users", "/admin/users", manager, http.StatusForbidden},
		{"artist users", "/admin/users", artist, http.StatusForbidden},
		{"admin artists", "/admin/artists", admin, http.StatusOK},
		{"manager artists", "/admin/artists", manager, http.StatusOK},
		{"artist artists", "/admin/artists", artist, http.StatusForbidden},
		{"manager songs", "/admin/songs", manager, http.StatusOK},
		{"artist songs", "/admin/songs", artist, http.StatusForbidden},
		{"artist export", "/admin/export_artists", artist, http.StatusForbidden},
		{"artist home", "/admin/home", artist, http.StatusOK},
		{"manager home", "/admin/home", manager, http.StatusOK},
		{"admin home", "/admin/home", admin, http.StatusOK},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			rr := e.get(tc.path, tc.cookie)
			require.Equal(t, tc.code, rr.Code)
			if tc.code == http.StatusForbidden {
				assert.Contains(t, rr.Body.String(), "access denied")
				assert.NotContains(t, rr.Body.String(), "admin@example.com")
			}
		})
	}
}

func TestAdminListsUsers(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	admin := e.login(t, e.user(t, "admin@example.com", "pw", db.RoleSuperAdmin))
	e.user(t, "other@example.com", "pw", db.RoleArtist)

	rr := e.get("/admin/users", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "admin@example.com")
	assert.Contains(t, rr.Body.String(), "other@example.com")
}

func TestInvalidPage(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	admin := e.login(t, e.user(t, "admin@example.com", "pw", db.RoleSuperAdmin))

	rr := e.get("/admin/users?page=0", admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	rr = e.get("/admin/artists?limit=abc", admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNoSessionRedirects(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rr := e.get("/admin/users", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/login", rr.Header().Get("Location"))

	rr = e.get("/admin/users", sessionCookieSet("notarealtoken"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/login", rr.Header().Get("Location"))
}

func TestDeletedUserSessionRedirects(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	user := e.user(t, "gone@example.com", "pw", db.RoleSuperAdmin)
	cookie := e.login(t, user)
	require.NoError(t, e.db.DeleteUser(user.ID))

	rr := e.get("/admin/home", cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	_, ok := e.sessions.Resolve(cookie.Value)
	require.False(t, ok)
}

func TestLoginDo(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.user(t, "admin@example.com", "secret", db.RoleSuperAdmin)

	rr := e.post("/admin/login_do", url.Values{"email": {"admin@example.com"}, "password": {"secret"}}, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/home", rr.Header().Get("Location"))

	cookie := responseCookie(rr, sessionCookie)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.GreaterOrEqual(t, len(cookie.Value), sessionstore.TokenLength)
	require.Equal(t, 1, e.sessions.Len())

	rr = e.get("/admin/home", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginDoBadCredentials(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.user(t, "admin@example.com", "secret", db.RoleSuperAdmin)

	rr := e.post("/admin/login_do", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}}, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "invalid email / password")
	require.Nil(t, responseCookie(rr, sessionCookie))

	rr = e.post("/admin/login_do", url.Values{"email": {"nobody@example.com"}, "password": {"secret"}}, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.post("/admin/login_do", url.Values{"email": {"admin@example.com"}}, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, 0, e.sessions.Len())
}

func TestLogout(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	cookie := e.login(t, e.user(t, "admin@example.com", "pw", db.RoleSuperAdmin))

	rr := e.post("/admin/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/login", rr.Header().Get("Location"))

	cleared := responseCookie(rr, sessionCookie)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)
	require.Contains(t, rr.Header().Values("Set-Cookie"), "session_id=; Path=/; Max-Age=0; HttpOnly; SameSite=Lax")

	_, ok := e.sessions.Resolve(cookie.Value)
	require.False(t, ok)
	rr = e.get("/admin/home", cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestUpdateAndDeleteValidation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	admin := e.login(t, e.user(t, "admin@example.com", "pw", db.RoleSuperAdmin))

	tcases := []struct {
		name string
		path string
		form url.Values
		code int
	}{
		{"update user missing", "/admin/update_user_do", url.Values{"id": {"999"}, "first_name": {"x"}}, http.StatusNotFound},
		{"update user no id", "/admin/update_user_do", url.Values{"first_name": {"x"}}, http.StatusBadRequest},
		{"update user bad id", "/admin/update_user_do", url.Values{"id": {"abc"}}, http.StatusBadRequest},
		{"delete user missing", "/admin/delete_user_do", url.Values{"id": {"999"}}, http.StatusNotFound},
		{"delete user no id", "/admin/delete_user_do", url.Values{}, http.StatusBadRequest},
		{"update artist missing", "/admin/update_artist_do", url.Values{"id": {"999"}, "name": {"x"}}, http.StatusNotFound},
		{"delete artist missing", "/admin/delete_artist_do", url.Values{"id": {"999"}}, http.StatusNotFound},
		{"update song missing", "/admin/update_song_do", url.Values{"id": {"999"}, "title": {"x"}}, http.StatusNotFound},
		{"delete song missing", "/admin/delete_song_do", url.Values{"id": {"999"}}, http.StatusNotFound},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			rr := e.post(tc.path, tc.form, admin)
			require.Equal(t, tc.code, rr.Code)
		})
	}
}

func TestUpdateUserDo(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	admin := e.login(t, e.user(t, "admin@example.com", "pw", db.RoleSuperAdmin))
	target := e.user(t, "target@example.com", "old", db.RoleArtist)

	form := url.Values{
		"id":       {fmt.Sprint(target.ID)},
		"phone":    {"555 1234"},
		"password": {"new"},
		"role":     {"artist_manager"},
	}
	rr := e.post("/admin/update_user_do", form, admin)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	got, err := e.db.GetUser(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "555 1234", got.Phone)
	assert.Equal(t, db.RoleArtistManager, got.Role)
	assert.Equal(t, target.FirstName, got.FirstName)
	assert.True(t, passhash.Verify(got.Password, "new"))

	rr = e.post("/admin/update_user_do", url.Values{"id": {fmt.Sprint(target.ID)}, "role": {"root"}}, admin)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	got, err = e.db.GetUser(target.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RoleArtistManager, got.Role)
}

func TestCreateUserDoDuplicateEmail(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	admin := e.login(t, e.user(t, "admin@example.com", "pw", db.RoleSuperAdmin))

	form := url.Values{
		"first_name": {"a"},
		"last_name":  {"b"},
		"email":      {"admin@example.com"},
		"password":   {"pw"},
		"gender":     {"m"},
		"role":       {"artist"},
	}
	rr := e.post("/admin/create_user_do", form, admin)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/create_user", rr.Header().Get("Location"))

	count, err := e.db.CountUsers()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	form.Set("email", "new@example.com")
	rr = e.post("/admin/create_user_do", form, admin)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/users", rr.Header().Get("Location"))
	created, err := e.db.GetUserByEmail("new@example.com")
	require.NoError(t, err)
	require.True(t, passhash.Verify(created.Password, "pw"))
}

func TestCreateArtistDoMissingField(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	manager := e.login(t, e.user(t, "manager@example.com", "pw", db.RoleArtistManager))

	rr := e.post("/admin/create_artist_do", url.Values{"name": {"no gender"}, "first_release_year": {"2001"}}, manager)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/create_artist", rr.Header().Get("Location"))

	rr = e.post("/admin/create_artist_do", url.Values{"name": {"x"}, "gender": {"m"}, "first_release_year": {"soon"}}, manager)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	count, err := e.db.CountArtists()
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestHomeArtistSeesOwnSongs(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	user := e.user(t, "artist@example.com", "pw", db.RoleArtist)

	mine := &db.Artist{UserID: &user.ID, Name: "mine", Gender: "f", FirstReleaseYear: 2000}
	theirs := &db.Artist{Name: "theirs", Gender: "m", FirstReleaseYear: 2001}
	require.NoError(t, e.db.CreateArtist(mine))
	require.NoError(t, e.db.CreateArtist(theirs))
	require.NoError(t, e.db.CreateSong(&db.Song{ArtistID: mine.ID, Title: "my song"}))
	require.NoError(t, e.db.CreateSong(&db.Song{ArtistID: theirs.ID, Title: "their song"}))

	rr := e.get("/admin/home", e.login(t, user))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "my song")
	assert.NotContains(t, rr.Body.String(), "their song")
}

func TestArtistSongs(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	manager := e.login(t, e.user(t, "manager@example.com", "pw", db.RoleArtistManager))

	artist := &db.Artist{Name: "band", Gender: "m", FirstReleaseYear: 1999}
	require.NoError(t, e.db.CreateArtist(artist))
	require.NoError(t, e.db.CreateSong(&db.Song{ArtistID: artist.ID, Title: "hit"}))

	rr := e.get(fmt.Sprintf("/admin/artists/%d/songs", artist.ID), manager)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "hit")

	rr = e.get("/admin/artists/999/songs", manager)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExportArtists(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	manager := e.login(t, e.user(t, "manager@example.com", "pw", db.RoleArtistManager))
	require.NoError(t, e.db.CreateArtist(&db.Artist{Name: "a, b", Gender: "f", FirstReleaseYear: 2010, NoOfAlbumsReleased: 2}))

	rr := e.get("/admin/export_artists", manager)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="artists.csv"`, rr.Header().Get("Content-Disposition"))
	require.Equal(t,
		"id,user_id,name,dob,gender,address,first_release_year,no_of_albums_released\n"+
			"1,,\"a, b\",,f,,2010,2\n",
		rr.Body.String())
}

func TestImportArtistsDo(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	manager := e.login(t, e.user(t, "manager@example.com", "pw", db.RoleArtistManager))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "artists.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, ""+
		"name,gender,first_release_year,no_of_albums_released\n"+
		"one,f,2001,1\n"+
		"two,m,not a year,2\n"+
		"three,f,2003,3\n")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/import_artists_do", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := e.do(req, manager)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/admin/artists", rr.Header().Get("Location"))

	artists, err := e.db.AllArtists()
	require.NoError(t, err)
	require.Len(t, artists, 2)
	assert.Equal(t, "one", artists[0].Name)
	assert.Equal(t, "three", artists[1].Name)
}

func TestNotFoundRoute(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rr := e.get("/admin/nothing_here", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not found")
}
