package ctrladmin

import (
	"net/http"

	"github.com/gorilla/mux"

	"go.senan.xyz/ams/authz"
	"go.senan.xyz/ams/handlerutil"
)

const (
	get  = http.MethodGet
	post = http.MethodPost
)

func AddRoutes(c *Controller, r *mux.Router) {
	// public routes (creates flash session)
	r.Use(c.WithSession)
	r.Handle("/login", c.H(c.ServeLogin)).Methods(get)
	r.Handle("/login_do", c.H(c.ServeLoginDo)).Methods(post) // sets session cookie

	// user routes (if session is valid)
	routUser := r.NewRoute().Subrouter()
	routUser.Use(c.WithUserSession)
	routUser.Handle("/logout", c.H(c.ServeLogout)).Methods(get, post) // clears session cookie

	// every other route is gated on the user's role
	allow := func(action authz.Action, h http.Handler) http.Handler {
		return handlerutil.Chain(c.WithAction(action))(h)
	}
	routUser.Handle("/home", allow(authz.ViewDashboard, c.H(c.ServeHome))).Methods(get)

	routUser.Handle("/users", allow(authz.ListUsers, c.H(c.ServeUsers))).Methods(get)
	routUser.Handle("/users/{id:[0-9]+}", allow(authz.ViewUser, c.H(c.ServeUser))).Methods(get)
	routUser.Handle("/create_user", allow(authz.CreateUser, c.H(c.ServeCreateUser))).Methods(get)
	routUser.Handle("/create_user_do", allow(authz.CreateUser, c.H(c.ServeCreateUserDo))).Methods(post)
	routUser.Handle("/update_user", allow(authz.UpdateUser, c.H(c.ServeUpdateUser))).Methods(get)
	routUser.Handle("/update_user_do", allow(authz.UpdateUser, c.H(c.ServeUpdateUserDo))).Methods(post)
	routUser.Handle("/delete_user_do", allow(authz.DeleteUser, c.H(c.ServeDeleteUserDo))).Methods(post)

	routUser.Handle("/artists", allow(authz.ListArtists, c.H(c.ServeArtists))).Methods(get)
	routUser.Handle("/artists/{id:[0-9]+}/songs", allow(authz.ViewArtistSongs, c.H(c.ServeArtistSongs))).Methods(get)
	routUser.Handle("/create_artist", allow(authz.CreateArtist, c.H(c.ServeCreateArtist))).Methods(get)
	routUser.Handle("/create_artist_do", allow(authz.CreateArtist, c.H(c.ServeCreateArtistDo))).Methods(post)
	routUser.Handle("/update_artist", allow(authz.UpdateArtist, c.H(c.ServeUpdateArtist))).Methods(get)
	routUser.Handle("/update_artist_do", allow(authz.UpdateArtist, c.H(c.ServeUpdateArtistDo))).Methods(post)
	routUser.Handle("/delete_artist_do", allow(authz.DeleteArtist, c.H(c.ServeDeleteArtistDo))).Methods(post)
	routUser.Handle("/export_artists", allow(authz.ExportArtists, c.HR(c.ServeExportArtists))).Methods(get) // "raw" handler, writes csv
	routUser.Handle("/import_artists", allow(authz.ImportArtists, c.H(c.ServeImportArtists))).Methods(get)
	routUser.Handle("/import_artists_do", allow(authz.ImportArtists, c.H(c.ServeImportArtistsDo))).Methods(post)

	routUser.Handle("/songs", allow(authz.ListSongs, c.H(c.ServeSongs))).Methods(get)
	routUser.Handle("/create_song", allow(authz.CreateSong, c.H(c.ServeCreateSong))).Methods(get)
	routUser.Handle("/create_song_do", allow(authz.CreateSong, c.H(c.ServeCreateSongDo))).Methods(post)
	routUser.Handle("/update_song", allow(authz.UpdateSong, c.H(c.ServeUpdateSong))).Methods(get)
	routUser.Handle("/update_song_do", allow(authz.UpdateSong, c.H(c.ServeUpdateSongDo))).Methods(post)
	routUser.Handle("/delete_song_do", allow(authz.DeleteSong, c.H(c.ServeDeleteSongDo))).Methods(post)

	// middlewares should be run for not found handler
	// https://github.com/gorilla/mux/issues/416
	notFoundHandler := c.H(c.ServeNotFound)
	notFoundRoute := r.NewRoute().Handler(notFoundHandler)
	r.NotFoundHandler = notFoundRoute.GetHandler()
}
