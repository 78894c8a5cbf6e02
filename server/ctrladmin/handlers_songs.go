package ctrladmin

import (
	"fmt"
	"net/http"

	"go.senan.xyz/ams/db"
)

func (c *Controller) ServeSongs(r *http.Request) *Response {
	page, err := db.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	songs, err := c.DB.ListSongs(page)
	if err != nil {
		return errorResponse(err, "/admin/home")
	}
	total, err := c.DB.CountSongs()
	if err != nil {
		return errorResponse(err, "/admin/home")
	}
	return &Response{
		template: "songs.tmpl",
		data: &templateData{
			Songs: songs,
			Pager: newPager("/admin/songs", page, total),
		},
	}
}

func (c *Controller) songForm(song *db.Song) *Response {
	artists, err := c.DB.AllArtists()
	if err != nil {
		return errorResponse(err, "/admin/songs")
	}
	return &Response{
		template: "song_form.tmpl",
		data:     &templateData{SelectedSong: song, Artists: artists},
	}
}

func (c *Controller) ServeCreateSong(r *http.Request) *Response {
	return c.songForm(nil)
}

func (c *Controller) ServeCreateSongDo(r *http.Request) *Response {
	song, err := songFromForm(r)
	if err != nil {
		return &Response{redirect: "/admin/create_song", flashW: []string{err.Error()}}
	}
	if err := c.DB.CreateSong(song); err != nil {
		return errorResponse(err, "/admin/create_song")
	}
	return &Response{
		redirect: "/admin/songs",
		flashN:   []string{fmt.Sprintf("created song %q", song.Title)},
	}
}

func (c *Controller) ServeUpdateSong(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	song, err := c.DB.GetSong(id)
	if err != nil {
		return errorResponse(err, "/admin/songs")
	}
	return c.songForm(song)
}

func (c *Controller) ServeUpdateSongDo(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	back := fmt.Sprintf("/admin/update_song?id=%d", id)
	patch, err := songPatchFromForm(r)
	if err != nil {
		return &Response{redirect: back, flashW: []string{err.Error()}}
	}
	if err := c.DB.UpdateSong(id, patch); err != nil {
		return errorResponse(err, back)
	}
	return &Response{
		redirect: "/admin/songs",
		flashN:   []string{"song updated"},
	}
}

func (c *Controller) ServeDeleteSongDo(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	if err := c.DB.DeleteSong(id); err != nil {
		return errorResponse(err, "/admin/songs")
	}
	return &Response{
		redirect: "/admin/songs",
		flashN:   []string{"song deleted"},
	}
}
