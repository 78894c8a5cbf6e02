package ctrladmin

import (
	"fmt"
	"net/http"

	"go.senan.xyz/ams/artistcsv"
	"go.senan.xyz/ams/db"
)

func (c *Controller) ServeArtists(r *http.Request) *Response {
	page, err := db.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	artists, err := c.DB.ListArtists(page)
	if err != nil {
		return errorResponse(err, "/admin/home")
	}
	total, err := c.DB.CountArtists()
	if err != nil {
		return errorResponse(err, "/admin/home")
	}
	return &Response{
		template: "artists.tmpl",
		data: &templateData{
			Artists: artists,
			Pager:   newPager("/admin/artists", page, total),
		},
	}
}

func (c *Controller) ServeArtistSongs(r *http.Request) *Response {
	id, err := pathID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	artist, err := c.DB.GetArtist(id)
	if err != nil {
		return errorResponse(err, "/admin/artists")
	}
	songs, err := c.DB.ListSongsForArtist(id)
	if err != nil {
		return errorResponse(err, "/admin/artists")
	}
	return &Response{
		template: "artist_songs.tmpl",
		data:     &templateData{SelectedArtist: artist, Songs: songs},
	}
}

func (c *Controller) ServeCreateArtist(r *http.Request) *Response {
	return &Response{template: "artist_form.tmpl"}
}

func (c *Controller) ServeCreateArtistDo(r *http.Request) *Response {
	artist, err := artistFromForm(r)
	if err != nil {
		return &Response{redirect: "/admin/create_artist", flashW: []string{err.Error()}}
	}
	if err := c.DB.CreateArtist(artist); err != nil {
		return errorResponse(err, "/admin/create_artist")
	}
	return &Response{
		redirect: "/admin/artists",
		flashN:   []string{fmt.Sprintf("created artist %q", artist.Name)},
	}
}

func (c *Controller) ServeUpdateArtist(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	artist, err := c.DB.GetArtist(id)
	if err != nil {
		return errorResponse(err, "/admin/artists")
	}
	return &Response{
		template: "artist_form.tmpl",
		data:     &templateData{SelectedArtist: artist},
	}
}

func (c *Controller) ServeUpdateArtistDo(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	back := fmt.Sprintf("/admin/update_artist?id=%d", id)
	patch, err := artistPatchFromForm(r)
	if err != nil {
		return &Response{redirect: back, flashW: []string{err.Error()}}
	}
	if err := c.DB.UpdateArtist(id, patch); err != nil {
		return errorResponse(err, back)
	}
	return &Response{
		redirect: "/admin/artists",
		flashN:   []string{"artist updated"},
	}
}

func (c *Controller) ServeDeleteArtistDo(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	if err := c.DB.DeleteArtist(id); err != nil {
		return errorResponse(err, "/admin/artists")
	}
	return &Response{
		redirect: "/admin/artists",
		flashN:   []string{"artist deleted"},
	}
}

func (c *Controller) ServeImportArtists(r *http.Request) *Response {
	return &Response{template: "import_artists.tmpl"}
}

func (c *Controller) ServeImportArtistsDo(r *http.Request) *Response {
	if err := r.ParseMultipartForm((1 << 20) * 8); err != nil {
		return &Response{code: http.StatusBadRequest, err: "couldn't parse multipart"}
	}
	var imported, skipped int
	var errors []string
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				errors = append(errors, fmt.Sprintf("couldn't open file %q", header.Filename))
				continue
			}
			res, err := artistcsv.Import(file, c.DB)
			file.Close()
			if err != nil {
				// trim length of error to not overflow cookie flash
				errors = append(errors, fmt.Sprintf("%.100s", fmt.Sprintf("%s: %v", header.Filename, err)))
				continue
			}
			imported += res.Imported
			skipped += res.Skipped
		}
	}
	return &Response{
		redirect: "/admin/artists",
		flashN:   []string{fmt.Sprintf("import completed: %d imported, %d skipped", imported, skipped)},
		flashW:   errors,
	}
}
