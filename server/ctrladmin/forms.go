package ctrladmin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"go.senan.xyz/ams/db"
	"go.senan.xyz/ams/passhash"
)

// ## begin validation
// ## begin validation
// ## begin validation

var (
	errValiNoID          = errors.New("please provide an id")
	errValiNotNumber     = errors.New("please enter a whole number")
	errValiMissingField  = errors.New("please fill in every required field")
	errValiLoginAllField = errors.New("please provide both an email and password")
)

// formString is nil for a blank field, which leaves the column unchanged
func formString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}

func formInt(r *http.Request, key string) (*int, error) {
	v := formString(r, key)
	if v == nil {
		return nil, nil
	}
	i, err := strconv.Atoi(*v)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", key, *v, errValiNotNumber)
	}
	return &i, nil
}

// formID reads the row id from the query or the posted form
func formID(r *http.Request) (int, error) {
	id, err := formInt(r, "id")
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, errValiNoID
	}
	return *id, nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, errValiNoID
	}
	return id, nil
}

func requireFields(fields ...interface{}) error {
	for _, f := range fields {
		switch f := f.(type) {
		case *string:
			if f == nil {
				return errValiMissingField
			}
		case *int:
			if f == nil {
				return errValiMissingField
			}
		case []byte:
			if len(f) == 0 {
				return errValiMissingField
			}
		case *db.Role:
			if f == nil {
				return errValiMissingField
			}
		}
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func userPatchFromForm(r *http.Request) (db.UserPatch, error) {
	patch := db.UserPatch{
		FirstName: formString(r, "first_name"),
		LastName:  formString(r, "last_name"),
		Email:     formString(r, "email"),
		Gender:    formString(r, "gender"),
		Address:   formString(r, "address"),
		Phone:     formString(r, "phone"),
		DOB:       formString(r, "dob"),
	}
	if role := formString(r, "role"); role != nil {
		parsed, err := db.ParseRole(*role)
		if err != nil {
			return db.UserPatch{}, err
		}
		patch.Role = &parsed
	}
	if password := r.FormValue("password"); password != "" {
		hash, err := passhash.Hash(password)
		if err != nil {
			return db.UserPatch{}, fmt.Errorf("hashing password: %w", err)
		}
		patch.Password = hash
	}
	return patch, nil
}

func userFromForm(r *http.Request) (*db.User, error) {
	p, err := userPatchFromForm(r)
	if err != nil {
		return nil, err
	}
	if err := requireFields(p.FirstName, p.LastName, p.Email, p.Password, p.Gender, p.Role); err != nil {
		return nil, err
	}
	return &db.User{
		FirstName: *p.FirstName,
		LastName:  *p.LastName,
		Email:     *p.Email,
		Password:  p.Password,
		Gender:    *p.Gender,
		Address:   deref(p.Address),
		Phone:     deref(p.Phone),
		DOB:       deref(p.DOB),
		Role:      *p.Role,
	}, nil
}

func artistPatchFromForm(r *http.Request) (db.ArtistPatch, error) {
	patch := db.ArtistPatch{
		Name:    formString(r, "name"),
		DOB:     formString(r, "dob"),
		Gender:  formString(r, "gender"),
		Address: formString(r, "address"),
	}
	var err error
	if patch.UserID, err = formInt(r, "user_id"); err != nil {
		return db.ArtistPatch{}, err
	}
	if patch.FirstReleaseYear, err = formInt(r, "first_release_year"); err != nil {
		return db.ArtistPatch{}, err
	}
	if patch.NoOfAlbumsReleased, err = formInt(r, "no_of_albums_released"); err != nil {
		return db.ArtistPatch{}, err
	}
	return patch, nil
}

func artistFromForm(r *http.Request) (*db.Artist, error) {
	p, err := artistPatchFromForm(r)
	if err != nil {
		return nil, err
	}
	if err := requireFields(p.Name, p.Gender, p.FirstReleaseYear); err != nil {
		return nil, err
	}
	return &db.Artist{
		UserID:             p.UserID,
		Name:               *p.Name,
		DOB:                deref(p.DOB),
		Gender:             *p.Gender,
		Address:            deref(p.Address),
		FirstReleaseYear:   *p.FirstReleaseYear,
		NoOfAlbumsReleased: deref(p.NoOfAlbumsReleased),
	}, nil
}

func songPatchFromForm(r *http.Request) (db.SongPatch, error) {
	patch := db.SongPatch{
		Title:     formString(r, "title"),
		AlbumName: formString(r, "album_name"),
		Genre:     formString(r, "genre"),
	}
	var err error
	if patch.ArtistID, err = formInt(r, "artist_id"); err != nil {
		return db.SongPatch{}, err
	}
	return patch, nil
}

func songFromForm(r *http.Request) (*db.Song, error) {
	p, err := songPatchFromForm(r)
	if err != nil {
		return nil, err
	}
	if err := requireFields(p.ArtistID, p.Title); err != nil {
		return nil, err
	}
	return &db.Song{
		ArtistID:  *p.ArtistID,
		Title:     *p.Title,
		AlbumName: deref(p.AlbumName),
		Genre:     deref(p.Genre),
	}, nil
}
