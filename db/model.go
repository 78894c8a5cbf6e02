package db

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleArtistManager Role = "artist_manager"
	RoleArtist        Role = "artist"
)

// Roles lists every role in order of decreasing privilege
var Roles = []Role{RoleSuperAdmin, RoleArtistManager, RoleArtist}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidRole)
}

func (r Role) String() string { return string(r) }

// User represents the user table
type User struct {
	ID        int       `gorm:"primary_key"`
	FirstName string    `gorm:"not null"`
	LastName  string    `gorm:"not null"`
	Email     string    `gorm:"not null;unique_index"`
	Password  []byte    `gorm:"not null"`
	Gender    string    `gorm:"not null"`
	Address   string    `gorm:"column:address"`
	Phone     string    `gorm:"column:phone"`
	DOB       string    `gorm:"column:dob"`
	Role      Role      `gorm:"type:varchar(32) CHECK(role IN ('super_admin','artist_manager','artist'));not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Is(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Artist represents the artist table. an artist may be linked to the user
// account that manages it
type Artist struct {
	ID                 int       `gorm:"primary_key"`
	UserID             *int      `gorm:"column:user_id;index"`
	Name               string    `gorm:"not null"`
	DOB                string    `gorm:"column:dob"`
	Gender             string    `gorm:"not null"`
	Address            string    `gorm:"column:address"`
	FirstReleaseYear   int       `gorm:"column:first_release_year;not null"`
	NoOfAlbumsReleased int       `gorm:"column:no_of_albums_released"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (Artist) TableName() string { return "artist" }

// Song represents the song table. the artist reference is declared in the schema
// but only advisory, nothing checks it before an insert
type Song struct {
	ID        int       `gorm:"primary_key"`
	ArtistID  int       `gorm:"column:artist_id;type:integer REFERENCES artist(id);not null;index"`
	Title     string    `gorm:"not null"`
	AlbumName string    `gorm:"column:album_name"`
	Genre     string    `gorm:"column:genre"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Song) TableName() string { return "song" }

// SongView is a song joined with the name of its artist
type SongView struct {
	Song
	ArtistName string
}

type SettingKey string

const (
	FlashSessionKey SettingKey = "flash_session_key"
)

type Setting struct {
	Key   SettingKey `gorm:"not null;primary_key;auto_increment:false"`
	Value string     `sql:"not null"`
}
