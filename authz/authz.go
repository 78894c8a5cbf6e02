// Package authz decides which roles may perform which admin actions
package authz

import (
	"errors"
	"fmt"

	"go.senan.xyz/ams/db"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("access denied")
)

type Action string

const (
	ListUsers  Action = "list_users"
	ViewUser   Action = "view_user"
	CreateUser Action = "create_user"
	UpdateUser Action = "update_user"
	DeleteUser Action = "delete_user"

	ListArtists     Action = "list_artists"
	CreateArtist    Action = "create_artist"
	UpdateArtist    Action = "update_artist"
	DeleteArtist    Action = "delete_artist"
	ViewArtistSongs Action = "view_artist_songs"
	ExportArtists   Action = "export_artists"
	ImportArtists   Action = "import_artists"

	ListSongs  Action = "list_songs"
	CreateSong Action = "create_song"
	UpdateSong Action = "update_song"
	DeleteSong Action = "delete_song"

	ViewDashboard Action = "view_dashboard"
)

var (
	admins   = []db.Role{db.RoleSuperAdmin}
	managers = []db.Role{db.RoleSuperAdmin, db.RoleArtistManager}
	anyone   = db.Roles
)

// Policy maps each action to the roles allowed to perform it
var Policy = map[Action][]db.Role{
	ListUsers:  admins,
	ViewUser:   admins,
	CreateUser: admins,
	UpdateUser: admins,
	DeleteUser: admins,

	ListArtists:     managers,
	CreateArtist:    managers,
	UpdateArtist:    managers,
	DeleteArtist:    managers,
	ViewArtistSongs: managers,
	ExportArtists:   managers,
	ImportArtists:   managers,

	ListSongs:  managers,
	CreateSong: managers,
	UpdateSong: managers,
	DeleteSong: managers,

	ViewDashboard: anyone,
}

type UserLookup interface {
	GetUser(id int) (*db.User, error)
}

type Gate struct {
	users UserLookup
}

func NewGate(users UserLookup) *Gate {
	return &Gate{users: users}
}

// RoleOf returns the stored role of the user. a user that doesn't exist gives
// db.ErrNotFound
func (g *Gate) RoleOf(userID int) (db.Role, error) {
	user, err := g.users.GetUser(userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// IsAllowed reports whether the user exists and has one of the allowed roles
func (g *Gate) IsAllowed(userID int, allowed ...db.Role) bool {
	role, err := g.RoleOf(userID)
	if err != nil {
		return false
	}
	return hasRole(allowed, role)
}

// Check returns nil if the user may perform the action, ErrNotAuthenticated if
// there is no such user, and ErrNotAuthorized if the user's role isn't allowed.
// actions missing from Policy are denied to everyone
func (g *Gate) Check(userID int, action Action) error {
	role, err := g.RoleOf(userID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ErrNotAuthenticated
	case err != nil:
		return fmt.Errorf("role of user %d: %w", userID, err)
	}
	if !hasRole(Policy[action], role) {
		return fmt.Errorf("%s may not %s: %w", role, action, ErrNotAuthorized)
	}
	return nil
}

// Can is Check's pure counterpart for a role already at hand, used for showing or
// hiding links
func Can(role db.Role, action Action) bool {
	return hasRole(Policy[action], role)
}

func hasRole(roles []db.Role, role db.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
