package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpdateStatement(t *testing.T) {
	t.Parallel()

	first, year := "ann", 1999
	role := RoleArtist

	tcases := []struct {
		name      string
		table     string
		patch     interface{}
		expSQL    string
		expValues []interface{}
	}{
		{
			name:      "one user field",
			table:     "user",
			patch:     UserPatch{FirstName: &first},
			expSQL:    `UPDATE "user" SET "first_name"=?, "updated_at"=? WHERE id=?`,
			expValues: []interface{}{"ann"},
		},
		{
			name:      "fields keep declaration order",
			table:     "user",
			patch:     UserPatch{Role: &role, Password: []byte("h"), FirstName: &first},
			expSQL:    `UPDATE "user" SET "first_name"=?, "password"=?, "role"=?, "updated_at"=? WHERE id=?`,
			expValues: []interface{}{"ann", []byte("h"), RoleArtist},
		},
		{
			name:      "artist int field",
			table:     "artist",
			patch:     ArtistPatch{FirstReleaseYear: &year},
			expSQL:    `UPDATE "artist" SET "first_release_year"=?, "updated_at"=? WHERE id=?`,
			expValues: []interface{}{1999},
		},
	}

	for _, tcase := range tcases {
		tcase := tcase
		t.Run(tcase.name, func(t *testing.T) {
			t.Parallel()
			query, args, ok := updateStatement(tcase.table, 7, tcase.patch)
			require.True(t, ok)
			require.Equal(t, tcase.expSQL, query)
			require.Len(t, args, len(tcase.expValues)+2)
			require.Equal(t, tcase.expValues, args[:len(tcase.expValues)])
			require.IsType(t, time.Time{}, args[len(args)-2])
			require.Equal(t, 7, args[len(args)-1])
		})
	}
}

func TestUpdateStatementEmpty(t *testing.T) {
	t.Parallel()

	_, _, ok := updateStatement("song", 1, SongPatch{})
	require.False(t, ok)
}
