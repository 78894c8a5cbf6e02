package db

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/jinzhu/gorm"
)

// UserPatch holds the user columns to change. nil fields are left alone.
// Password must already be hashed
type UserPatch struct {
	FirstName *string `structs:"first_name"`
	LastName  *string `structs:"last_name"`
	Email     *string `structs:"email"`
	Password  []byte  `structs:"password"`
	Gender    *string `structs:"gender"`
	Address   *string `structs:"address"`
	Phone     *string `structs:"phone"`
	DOB       *string `structs:"dob"`
	Role      *Role   `structs:"role"`
}

type ArtistPatch struct {
	UserID             *int    `structs:"user_id"`
	Name               *string `structs:"name"`
	DOB                *string `structs:"dob"`
	Gender             *string `structs:"gender"`
	Address            *string `structs:"address"`
	FirstReleaseYear   *int    `structs:"first_release_year"`
	NoOfAlbumsReleased *int    `structs:"no_of_albums_released"`
}

type SongPatch struct {
	ArtistID  *int    `structs:"artist_id"`
	Title     *string `structs:"title"`
	AlbumName *string `structs:"album_name"`
	Genre     *string `structs:"genre"`
}

// assignment is one "column = value" pair of an update statement
type assignment struct {
	column string
	value  interface{}
}

// assignments lists the set fields of a patch in declaration order. column names
// only ever come from the patch's struct tags
func assignments(patch interface{}) []assignment {
	var ret []assignment
	for _, field := range structs.New(patch).Fields() {
		if field.IsZero() {
			continue
		}
		ret = append(ret, assignment{
			column: field.Tag("structs"),
			value:  reflect.Indirect(reflect.ValueOf(field.Value())).Interface(),
		})
	}
	return ret
}

// updateStatement builds a single UPDATE for the row with the given id. updated_at
// is always set. ok is false if the patch is empty
func updateStatement(table string, id int, patch interface{}) (query string, args []interface{}, ok bool) {
	as := assignments(patch)
	if len(as) == 0 {
		return "", nil, false
	}
	as = append(as, assignment{column: "updated_at", value: gorm.NowFunc()})

	sets := make([]string, 0, len(as))
	args = make([]interface{}, 0, len(as)+1)
	for _, a := range as {
		sets = append(sets, fmt.Sprintf("%q=?", a.column))
		args = append(args, a.value)
	}
	args = append(args, id)
	query = fmt.Sprintf("UPDATE %q SET %s WHERE id=?", table, strings.Join(sets, ", "))
	return query, args, true
}

// applyPatch runs the update primitive shared by every entity. an empty patch is
// a no-op, and an id that matches no row is ErrNotFound
func (db *DB) applyPatch(table string, id int, patch interface{}) error {
	query, args, ok := updateStatement(table, id, patch)
	if !ok {
		return nil
	}
	res := db.Exec(query, args...)
	if err := res.Error; err != nil {
		return wrapWriteErr(fmt.Sprintf("update %s %d", table, id), err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update %s %d: %w", table, id, ErrNotFound)
	}
	return nil
}
