// Package artistcsv moves artist rows in and out of csv files
package artistcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/mapstructure"

	"go.senan.xyz/ams/db"
	"go.senan.xyz/ams/multierr"
)

// Header is the column set written by Export. Import reads any column order
// and ignores id, since ids are always assigned by the database
var Header = []string{
	"id",
	"user_id",
	"name",
	"dob",
	"gender",
	"address",
	"first_release_year",
	"no_of_albums_released",
}

var requiredColumns = []string{"name", "gender", "first_release_year"}

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyFile     = errors.New("no header row")
	ErrInvalidRow    = errors.New("invalid row")
)

const utf8BOM = "\ufeff"

// Row is one artist as read from a file
type Row struct {
	UserID             string `mapstructure:"user_id"`
	Name               string `mapstructure:"name"`
	DOB                string `mapstructure:"dob"`
	Gender             string `mapstructure:"gender"`
	Address            string `mapstructure:"address"`
	FirstReleaseYear   string `mapstructure:"first_release_year"`
	NoOfAlbumsReleased int    `mapstructure:"no_of_albums_released"`
}

func (r Row) Artist() (*db.Artist, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("name is empty: %w", ErrInvalidRow)
	}
	if r.Gender == "" {
		return nil, fmt.Errorf("gender is empty: %w", ErrInvalidRow)
	}
	// a blank year is missing, but 0 is a year like any other
	if r.FirstReleaseYear == "" {
		return nil, fmt.Errorf("first release year is empty: %w", ErrInvalidRow)
	}
	year, err := strconv.Atoi(r.FirstReleaseYear)
	if err != nil {
		return nil, fmt.Errorf("first release year %q: %w", r.FirstReleaseYear, ErrInvalidRow)
	}
	artist := &db.Artist{
		Name:               r.Name,
		DOB:                r.DOB,
		Gender:             r.Gender,
		Address:            r.Address,
		FirstReleaseYear:   year,
		NoOfAlbumsReleased: r.NoOfAlbumsReleased,
	}
	if r.UserID != "" {
		userID, err := strconv.Atoi(r.UserID)
		if err != nil {
			return nil, fmt.Errorf("user id %q: %w", r.UserID, ErrInvalidRow)
		}
		artist.UserID = &userID
	}
	return artist, nil
}

// Export writes the header and then one row per artist, in the order given
func Export(w io.Writer, artists []*db.Artist) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, artist := range artists {
		var userID string
		if artist.UserID != nil {
			userID = strconv.Itoa(*artist.UserID)
		}
		record := []string{
			strconv.Itoa(artist.ID),
			userID,
			artist.Name,
			artist.DOB,
			artist.Gender,
			artist.Address,
			strconv.Itoa(artist.FirstReleaseYear),
			strconv.Itoa(artist.NoOfAlbumsReleased),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write artist %d: %w", artist.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode calls fn for every record after the header. a record that can't be
// parsed or decoded is passed to fn with a non nil error instead of stopping the
// whole file. Decode itself only fails if the header is unusable or reading does
func Decode(r io.Reader, fn func(line int, row Row, err error) error) error {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ErrEmptyFile
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		columns[i] = strings.ToLower(strings.TrimSpace(name))
	}
	for _, req := range requiredColumns {
		if !contains(columns, req) {
			return fmt.Errorf("%q: %w", req, ErrMissingColumn)
		}
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			if err := fn(perr.Line, Row{}, err); err != nil {
				return err
			}
			line = perr.Line
			continue
		}
		if err != nil {
			return fmt.Errorf("read line %d: %w", line, err)
		}
		line, _ = cr.FieldPos(0)
		row, err := decodeRecord(columns, record)
		if err := fn(line, row, err); err != nil {
			return err
		}
	}
}

func decodeRecord(columns, record []string) (Row, error) {
	fields := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		if column == "id" || column == "" {
			continue
		}
		fields[column] = strings.TrimSpace(record[i])
	}
	var row Row
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &row,
	})
	if err != nil {
		return Row{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return Row{}, fmt.Errorf("%v: %w", err, ErrInvalidRow)
	}
	return row, nil
}

type Inserter interface {
	CreateArtist(*db.Artist) error
}

type Result struct {
	Imported int
	Skipped  int
	// Errs holds one error per skipped row. it is logged, not shown to users
	Errs multierr.Err
}

// Import inserts one artist per good row. rows that fail to parse or insert are
// skipped and the rest of the file carries on, so a file can be partially imported
func Import(r io.Reader, ins Inserter) (Result, error) {
	var res Result
	err := Decode(r, func(line int, row Row, err error) error {
		if err == nil {
			var artist *db.Artist
			if artist, err = row.Artist(); err == nil {
				err = ins.CreateArtist(artist)
			}
		}
		if err != nil {
			res.Skipped++
			res.Errs.Add(fmt.Errorf("line %d: %w", line, err))
			log.Warn("skipping artist csv row", "line", line, "err", err)
			return nil
		}
		res.Imported++
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

func contains(columns []string, column string) bool {
	for _, c := range columns {
		if c == column {
			return true
		}
	}
	return false
}
