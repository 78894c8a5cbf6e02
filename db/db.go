package db

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/jinzhu/gorm"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidRole = errors.New("invalid role")
)

// ConstraintError is returned when a write is rejected by a storage constraint,
// for example a duplicate email
type ConstraintError struct {
	Op  string
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

func DefaultOptions() url.Values {
	return url.Values{
		// with this, the db sleeps for a little while when locked. can prevent
		// a SQLITE_BUSY. see https://www.sqlite.org/c3ref/busy_timeout.html
		"_busy_timeout": {"30000"},
		"_journal_mode": {"WAL"},
	}
}

func mockOptions() url.Values {
	return url.Values{
		"_busy_timeout": {"30000"},
	}
}

type DB struct {
	*gorm.DB
}

func New(path string, options url.Values) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?%s", path, options.Encode())
	db, err := gorm.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("with gorm: %w", err)
	}
	db.SetLogger(gormLogger{log.WithPrefix("gorm")})
	// a single connection is the pool. every statement acquires it and hands
	// it back, and an in-memory database lives exactly as long as it does
	db.DB().SetMaxOpenConns(1)
	return &DB{DB: db}, nil
}

func NewMock() (*DB, error) {
	return New(":memory:", mockOptions())
}

// Transaction runs cb inside a transaction, which is committed if cb returns nil
// and rolled back otherwise
func (db *DB) Transaction(cb func(*DB) error) error {
	tx := db.Begin()
	if err := tx.Error; err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := cb(&DB{DB: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (db *DB) GetSetting(key SettingKey) (string, error) {
	var setting Setting
	err := db.
		Where("key=?", key).
		First(&setting).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return setting.Value, nil
}

func (db *DB) SetSetting(key SettingKey, value string) error {
	return db.
		Where(Setting{Key: key}).
		Assign(Setting{Value: value}).
		FirstOrCreate(&Setting{}).
		Error
}

// wrapWriteErr turns sqlite constraint failures into a *ConstraintError so that
// callers can tell them apart from other storage failures
func wrapWriteErr(op string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return &ConstraintError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func wrapReadErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type gormLogger struct {
	*log.Logger
}

func (l gormLogger) Print(v ...interface{}) {
	l.Debug(fmt.Sprint(gorm.LogFormatter(v...)...))
}
