package db

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jinzhu/gorm"
	"gopkg.in/gormigrate.v1"
)

type MigrationContext struct {
	// the first super admin, created if no user has this email yet
	InitAdminEmail        string
	InitAdminPasswordHash []byte
}

func (db *DB) Migrate(ctx MigrationContext) error {
	options := &gormigrate.Options{
		TableName:      "migrations",
		IDColumnName:   "id",
		IDColumnSize:   255,
		UseTransaction: false,
	}

	// $ date '+%Y%m%d%H%M'
	migrations := []*gormigrate.Migration{
		construct(ctx, "202501061210", migrateInitSchema),
		construct(ctx, "202501061225", migrateCreateInitUser),
	}

	return gormigrate.
		New(db.DB, options, migrations).
		Migrate()
}

func construct(ctx MigrationContext, id string, f func(*gorm.DB, MigrationContext) error) *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: id,
		Migrate: func(db *gorm.DB) error {
			tx := db.Begin()
			defer tx.Commit()
			if err := f(tx, ctx); err != nil {
				return fmt.Errorf("%q: %w", id, err)
			}
			log.Info("migration finished", "id", id)
			return nil
		},
		Rollback: func(*gorm.DB) error {
			return nil
		},
	}
}

func migrateInitSchema(tx *gorm.DB, _ MigrationContext) error {
	return tx.AutoMigrate(
		User{},
		Artist{},
		Song{},
		Setting{},
	).
		Error
}

func migrateCreateInitUser(tx *gorm.DB, ctx MigrationContext) error {
	if ctx.InitAdminEmail == "" || len(ctx.InitAdminPasswordHash) == 0 {
		return nil
	}
	err := tx.
		Where("email=?", ctx.InitAdminEmail).
		First(&User{}).
		Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&User{
		FirstName: "super",
		LastName:  "admin",
		Email:     ctx.InitAdminEmail,
		Password:  ctx.InitAdminPasswordHash,
		Gender:    "other",
		Role:      RoleSuperAdmin,
	}).
		Error
}
