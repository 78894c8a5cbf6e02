package db

import (
	"fmt"
)

func (db *DB) CreateArtist(artist *Artist) error {
	return db.Transaction(func(tx *DB) error {
		if err := tx.Create(artist).Error; err != nil {
			return wrapWriteErr("create artist", err)
		}
		return nil
	})
}

func (db *DB) GetArtist(id int) (*Artist, error) {
	var artist Artist
	if err := db.Where("id=?", id).First(&artist).Error; err != nil {
		return nil, wrapReadErr(fmt.Sprintf("get artist %d", id), err)
	}
	return &artist, nil
}

func (db *DB) ListArtists(p Page) ([]*Artist, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var artists []*Artist
	err := db.
		Order("id ASC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&artists).
		Error
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	return artists, nil
}

// AllArtists returns every artist ordered by ascending id
func (db *DB) AllArtists() ([]*Artist, error) {
	var artists []*Artist
	if err := db.Order("id ASC").Find(&artists).Error; err != nil {
		return nil, fmt.Errorf("all artists: %w", err)
	}
	return artists, nil
}

func (db *DB) CountArtists() (int, error) {
	var count int
	if err := db.Model(&Artist{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count artists: %w", err)
	}
	return count, nil
}

func (db *DB) UpdateArtist(id int, patch ArtistPatch) error {
	return db.applyPatch(Artist{}.TableName(), id, patch)
}

func (db *DB) DeleteArtist(id int) error {
	return db.deleteByID(&Artist{}, id)
}
