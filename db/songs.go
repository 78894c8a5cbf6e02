package db

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

func (db *DB) CreateSong(song *Song) error {
	return db.Transaction(func(tx *DB) error {
		if err := tx.Create(song).Error; err != nil {
			return wrapWriteErr("create song", err)
		}
		return nil
	})
}

func (db *DB) GetSong(id int) (*Song, error) {
	var song Song
	if err := db.Where("id=?", id).First(&song).Error; err != nil {
		return nil, wrapReadErr(fmt.Sprintf("get song %d", id), err)
	}
	return &song, nil
}

func (db *DB) ListSongs(p Page) ([]*SongView, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var songs []*SongView
	err := db.
		songViews().
		Order("song.id ASC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Scan(&songs).
		Error
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

func (db *DB) CountSongs() (int, error) {
	var count int
	if err := db.Model(&Song{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return count, nil
}

func (db *DB) ListSongsForArtist(artistID int) ([]*SongView, error) {
	var songs []*SongView
	err := db.
		songViews().
		Where("song.artist_id=?", artistID).
		Order("song.id ASC").
		Scan(&songs).
		Error
	if err != nil {
		return nil, fmt.Errorf("list songs for artist %d: %w", artistID, err)
	}
	return songs, nil
}

// ListSongsForUser returns the songs of every artist linked to the user
func (db *DB) ListSongsForUser(userID int) ([]*SongView, error) {
	var songs []*SongView
	err := db.
		songViews().
		Where("artist.user_id=?", userID).
		Order("song.id ASC").
		Scan(&songs).
		Error
	if err != nil {
		return nil, fmt.Errorf("list songs for user %d: %w", userID, err)
	}
	return songs, nil
}

func (db *DB) UpdateSong(id int, patch SongPatch) error {
	return db.applyPatch(Song{}.TableName(), id, patch)
}

func (db *DB) DeleteSong(id int) error {
	return db.deleteByID(&Song{}, id)
}

func (db *DB) songViews() *gorm.DB {
	return db.
		Table("song").
		Select("song.*, artist.name AS artist_name").
		Joins("LEFT JOIN artist ON artist.id=song.artist_id")
}
