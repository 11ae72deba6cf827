// Copyright (C) 2025 The Soundcrew Authors.
//
// This file is part of Soundcrew.
//
// Soundcrew is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Soundcrew is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Soundcrew.  If not, see <https://www.gnu.org/licenses/>.

package catalog

import (
	"errors"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func (c *Catalog) openDB() (err error) {
	var glog logger.Interface
	if c.config.Catalog.DB.LogMode == false {
		glog = logger.Discard
	} else {
		glog = logger.Default
	}
	cfg := &gorm.Config{
		Logger: glog,
	}

	switch c.config.Catalog.DB.Driver {
	case "sqlite3":
		c.db, err = gorm.Open(sqlite.Open(c.config.Catalog.DB.Source), cfg)
	case "mysql":
		c.db, err = gorm.Open(mysql.Open(c.config.Catalog.DB.Source), cfg)
	case "postgres":
		c.db, err = gorm.Open(postgres.Open(c.config.Catalog.DB.Source), cfg)
	default:
		err = ErrBadDriver
	}

	if err != nil {
		return
	}

	err = c.db.AutoMigrate(&Artist{}, &Profile{}, &Album{}, &Song{},
		&Like{}, &Comment{}, &Playlist{}, &PlaylistSong{})
	return
}

func (c *Catalog) closeDB() {
	conn, err := c.db.DB()
	if err != nil {
		return
	}
	conn.Close()
}

func (c *Catalog) artists() []Artist {
	var artists []Artist
	c.db.Order("name").Find(&artists)
	return artists
}

func (c *Catalog) findArtist(id uint) (Artist, error) {
	var a Artist
	err := c.db.First(&a, id).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Artist{}, ErrArtistNotFound
	}
	return a, err
}

func (c *Catalog) findArtistBySlug(slug string) (Artist, error) {
	var a Artist
	err := c.db.Where("slug = ?", slug).First(&a).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Artist{}, ErrArtistNotFound
	}
	return a, err
}

func (c *Catalog) findAlbum(id uint) (Album, error) {
	var a Album
	err := c.db.First(&a, id).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Album{}, ErrAlbumNotFound
	}
	return a, err
}

func (c *Catalog) findSong(id uint) (Song, error) {
	var s Song
	err := c.db.First(&s, id).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Song{}, ErrSongNotFound
	}
	return s, err
}

func (c *Catalog) artistAlbums(artistID uint) []Album {
	var albums []Album
	c.db.Where("artist_id = ?", artistID).
		Order("year desc").Find(&albums)
	return albums
}

func (c *Catalog) albums(albumType string) []Album {
	var albums []Album
	q := c.db.Order("year desc")
	if albumType != "" {
		q = q.Where("album_type = ?", albumType)
	}
	q.Find(&albums)
	return albums
}

func (c *Catalog) albumSongs(albumID uint) []Song {
	var songs []Song
	c.db.Where("album_id = ?", albumID).
		Order("track_number").Find(&songs)
	return songs
}

func (c *Catalog) artistSingles(artistID uint) []Song {
	var songs []Song
	c.db.Where("artist_id = ? and album_id is null", artistID).
		Order("created_at desc").Find(&songs)
	return songs
}

func (c *Catalog) findProfile(user string) (Profile, error) {
	var p Profile
	err := c.db.Where("user_name = ?", user).First(&p).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrProfileNotFound
	}
	return p, err
}

func (c *Catalog) createProfile(p *Profile) error {
	return c.db.Create(p).Error
}

func (c *Catalog) saveProfile(p *Profile) error {
	return c.db.Save(p).Error
}

func (c *Catalog) createArtist(a *Artist) error {
	return c.db.Create(a).Error
}

func (c *Catalog) saveArtist(a *Artist) error {
	return c.db.Save(a).Error
}

func (c *Catalog) createAlbum(a *Album) error {
	return c.db.Create(a).Error
}

func (c *Catalog) saveAlbum(a *Album) error {
	return c.db.Save(a).Error
}

func (c *Catalog) saveSong(s *Song) error {
	return c.db.Save(s).Error
}

func (c *Catalog) countAlbumSongs(albumID uint) int64 {
	var n int64
	c.db.Model(&Song{}).Where("album_id = ?", albumID).Count(&n)
	return n
}
