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

// Package catalog is the persistence layer for artists, albums, songs and
// listener interactions. Every operation returns an explicit error; callers
// decide what to surface.
package catalog

import (
	"errors"

	"github.com/soundcrew/soundcrew/config"
	"gorm.io/gorm"
)

var (
	ErrBadDriver       = errors.New("driver not supported")
	ErrArtistNotFound  = errors.New("artist not found")
	ErrAlbumNotFound   = errors.New("album not found")
	ErrSongNotFound    = errors.New("song not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotAnArtist     = errors.New("profile is not an artist")
	ErrInvalidType     = errors.New("invalid album type")
	ErrSongMismatch    = errors.New("song not in album")
)

type Catalog struct {
	config *config.Config
	db     *gorm.DB
}

func NewCatalog(config *config.Config) *Catalog {
	return &Catalog{config: config}
}

func (c *Catalog) Open() (err error) {
	err = c.openDB()
	return
}

func (c *Catalog) Close() {
	c.closeDB()
}

func (c *Catalog) Artists() ([]Artist, error) {
	return c.artists(), nil
}

func (c *Catalog) FindArtist(id uint) (Artist, error) {
	return c.findArtist(id)
}

func (c *Catalog) FindArtistBySlug(slug string) (Artist, error) {
	return c.findArtistBySlug(slug)
}

func (c *Catalog) FindAlbum(id uint) (Album, error) {
	return c.findAlbum(id)
}

func (c *Catalog) FindSong(id uint) (Song, error) {
	return c.findSong(id)
}

func (c *Catalog) ArtistAlbums(artistID uint) ([]Album, error) {
	return c.artistAlbums(artistID), nil
}

func (c *Catalog) Albums(albumType string) ([]Album, error) {
	return c.albums(albumType), nil
}

func (c *Catalog) AlbumSongs(albumID uint) ([]Song, error) {
	return c.albumSongs(albumID), nil
}

func (c *Catalog) ArtistSingles(artistID uint) ([]Song, error) {
	return c.artistSingles(artistID), nil
}

// ProfileFor returns the profile linked to the login identity, creating an
// empty one on first use.
func (c *Catalog) ProfileFor(user string) (Profile, error) {
	p, err := c.findProfile(user)
	if err == ErrProfileNotFound {
		p = Profile{UserName: user}
		err = c.createProfile(&p)
	}
	return p, err
}

// ArtistFor derives the artist controlled by the login identity. This is the
// only source of artist identity for authorization; client-supplied ids are
// never trusted.
func (c *Catalog) ArtistFor(user string) (Artist, error) {
	p, err := c.findProfile(user)
	if err != nil {
		return Artist{}, err
	}
	if !p.IsArtist || p.ArtistID == 0 {
		return Artist{}, ErrNotAnArtist
	}
	return c.findArtist(p.ArtistID)
}

// CreateArtist adds a new artist to the collective.
func (c *Catalog) CreateArtist(a *Artist) error {
	return c.createArtist(a)
}

// LinkArtist marks the profile as an artist profile controlling artistID.
func (c *Catalog) LinkArtist(user string, artistID uint) error {
	if _, err := c.findArtist(artistID); err != nil {
		return err
	}
	p, err := c.ProfileFor(user)
	if err != nil {
		return err
	}
	p.IsArtist = true
	p.ArtistID = artistID
	return c.saveProfile(&p)
}

func (c *Catalog) UpdateProfile(p *Profile) error {
	return c.saveProfile(p)
}

func (c *Catalog) UpdateArtist(a *Artist) error {
	return c.saveArtist(a)
}

// CreateAlbum adds an album for the owning artist. Track count starts at
// zero and is maintained as songs are added.
func (c *Catalog) CreateAlbum(a *Album) error {
	if a.AlbumType == "" {
		a.AlbumType = TypeAlbum
	}
	if !a.ValidType() {
		return ErrInvalidType
	}
	a.Tracks = 0
	return c.createAlbum(a)
}

func (c *Catalog) UpdateAlbum(a *Album) error {
	if !a.ValidType() {
		return ErrInvalidType
	}
	return c.saveAlbum(a)
}

func (c *Catalog) UpdateSong(s *Song) error {
	return c.saveSong(s)
}

// CreateSong adds a song and bumps the album track count.
func (c *Catalog) CreateSong(s *Song) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		if s.AlbumID != nil {
			var n int64
			tx.Model(&Song{}).Where("album_id = ?", *s.AlbumID).Count(&n)
			return tx.Model(&Album{}).Where("id = ?", *s.AlbumID).
				Update("tracks", n).Error
		}
		return nil
	})
}

// ReorderSongs applies the provided track numbers to the album's songs in a
// single transaction; a failing entry rolls back the whole batch. Updates
// are scoped by song id and album id so a request cannot renumber songs in
// someone else's album. Returns the album's songs in the new order.
func (c *Catalog) ReorderSongs(albumID uint, orders []SongOrder) ([]Song, error) {
	err := c.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&Song{}).
				Where("id = ? and album_id = ?", o.ID, albumID).
				Update("track_number", o.TrackNumber)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrSongMismatch
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.albumSongs(albumID), nil
}

// FixTrackCounts reconciles each album's stored track count with the actual
// number of songs. Called from the scheduled maintenance job.
func (c *Catalog) FixTrackCounts() error {
	var albums []Album
	if err := c.db.Find(&albums).Error; err != nil {
		return err
	}
	for i := range albums {
		n := int(c.countAlbumSongs(albums[i].ID))
		if albums[i].Tracks != n {
			err := c.db.Model(&albums[i]).Update("tracks", n).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// LikeSong records a like; liking twice is not an error.
func (c *Catalog) LikeSong(user string, songID uint) error {
	if _, err := c.findSong(songID); err != nil {
		return err
	}
	has, err := c.HasLike(user, songID)
	if err != nil || has {
		return err
	}
	return c.db.Create(&Like{UserName: user, SongID: songID}).Error
}

func (c *Catalog) UnlikeSong(user string, songID uint) error {
	return c.db.Unscoped().
		Where("user_name = ? and song_id = ?", user, songID).
		Delete(Like{}).Error
}

func (c *Catalog) HasLike(user string, songID uint) (bool, error) {
	var n int64
	err := c.db.Model(&Like{}).
		Where("user_name = ? and song_id = ?", user, songID).
		Count(&n).Error
	return n > 0, err
}

func (c *Catalog) AddComment(user string, songID uint, content string) (Comment, error) {
	if _, err := c.findSong(songID); err != nil {
		return Comment{}, err
	}
	comment := Comment{UserName: user, SongID: songID, Content: content}
	err := c.db.Create(&comment).Error
	return comment, err
}

func (c *Catalog) SongComments(songID uint) ([]Comment, error) {
	var comments []Comment
	err := c.db.Where("song_id = ?", songID).
		Order("created_at desc").Find(&comments).Error
	return comments, err
}

func (c *Catalog) CreatePlaylist(p *Playlist) error {
	return c.db.Create(p).Error
}

func (c *Catalog) UserPlaylists(user string) ([]Playlist, error) {
	var playlists []Playlist
	err := c.db.Where("user_name = ?", user).
		Order("created_at desc").Find(&playlists).Error
	return playlists, err
}

func (c *Catalog) FindPlaylist(id uint) (Playlist, error) {
	var p Playlist
	err := c.db.First(&p, id).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Playlist{}, errors.New("playlist not found")
	}
	return p, err
}

// AddPlaylistSong appends the song at the end of the playlist.
func (c *Catalog) AddPlaylistSong(playlistID, songID uint) error {
	if _, err := c.findSong(songID); err != nil {
		return err
	}
	var n int64
	c.db.Model(&PlaylistSong{}).Where("playlist_id = ?", playlistID).Count(&n)
	return c.db.Create(&PlaylistSong{
		PlaylistID: playlistID,
		SongID:     songID,
		Position:   int(n) + 1,
	}).Error
}

func (c *Catalog) RemovePlaylistSong(playlistID, songID uint) error {
	return c.db.Unscoped().
		Where("playlist_id = ? and song_id = ?", playlistID, songID).
		Delete(PlaylistSong{}).Error
}

func (c *Catalog) PlaylistSongs(playlistID uint) ([]Song, error) {
	var entries []PlaylistSong
	err := c.db.Where("playlist_id = ?", playlistID).
		Order("position").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	var songs []Song
	for _, e := range entries {
		s, err := c.findSong(e.SongID)
		if err != nil {
			continue
		}
		songs = append(songs, s)
	}
	return songs, nil
}
