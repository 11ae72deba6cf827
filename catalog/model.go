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
	"github.com/soundcrew/soundcrew/lib/gorm"
)

const (
	TypeAlbum   = "album"
	TypeMixtape = "mixtape"
	TypeEP      = "ep"
)

// An Artist is a content-owning identity, distinct from a login identity.
// At most one login controls an artist, recorded on the profile.
type Artist struct {
	gorm.Model
	Name         string `gorm:"uniqueIndex:idx_artist_name" json:"name"`
	Slug         string `gorm:"uniqueIndex:idx_artist_slug" json:"slug"`
	Bio          string `json:"bio"`
	Genres       string `json:"genres"` // comma-separated
	ImageURL     string `json:"image_url"`
	BannerURL    string `json:"banner_url"`
	WebsiteURL   string `json:"website_url"`
	FacebookURL  string `json:"facebook_url"`
	TwitterURL   string `json:"twitter_url"`
	InstagramURL string `json:"instagram_url"`
	SpotifyURL   string `json:"spotify_url"`
}

// A Profile links a login identity to its collective role. The artist
// reference is a weak back-reference used for lookup only.
type Profile struct {
	gorm.Model
	UserName    string `gorm:"uniqueIndex:idx_profile_user" json:"-"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	IsArtist    bool   `json:"is_artist"`
	ArtistID    uint   `json:"artist_id"`
}

// An Album belongs to exactly one artist. ArtistID is immutable after
// creation; every mutation path re-checks it against the caller.
type Album struct {
	gorm.Model
	ArtistID    uint   `gorm:"index:idx_album_artist" json:"artist_id"`
	Title       string `json:"title"`
	AlbumType   string `json:"album_type"` // album, mixtape or ep
	Year        string `json:"year"`
	Description string `json:"description"`
	Genres      string `json:"genres"`
	Tracks      int    `json:"tracks"`
	ImageURL    string `json:"image_url"`
}

// A Song belongs to at most one album (nil for singles) and always to one
// artist. ArtistID is redundant with the album's artist and is kept for
// authorization checks without a join.
type Song struct {
	gorm.Model
	AlbumID      *uint  `gorm:"index:idx_song_album" json:"album_id"`
	ArtistID     uint   `gorm:"index:idx_song_artist" json:"artist_id"`
	Title        string `json:"title"`
	TrackNumber  int    `json:"track_number"`
	AudioURL     string `json:"audio_url"`
	ImageURL     string `json:"image_url"`
	Lyrics       string `json:"lyrics"`
	FileFormat   string `json:"file_format"`
	FileSize     int64  `json:"file_size"`
	EncodingRate string `json:"encoding_rate"`
}

type Like struct {
	gorm.Model
	UserName string `gorm:"uniqueIndex:idx_like" json:"-"`
	SongID   uint   `gorm:"uniqueIndex:idx_like" json:"song_id"`
}

type Comment struct {
	gorm.Model
	UserName string `gorm:"index:idx_comment_user" json:"user_name"`
	SongID   uint   `gorm:"index:idx_comment_song" json:"song_id"`
	Content  string `json:"content"`
}

type Playlist struct {
	gorm.Model
	UserName    string `gorm:"index:idx_playlist_user" json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type PlaylistSong struct {
	gorm.Model
	PlaylistID uint `gorm:"uniqueIndex:idx_playlist_song" json:"playlist_id"`
	SongID     uint `gorm:"uniqueIndex:idx_playlist_song" json:"song_id"`
	Position   int  `json:"position"`
}

// A SongOrder is one entry of a reorder request: assign track_number to the
// song with id.
type SongOrder struct {
	ID          uint `json:"id"`
	TrackNumber int  `json:"track_number"`
}

// IsSingle reports whether the song is not part of an album.
func (s Song) IsSingle() bool {
	return s.AlbumID == nil
}

// ValidType reports whether the album type is one of the supported kinds.
func (a Album) ValidType() bool {
	switch a.AlbumType {
	case TypeAlbum, TypeMixtape, TypeEP:
		return true
	}
	return false
}
