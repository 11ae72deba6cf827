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

package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/lib/log"
)

var (
	ErrInvalidAudioType = errors.New(
		"Invalid file type. Only MP3, WAV and FLAC files are allowed")
	ErrInvalidImageType = errors.New(
		"Invalid file type. Only image files are allowed")
	ErrMissingFile  = errors.New("Missing file")
	ErrMissingTitle = errors.New("Missing title")
	ErrBadTarget    = errors.New("Invalid upload target")
)

func sizeErr(max int64) error {
	return fmt.Errorf("File size exceeds %dMB limit", max/(1024*1024))
}

// formFile returns the uploaded file after enforcing the size cap. The cap
// is checked before anything is sent to storage.
func formFile(r *http.Request, max int64) (multipart.File, *multipart.FileHeader, error) {
	err := r.ParseMultipartForm(max)
	if err != nil {
		return nil, nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, ErrMissingFile
	}
	if header.Size > max {
		file.Close()
		return nil, nil, sizeErr(max)
	}
	return file, header, nil
}

func audioFormat(contentType string) string {
	switch strings.ToLower(contentType) {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/wav":
		return "wav"
	case "audio/flac":
		return "flac"
	}
	return ""
}

func encodingRate(format string) string {
	if format == "mp3" {
		return "128-320kbps"
	}
	return "lossless"
}

// POST /api/upload-audio (multipart) - file, title, album_id?, track_number?
//
// The object is stored first and the song row written after; if the row
// write fails the object is deleted so storage never leaks orphans.
func apiUploadAudio(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	max := ctx.Config().Upload.MaxAudioSize

	file, header, err := formFile(r, max)
	if err != nil {
		badRequestErr(w, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !ctx.Config().Upload.AllowedAudioType(contentType) {
		badRequestErr(w, ErrInvalidAudioType)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		badRequestErr(w, ErrMissingTitle)
		return
	}

	song := catalog.Song{
		ArtistID:     ctx.Artist().ID,
		Title:        title,
		FileFormat:   audioFormat(contentType),
		FileSize:     header.Size,
		EncodingRate: encodingRate(audioFormat(contentType)),
	}
	if v := r.FormValue("album_id"); v != "" {
		albumID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			badRequestErr(w, ErrInvalidRequest)
			return
		}
		if _, err := ownedAlbum(ctx, uint(albumID)); err != nil {
			forbiddenErr(w, err)
			return
		}
		id := uint(albumID)
		song.AlbumID = &id
	}
	if v := r.FormValue("track_number"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequestErr(w, ErrInvalidRequest)
			return
		}
		song.TrackNumber = n
	}
	if v := r.FormValue("lyrics"); v != "" {
		song.Lyrics = v
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = song.FileFormat
	}
	key := ctx.AudioBucket().ObjectKey("songs", ctx.Artist().ID, ext)
	url, err := ctx.AudioBucket().Put(key, file, contentType)
	if err != nil {
		serverErr(w, err)
		return
	}
	song.AudioURL = url

	if err := ctx.Catalog().CreateSong(&song); err != nil {
		// compensate: drop the uploaded object
		if derr := ctx.AudioBucket().Delete(key); derr != nil {
			log.Printf("orphaned object %s: %s\n", key, derr)
		}
		serverErr(w, err)
		return
	}
	ctx.Search().IndexSong(song, *ctx.Artist())

	writeSuccess(w, map[string]interface{}{
		"key":  key,
		"url":  url,
		"song": song,
	})
}

const (
	targetArtistImage  = "artist-image"
	targetArtistBanner = "artist-banner"
	targetAlbumImage   = "album-image"
	targetSongImage    = "song-image"
)

// sniffImage checks the actual bytes, not the declared content type.
func sniffImage(file multipart.File) (string, error) {
	head := make([]byte, 261)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || !filetype.IsImage(head[:n]) {
		return "", ErrInvalidImageType
	}
	return kind.MIME.Value, nil
}

// POST /api/upload-image (multipart) - file, target, id?
//
// target selects which record gets the image URL: artist-image,
// artist-banner, album-image or song-image. Album and song targets require
// id and re-check ownership. Same store-then-write contract as audio.
func apiUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	max := ctx.Config().Upload.MaxImageSize

	file, header, err := formFile(r, max)
	if err != nil {
		badRequestErr(w, err)
		return
	}
	defer file.Close()

	contentType, err := sniffImage(file)
	if err != nil {
		badRequestErr(w, ErrInvalidImageType)
		return
	}

	target := r.FormValue("target")
	var album catalog.Album
	var song catalog.Song
	switch target {
	case targetArtistImage, targetArtistBanner:
	case targetAlbumImage:
		id, err := strconv.ParseUint(r.FormValue("id"), 10, 32)
		if err != nil {
			badRequestErr(w, ErrInvalidRequest)
			return
		}
		album, err = ownedAlbum(ctx, uint(id))
		if err != nil {
			forbiddenErr(w, err)
			return
		}
	case targetSongImage:
		id, err := strconv.ParseUint(r.FormValue("id"), 10, 32)
		if err != nil {
			badRequestErr(w, ErrInvalidRequest)
			return
		}
		song, err = ownedSong(ctx, uint(id))
		if err != nil {
			forbiddenErr(w, err)
			return
		}
	default:
		badRequestErr(w, ErrBadTarget)
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = "img"
	}
	key := ctx.ImageBucket().ObjectKey(target+"s", ctx.Artist().ID, ext)
	url, err := ctx.ImageBucket().Put(key, file, contentType)
	if err != nil {
		serverErr(w, err)
		return
	}

	switch target {
	case targetArtistImage:
		artist := *ctx.Artist()
		artist.ImageURL = url
		err = ctx.Catalog().UpdateArtist(&artist)
	case targetArtistBanner:
		artist := *ctx.Artist()
		artist.BannerURL = url
		err = ctx.Catalog().UpdateArtist(&artist)
	case targetAlbumImage:
		album.ImageURL = url
		err = ctx.Catalog().UpdateAlbum(&album)
	case targetSongImage:
		song.ImageURL = url
		err = ctx.Catalog().UpdateSong(&song)
	}
	if err != nil {
		// compensate: drop the uploaded object
		if derr := ctx.ImageBucket().Delete(key); derr != nil {
			log.Printf("orphaned object %s: %s\n", key, derr)
		}
		serverErr(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"key": key,
		"url": url,
	})
}
