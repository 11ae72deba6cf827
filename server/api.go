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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/soundcrew/soundcrew/auth"
	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/search"
)

var (
	// Ownership failures never reveal whether the target exists.
	ErrAlbumForbidden = errors.New(
		"Album not found or you don't have permission to update it")
	ErrSongForbidden = errors.New(
		"Song not found or you don't have permission to update it")
	ErrPlaylistForbidden = errors.New(
		"Playlist not found or you don't have permission to update it")
)

var validate = validator.New()

func recvJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return err
	}
	return validate.Struct(v)
}

func paramID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.URL.Query().Get(name), 10, 32)
	return uint(id), err
}

func marshalEvent(e auth.Event) ([]byte, error) {
	return json.Marshal(e)
}

type loginRequest struct {
	User string `json:"user" validate:"required"`
	Pass string `json:"pass" validate:"required"`
}

// POST /api/login < loginRequest > {token, access_token}
// 200: success
// 401: bad credentials
func apiLogin(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var l loginRequest
	if err := recvJSON(r, &l); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	session, err := ctx.Auth().Login(l.User, l.Pass)
	if err != nil {
		authErr(w, ErrUnauthorized)
		return
	}
	token, err := ctx.Auth().NewAccessToken(session)
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":        session.Token,
		"access_token": token,
		"expires":      session.Expires,
	})
}

// POST /api/logout
//
// A session token ends that session; an access token ends every session
// for the user it was issued to.
func apiLogout(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	session := ctx.Auth().TokenSession(bearerToken(r))
	if session != nil {
		ctx.Auth().Logout(*session)
	} else {
		ctx.Auth().LogoutAll(ctx.User().Name)
	}
	writeSuccess(w, nil)
}

// GET /api/profile
func apiProfileGet(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	p, err := ctx.Catalog().ProfileFor(ctx.User().Name)
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
}

// POST /api/profile < profileRequest
func apiProfilePost(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var req profileRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	p, err := ctx.Catalog().ProfileFor(ctx.User().Name)
	if err != nil {
		serverErr(w, err)
		return
	}
	p.DisplayName = req.DisplayName
	p.AvatarURL = req.AvatarURL
	if err := ctx.Catalog().UpdateProfile(&p); err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/artists
func apiArtists(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	artists, err := ctx.Catalog().Artists()
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

// GET /api/artists/:id - by id, falling back to slug
func apiArtistGet(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var artist catalog.Artist
	id, err := paramID(r, ":id")
	if err == nil {
		artist, err = ctx.Catalog().FindArtist(id)
	} else {
		artist, err = ctx.Catalog().FindArtistBySlug(r.URL.Query().Get(":id"))
	}
	if err != nil {
		notFoundErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

// GET /api/artists/:id/albums
func apiArtistAlbums(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	albums, err := ctx.Catalog().ArtistAlbums(id)
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// GET /api/artists/:id/content - public artist page view
func apiArtistPublicContent(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	content, err := ctx.Catalog().Content(id)
	if err != nil {
		notFoundErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// GET /api/albums?type=album|mixtape|ep
func apiAlbums(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	albums, err := ctx.Catalog().Albums(r.URL.Query().Get("type"))
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// GET /api/albums/:id
func apiAlbumGet(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	album, err := ctx.Catalog().FindAlbum(id)
	if err != nil {
		notFoundErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// GET /api/albums/:id/songs
func apiAlbumSongs(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	songs, err := ctx.Catalog().AlbumSongs(id)
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// GET /api/songs/:id
func apiSongGet(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	song, err := ctx.Catalog().FindSong(id)
	if err != nil {
		notFoundErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// GET /api/songs/:id/comments
func apiSongComments(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	comments, err := ctx.Catalog().SongComments(id)
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// GET /api/search?q=query
func apiSearch(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	q := r.URL.Query().Get("q")
	if q == "" {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	limit := ctx.Config().Catalog.SearchLimit
	hits, err := ctx.Search().Search(q, limit)
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	result := struct {
		Artists []catalog.Artist `json:"artists"`
		Albums  []catalog.Album  `json:"albums"`
		Songs   []catalog.Song   `json:"songs"`
	}{
		Artists: []catalog.Artist{},
		Albums:  []catalog.Album{},
		Songs:   []catalog.Song{},
	}
	for _, hit := range hits {
		switch hit.Kind {
		case search.KindArtist:
			if a, err := ctx.Catalog().FindArtist(hit.ID); err == nil {
				result.Artists = append(result.Artists, a)
			}
		case search.KindAlbum:
			if a, err := ctx.Catalog().FindAlbum(hit.ID); err == nil {
				result.Albums = append(result.Albums, a)
			}
		case search.KindSong:
			if s, err := ctx.Catalog().FindSong(hit.ID); err == nil {
				result.Songs = append(result.Songs, s)
			}
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /api/songs/:id/like
func apiLikePost(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	err = ctx.Catalog().LikeSong(ctx.User().Name, id)
	if err == catalog.ErrSongNotFound {
		notFoundErr(w, err)
		return
	} else if err != nil {
		serverErr(w, err)
		return
	}
	writeSuccess(w, nil)
}

// DELETE /api/songs/:id/like
func apiLikeDelete(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	if err := ctx.Catalog().UnlikeSong(ctx.User().Name, id); err != nil {
		serverErr(w, err)
		return
	}
	writeSuccess(w, nil)
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

// POST /api/songs/:id/comments < commentRequest
func apiCommentPost(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	var req commentRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	comment, err := ctx.Catalog().AddComment(ctx.User().Name, id, req.Content)
	if err == catalog.ErrSongNotFound {
		notFoundErr(w, err)
		return
	} else if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// GET /api/playlists
func apiPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	playlists, err := ctx.Catalog().UserPlaylists(ctx.User().Name)
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

type playlistRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// POST /api/playlists < playlistRequest
func apiPlaylistPost(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var req playlistRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	p := catalog.Playlist{
		UserName:    ctx.User().Name,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := ctx.Catalog().CreatePlaylist(&p); err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ownedPlaylist re-checks the playlist against the caller. Public playlists
// are readable by anyone; mutations require ownership.
func ownedPlaylist(ctx Context, r *http.Request) (catalog.Playlist, error) {
	id, err := paramID(r, ":id")
	if err != nil {
		return catalog.Playlist{}, err
	}
	p, err := ctx.Catalog().FindPlaylist(id)
	if err != nil {
		return catalog.Playlist{}, err
	}
	if p.UserName != ctx.User().Name {
		return catalog.Playlist{}, ErrPlaylistForbidden
	}
	return p, nil
}

// GET /api/playlists/:id/songs
func apiPlaylistSongs(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := paramID(r, ":id")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	p, err := ctx.Catalog().FindPlaylist(id)
	if err != nil {
		notFoundErr(w, err)
		return
	}
	if !p.IsPublic && p.UserName != ctx.User().Name {
		forbiddenErr(w, ErrPlaylistForbidden)
		return
	}
	songs, err := ctx.Catalog().PlaylistSongs(id)
	if err != nil {
		serverErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

type playlistSongRequest struct {
	SongID uint `json:"song_id" validate:"required"`
}

// POST /api/playlists/:id/songs < playlistSongRequest
func apiPlaylistSongPost(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	p, err := ownedPlaylist(ctx, r)
	if err != nil {
		forbiddenErr(w, ErrPlaylistForbidden)
		return
	}
	var req playlistSongRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	err = ctx.Catalog().AddPlaylistSong(p.ID, req.SongID)
	if err == catalog.ErrSongNotFound {
		notFoundErr(w, err)
		return
	} else if err != nil {
		serverErr(w, err)
		return
	}
	writeSuccess(w, nil)
}

// DELETE /api/playlists/:id/songs/:sid
func apiPlaylistSongDelete(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	p, err := ownedPlaylist(ctx, r)
	if err != nil {
		forbiddenErr(w, ErrPlaylistForbidden)
		return
	}
	songID, err := paramID(r, ":sid")
	if err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	if err := ctx.Catalog().RemovePlaylistSong(p.ID, songID); err != nil {
		serverErr(w, err)
		return
	}
	writeSuccess(w, nil)
}

// GET /api/get-artist-content?artistId=n - the artist dashboard view
//
// Read-only, so any signed-in user may fetch it for an explicit artistId;
// without the param it falls back to the caller's own artist.
func apiArtistContent(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var artistID uint
	if v := r.URL.Query().Get("artistId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			badRequestErr(w, ErrInvalidRequest)
			return
		}
		artistID = uint(id)
	} else {
		artist, err := ctx.Catalog().ArtistFor(ctx.User().Name)
		if err != nil {
			forbiddenErr(w, ErrNotAnArtist)
			return
		}
		artistID = artist.ID
	}
	content, err := ctx.Catalog().Content(artistID)
	if err != nil {
		notFoundErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

type updateArtistRequest struct {
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	Genres       string `json:"genres"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
	BannerURL    string `json:"banner_url" validate:"omitempty,url"`
	WebsiteURL   string `json:"website_url" validate:"omitempty,url"`
	FacebookURL  string `json:"facebook_url" validate:"omitempty,url"`
	TwitterURL   string `json:"twitter_url" validate:"omitempty,url"`
	InstagramURL string `json:"instagram_url" validate:"omitempty,url"`
	SpotifyURL   string `json:"spotify_url" validate:"omitempty,url"`
}

// POST /api/update-artist < updateArtistRequest
//
// The target artist always comes from the caller's profile; there is no way
// to address another artist's record.
func apiUpdateArtist(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var req updateArtistRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	artist := *ctx.Artist()
	if req.Name != "" {
		artist.Name = req.Name
	}
	artist.Bio = req.Bio
	artist.Genres = req.Genres
	artist.ImageURL = req.ImageURL
	artist.BannerURL = req.BannerURL
	artist.WebsiteURL = req.WebsiteURL
	artist.FacebookURL = req.FacebookURL
	artist.TwitterURL = req.TwitterURL
	artist.InstagramURL = req.InstagramURL
	artist.SpotifyURL = req.SpotifyURL
	if err := ctx.Catalog().UpdateArtist(&artist); err != nil {
		serverErr(w, err)
		return
	}
	ctx.Search().IndexArtist(artist)
	writeSuccess(w, map[string]interface{}{"artist": artist})
}

type createAlbumRequest struct {
	Title       string `json:"title" validate:"required"`
	AlbumType   string `json:"album_type" validate:"omitempty,oneof=album mixtape ep"`
	Year        string `json:"year"`
	Description string `json:"description"`
	Genres      string `json:"genres"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// POST /api/create-album < createAlbumRequest
func apiCreateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var req createAlbumRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	album := catalog.Album{
		ArtistID:    ctx.Artist().ID,
		Title:       req.Title,
		AlbumType:   req.AlbumType,
		Year:        req.Year,
		Description: req.Description,
		Genres:      req.Genres,
		ImageURL:    req.ImageURL,
	}
	if err := ctx.Catalog().CreateAlbum(&album); err != nil {
		serverErr(w, err)
		return
	}
	ctx.Search().IndexAlbum(album, *ctx.Artist())
	writeSuccess(w, map[string]interface{}{"album": album})
}

type updateAlbumRequest struct {
	ID          uint   `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	AlbumType   string `json:"album_type" validate:"omitempty,oneof=album mixtape ep"`
	Year        string `json:"year"`
	Description string `json:"description"`
	Genres      string `json:"genres"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// ownedAlbum re-checks the album's artist against the caller's artist.
func ownedAlbum(ctx Context, id uint) (catalog.Album, error) {
	album, err := ctx.Catalog().FindAlbum(id)
	if err != nil || album.ArtistID != ctx.Artist().ID {
		return catalog.Album{}, ErrAlbumForbidden
	}
	return album, nil
}

// ownedSong re-checks the song's artist against the caller's artist.
func ownedSong(ctx Context, id uint) (catalog.Song, error) {
	song, err := ctx.Catalog().FindSong(id)
	if err != nil || song.ArtistID != ctx.Artist().ID {
		return catalog.Song{}, ErrSongForbidden
	}
	return song, nil
}

// POST /api/update-album < updateAlbumRequest
func apiUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var req updateAlbumRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	album, err := ownedAlbum(ctx, req.ID)
	if err != nil {
		forbiddenErr(w, err)
		return
	}
	album.Title = req.Title
	if req.AlbumType != "" {
		album.AlbumType = req.AlbumType
	}
	album.Year = req.Year
	album.Description = req.Description
	album.Genres = req.Genres
	album.ImageURL = req.ImageURL
	if err := ctx.Catalog().UpdateAlbum(&album); err != nil {
		serverErr(w, err)
		return
	}
	ctx.Search().IndexAlbum(album, *ctx.Artist())
	writeSuccess(w, map[string]interface{}{"album": album})
}

type updateSongRequest struct {
	ID          uint   `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	TrackNumber int    `json:"track_number"`
	Lyrics      string `json:"lyrics"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// POST /api/update-song < updateSongRequest
func apiUpdateSong(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var req updateSongRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	song, err := ownedSong(ctx, req.ID)
	if err != nil {
		forbiddenErr(w, err)
		return
	}
	song.Title = req.Title
	if req.TrackNumber > 0 {
		song.TrackNumber = req.TrackNumber
	}
	song.Lyrics = req.Lyrics
	song.ImageURL = req.ImageURL
	if err := ctx.Catalog().UpdateSong(&song); err != nil {
		serverErr(w, err)
		return
	}
	ctx.Search().IndexSong(song, *ctx.Artist())
	writeSuccess(w, map[string]interface{}{"song": song})
}

type reorderSongsRequest struct {
	AlbumID uint                `json:"album_id" validate:"required"`
	Songs   []catalog.SongOrder `json:"songs" validate:"required,min=1,dive"`
}

// POST /api/reorder-songs < reorderSongsRequest
//
// Applied atomically; any bad entry leaves the album untouched.
func apiReorderSongs(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var req reorderSongsRequest
	if err := recvJSON(r, &req); err != nil {
		badRequestErr(w, ErrInvalidRequest)
		return
	}
	if _, err := ownedAlbum(ctx, req.AlbumID); err != nil {
		forbiddenErr(w, err)
		return
	}
	songs, err := ctx.Catalog().ReorderSongs(req.AlbumID, req.Songs)
	if err == catalog.ErrSongMismatch {
		badRequestErr(w, err)
		return
	} else if err != nil {
		serverErr(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"songs": songs})
}
