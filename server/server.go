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

// Package server is the HTTP front end: public catalog reads, authenticated
// listener actions, and artist-only content management and uploads.
package server

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/soundcrew/soundcrew/auth"
	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/config"
	"github.com/soundcrew/soundcrew/lib/bucket"
	"github.com/soundcrew/soundcrew/lib/hub"
	"github.com/soundcrew/soundcrew/lib/log"
	"github.com/soundcrew/soundcrew/search"
)

func makeAuth(config *config.Config) (*auth.Auth, error) {
	a := auth.NewAuth(config)
	err := a.Open()
	return a, err
}

func makeCatalog(config *config.Config) (*catalog.Catalog, error) {
	c := catalog.NewCatalog(config)
	err := c.Open()
	return c, err
}

func makeSearch(config *config.Config) (*search.Search, error) {
	s := search.NewSearch(config)
	err := s.Open("catalog")
	return s, err
}

func makeHub() *hub.Hub {
	h := hub.NewHub()
	go h.Run()
	return h
}

// watchAuth relays sign-in/sign-out events to live websocket clients.
func watchAuth(a *auth.Auth, h *hub.Hub) {
	w := a.Subscribe()
	go func() {
		for e := range w.C {
			body, err := marshalEvent(e)
			if err != nil {
				continue
			}
			h.Broadcast(body)
		}
	}()
}

func Serve(config *config.Config) error {
	a, err := makeAuth(config)
	log.CheckError(err)

	cat, err := makeCatalog(config)
	log.CheckError(err)

	idx, err := makeSearch(config)
	log.CheckError(err)

	audioBucket, err := bucket.OpenMedia(config.Buckets, bucket.MediaAudio)
	log.CheckError(err)
	imageBucket, err := bucket.OpenMedia(config.Buckets, bucket.MediaImage)
	log.CheckError(err)

	h := makeHub()
	watchAuth(a, h)

	schedule(config, a, cat, idx)

	// base context for all requests
	ctx := RequestContext{
		auth:        a,
		catalog:     cat,
		config:      config,
		search:      idx,
		audioBucket: audioBucket,
		imageBucket: imageBucket,
	}

	handler := buildHandler(ctx, h)
	log.Printf("listening on %s\n", config.Server.Listen)
	return http.ListenAndServe(config.Server.Listen, handler)
}

func buildHandler(ctx RequestContext, h *hub.Hub) http.Handler {
	mux := pat.New()

	// authorize
	mux.Post("/api/login", requestHandler(ctx, apiLogin))
	mux.Post("/api/logout", authHandler(ctx, apiLogout))
	mux.Get("/api/profile", authHandler(ctx, apiProfileGet))
	mux.Post("/api/profile", authHandler(ctx, apiProfilePost))

	// public catalog
	mux.Get("/api/artists", requestHandler(ctx, apiArtists))
	mux.Get("/api/artists/:id", requestHandler(ctx, apiArtistGet))
	mux.Get("/api/artists/:id/albums", requestHandler(ctx, apiArtistAlbums))
	mux.Get("/api/artists/:id/content", requestHandler(ctx, apiArtistPublicContent))
	mux.Get("/api/albums", requestHandler(ctx, apiAlbums))
	mux.Get("/api/albums/:id", requestHandler(ctx, apiAlbumGet))
	mux.Get("/api/albums/:id/songs", requestHandler(ctx, apiAlbumSongs))
	mux.Get("/api/songs/:id", requestHandler(ctx, apiSongGet))
	mux.Get("/api/songs/:id/comments", requestHandler(ctx, apiSongComments))
	mux.Get("/api/search", requestHandler(ctx, apiSearch))

	// listener actions
	mux.Post("/api/songs/:id/like", authHandler(ctx, apiLikePost))
	mux.Del("/api/songs/:id/like", authHandler(ctx, apiLikeDelete))
	mux.Post("/api/songs/:id/comments", authHandler(ctx, apiCommentPost))
	mux.Get("/api/playlists", authHandler(ctx, apiPlaylists))
	mux.Post("/api/playlists", authHandler(ctx, apiPlaylistPost))
	mux.Get("/api/playlists/:id/songs", authHandler(ctx, apiPlaylistSongs))
	mux.Post("/api/playlists/:id/songs", authHandler(ctx, apiPlaylistSongPost))
	mux.Del("/api/playlists/:id/songs/:sid", authHandler(ctx, apiPlaylistSongDelete))

	// artist management
	mux.Get("/api/get-artist-content", authHandler(ctx, apiArtistContent))
	mux.Post("/api/update-artist", artistHandler(ctx, apiUpdateArtist))
	mux.Post("/api/create-album", artistHandler(ctx, apiCreateAlbum))
	mux.Post("/api/update-album", artistHandler(ctx, apiUpdateAlbum))
	mux.Post("/api/update-song", artistHandler(ctx, apiUpdateSong))
	mux.Post("/api/reorder-songs", artistHandler(ctx, apiReorderSongs))

	// uploads
	mux.Post("/api/upload-audio", artistHandler(ctx, apiUploadAudio))
	mux.Post("/api/upload-image", artistHandler(ctx, apiUploadImage))

	// live events
	if h != nil {
		mux.Get("/live", hubHandler(ctx, h))
	}

	return corsHandler(recoverHandler(mux))
}
