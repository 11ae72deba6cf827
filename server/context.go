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
	"context"
	"io"
	"net/http"

	"github.com/soundcrew/soundcrew/auth"
	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/config"
	"github.com/soundcrew/soundcrew/search"
)

type contextKey string

var (
	contextKeyContext = contextKey("context")
)

func withContext(r *http.Request, ctx Context) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKeyContext, ctx))
}

func contextValue(r *http.Request) Context {
	return r.Context().Value(contextKeyContext).(Context)
}

// A MediaBucket stores uploaded objects. Satisfied by bucket.Bucket; kept
// narrow so handlers never see the underlying S3 client.
type MediaBucket interface {
	ObjectKey(category string, ownerID uint, ext string) string
	Put(key string, body io.ReadSeeker, contentType string) (string, error)
	Delete(key string) error
}

type Context interface {
	Auth() *auth.Auth
	Catalog() *catalog.Catalog
	Config() *config.Config
	Search() *search.Search
	User() *auth.User
	Artist() *catalog.Artist
	AudioBucket() MediaBucket
	ImageBucket() MediaBucket
}

type RequestContext struct {
	auth        *auth.Auth
	catalog     *catalog.Catalog
	config      *config.Config
	search      *search.Search
	user        *auth.User
	artist      *catalog.Artist
	audioBucket MediaBucket
	imageBucket MediaBucket
}

func (ctx RequestContext) Auth() *auth.Auth {
	return ctx.auth
}

func (ctx RequestContext) Catalog() *catalog.Catalog {
	return ctx.catalog
}

func (ctx RequestContext) Config() *config.Config {
	return ctx.config
}

func (ctx RequestContext) Search() *search.Search {
	return ctx.search
}

func (ctx RequestContext) User() *auth.User {
	return ctx.user
}

func (ctx RequestContext) Artist() *catalog.Artist {
	return ctx.artist
}

func (ctx RequestContext) AudioBucket() MediaBucket {
	return ctx.audioBucket
}

func (ctx RequestContext) ImageBucket() MediaBucket {
	return ctx.imageBucket
}

func userContext(ctx Context, u *auth.User) RequestContext {
	return RequestContext{
		auth:        ctx.Auth(),
		catalog:     ctx.Catalog(),
		config:      ctx.Config(),
		search:      ctx.Search(),
		audioBucket: ctx.AudioBucket(),
		imageBucket: ctx.ImageBucket(),
		user:        u,
	}
}

func artistContext(ctx RequestContext, a *catalog.Artist) RequestContext {
	ctx.artist = a
	return ctx
}
