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
	"net/http"
	"strings"

	"github.com/soundcrew/soundcrew/auth"
	"github.com/soundcrew/soundcrew/lib/hub"
	"github.com/soundcrew/soundcrew/lib/log"
)

const (
	AuthorizationHeader = "Authorization"
	BearerAuthorization = "Bearer"

	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

func bearerToken(r *http.Request) string {
	value := r.Header.Get(AuthorizationHeader)
	if value == "" {
		return ""
	}
	result := strings.Split(value, " ")
	switch len(result) {
	case 1:
		// Authorization: <token>
		return result[0]
	case 2:
		// Authorization: Bearer <token>
		if strings.EqualFold(result[0], BearerAuthorization) {
			return result[1]
		}
	}
	return ""
}

// authorizeBearer resolves the bearer token to a user, first as an access
// token and then as a session token. Expired sessions are logged out.
func authorizeBearer(ctx Context, r *http.Request) *auth.User {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	a := ctx.Auth()

	u, err := a.CheckAccessTokenUser(token)
	if err == nil {
		return &u
	}

	session := a.TokenSession(token)
	if session == nil {
		return nil
	} else if session.Expired() {
		a.Logout(*session)
		return nil
	}
	u, err = a.SessionUser(session)
	if err != nil {
		a.Logout(*session)
		return nil
	}
	a.Refresh(session)
	return &u
}

// authHandler requires a signed-in user: 401 with a distinct message when
// the header is absent entirely, 401 Unauthorized when the token is bad.
func authHandler(ctx RequestContext, handler http.HandlerFunc) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(AuthorizationHeader) == "" {
			authErr(w, ErrMissingAuthHeader)
			return
		}
		user := authorizeBearer(ctx, r)
		if user == nil {
			authErr(w, ErrUnauthorized)
			return
		}
		handler.ServeHTTP(w, withContext(r, userContext(ctx, user)))
	}
	return http.HandlerFunc(fn)
}

// artistHandler additionally requires the user's profile to control an
// artist; the artist is derived server-side and placed in the context.
func artistHandler(ctx RequestContext, handler http.HandlerFunc) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(AuthorizationHeader) == "" {
			authErr(w, ErrMissingAuthHeader)
			return
		}
		user := authorizeBearer(ctx, r)
		if user == nil {
			authErr(w, ErrUnauthorized)
			return
		}
		artist, err := ctx.Catalog().ArtistFor(user.Name)
		if err != nil {
			forbiddenErr(w, ErrNotAnArtist)
			return
		}
		uctx := artistContext(userContext(ctx, user), &artist)
		handler.ServeHTTP(w, withContext(r, uctx))
	}
	return http.HandlerFunc(fn)
}

func requestHandler(ctx RequestContext, handler http.HandlerFunc) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, withContext(r, ctx))
	}
	return http.HandlerFunc(fn)
}

func hubHandler(ctx RequestContext, h *hub.Hub) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		r = withContext(r, ctx)
		h.Handle(ctx.Auth(), w, r)
	}
	return http.HandlerFunc(fn)
}

// corsHandler answers preflight requests directly and tags every other
// response. Browser clients send the auth header cross-origin.
func corsHandler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// recoverHandler keeps a handler panic from taking the server down; the
// client sees a generic 500.
func recoverHandler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				log.Printf("panic: %s %s: %v\n", r.Method, r.URL.Path, v)
				writeErr(w, http.StatusInternalServerError, ErrServerError)
			}
		}()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
