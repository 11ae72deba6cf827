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
)

var (
	ErrMissingAuthHeader = errors.New("Missing authorization header")
	ErrUnauthorized      = errors.New("Unauthorized")
	ErrNotAnArtist       = errors.New("Only artists can manage content")
	ErrServerError       = errors.New("Internal server error")
	ErrInvalidRequest    = errors.New("Invalid request")
)

// All bodies are JSON: mutations answer {"success": true, ...} and failures
// answer {"error": "message"} with a matching status code. Ownership
// failures deliberately do not reveal whether the target exists.

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, fields map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func authErr(w http.ResponseWriter, err error) {
	writeErr(w, http.StatusUnauthorized, err)
}

func forbiddenErr(w http.ResponseWriter, err error) {
	writeErr(w, http.StatusForbidden, err)
}

func badRequestErr(w http.ResponseWriter, err error) {
	writeErr(w, http.StatusBadRequest, err)
}

func notFoundErr(w http.ResponseWriter, err error) {
	writeErr(w, http.StatusNotFound, err)
}

func serverErr(w http.ResponseWriter, err error) {
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrServerError)
	}
}
