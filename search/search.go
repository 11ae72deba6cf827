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

// Package search maintains a bleve full-text index over the catalog. Index
// keys are "kind/id" so hits resolve directly back to catalog rows.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/config"
)

const (
	KindArtist = "artist"
	KindAlbum  = "album"
	KindSong   = "song"
)

type FieldMap map[string]interface{}
type IndexMap map[string]FieldMap

// A Hit is one search result, resolved from an index key.
type Hit struct {
	Kind string `json:"kind"`
	ID   uint   `json:"id"`
}

type Search struct {
	config *config.Config
	index  bleve.Index
}

func NewSearch(config *config.Config) *Search {
	return &Search{config: config}
}

func (s *Search) Open(name string) error {
	mapping := bleve.NewIndexMapping()
	path := fmt.Sprintf("%s/%s.bleve", s.config.Search.BleveDir, name)
	index, err := bleve.New(path, mapping)
	if err == bleve.ErrorIndexPathExists {
		index, err = bleve.Open(path)
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	s.index = index
	return nil
}

func (s *Search) Close() {
	if s.index != nil {
		s.index.Close()
	}
}

// see https://blevesearch.com/docs/Query-String-Query/
func (s *Search) Search(q string, limit int) ([]Hit, error) {
	query := bleve.NewQueryStringQuery(q)
	searchRequest := bleve.NewSearchRequest(query)
	searchRequest.Size = limit
	searchResult, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, err
	}
	var hits []Hit
	for _, hit := range searchResult.Hits {
		h, err := parseKey(hit.ID)
		if err != nil {
			continue
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func (s *Search) Index(m IndexMap) {
	for k, v := range m {
		s.index.Index(k, v)
	}
}

func (s *Search) Delete(key string) {
	s.index.Delete(key)
}

func key(kind string, id uint) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

func parseKey(k string) (Hit, error) {
	parts := strings.SplitN(k, "/", 2)
	if len(parts) != 2 {
		return Hit{}, fmt.Errorf("malformed key %s", k)
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Hit{}, err
	}
	return Hit{Kind: parts[0], ID: uint(id)}, nil
}

// IndexArtist adds or updates the artist's index entry.
func (s *Search) IndexArtist(a catalog.Artist) {
	s.Index(IndexMap{
		key(KindArtist, a.ID): {
			"kind":   KindArtist,
			"name":   a.Name,
			"bio":    a.Bio,
			"genres": a.Genres,
		},
	})
}

// IndexAlbum adds or updates the album's index entry.
func (s *Search) IndexAlbum(a catalog.Album, artist catalog.Artist) {
	s.Index(IndexMap{
		key(KindAlbum, a.ID): {
			"kind":        KindAlbum,
			"title":       a.Title,
			"artist":      artist.Name,
			"description": a.Description,
			"genres":      a.Genres,
			"year":        a.Year,
		},
	})
}

// IndexSong adds or updates the song's index entry.
func (s *Search) IndexSong(song catalog.Song, artist catalog.Artist) {
	s.Index(IndexMap{
		key(KindSong, song.ID): {
			"kind":   KindSong,
			"title":  song.Title,
			"artist": artist.Name,
			"lyrics": song.Lyrics,
		},
	})
}

// IndexCatalog rebuilds index entries for everything in the catalog. Used by
// the scheduled sync job; incremental updates happen as content changes.
func (s *Search) IndexCatalog(c *catalog.Catalog) error {
	artists, err := c.Artists()
	if err != nil {
		return err
	}
	for _, artist := range artists {
		s.IndexArtist(artist)
		albums, _ := c.ArtistAlbums(artist.ID)
		for _, album := range albums {
			s.IndexAlbum(album, artist)
			songs, _ := c.AlbumSongs(album.ID)
			for _, song := range songs {
				s.IndexSong(song, artist)
			}
		}
		singles, _ := c.ArtistSingles(artist.ID)
		for _, song := range singles {
			s.IndexSong(song, artist)
		}
	}
	return nil
}
