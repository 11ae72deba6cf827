package search

import (
	"testing"

	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/config"
)

func testSearch(t *testing.T) *Search {
	t.Helper()
	var cfg config.Config
	cfg.Search.BleveDir = t.TempDir()
	s := NewSearch(&cfg)
	err := s.Open("test")
	if err != nil {
		t.Fatalf("Open %s\n", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestIndexAndSearch(t *testing.T) {
	s := testSearch(t)

	artist := catalog.Artist{Name: "Night Circuit", Genres: "synthwave,electronic"}
	artist.ID = 7
	s.IndexArtist(artist)

	album := catalog.Album{Title: "Neon Roads", Genres: "synthwave", Year: "2024"}
	album.ID = 3
	s.IndexAlbum(album, artist)

	song := catalog.Song{Title: "Midnight Drive", Lyrics: "headlights on the highway"}
	song.ID = 11
	s.IndexSong(song, artist)

	hits, err := s.Search(`+genres:synthwave`, 10)
	if err != nil {
		t.Fatalf("Search %s\n", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits, got %d\n", len(hits))
	}

	hits, err = s.Search(`highway`, 10)
	if err != nil {
		t.Fatalf("Search %s\n", err)
	}
	if len(hits) != 1 || hits[0].Kind != KindSong || hits[0].ID != 11 {
		t.Errorf("unexpected hits %v\n", hits)
	}
}

func TestDelete(t *testing.T) {
	s := testSearch(t)

	artist := catalog.Artist{Name: "Gone Soon"}
	artist.ID = 1
	s.IndexArtist(artist)

	hits, _ := s.Search(`gone`, 10)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d\n", len(hits))
	}

	s.Delete("artist/1")
	hits, _ = s.Search(`gone`, 10)
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d\n", len(hits))
	}
}

func TestParseKey(t *testing.T) {
	h, err := parseKey("song/42")
	if err != nil || h.Kind != KindSong || h.ID != 42 {
		t.Errorf("parseKey %v %s\n", h, err)
	}
	if _, err := parseKey("nope"); err == nil {
		t.Errorf("expected error")
	}
}
