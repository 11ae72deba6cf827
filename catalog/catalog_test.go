package catalog

import (
	"path/filepath"
	"testing"

	"github.com/soundcrew/soundcrew/config"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	var cfg config.Config
	cfg.Catalog.DB.Driver = "sqlite3"
	cfg.Catalog.DB.Source = filepath.Join(t.TempDir(), "catalog.db")
	c := NewCatalog(&cfg)
	err := c.Open()
	if err != nil {
		t.Fatalf("Open %s\n", err)
	}
	t.Cleanup(c.Close)
	return c
}

func testArtist(t *testing.T, c *Catalog, name string) Artist {
	t.Helper()
	a := Artist{Name: name, Slug: name}
	err := c.CreateArtist(&a)
	if err != nil {
		t.Fatalf("CreateArtist %s\n", err)
	}
	return a
}

func testAlbum(t *testing.T, c *Catalog, artist Artist, title string) Album {
	t.Helper()
	a := Album{ArtistID: artist.ID, Title: title, AlbumType: TypeAlbum, Year: "2024"}
	err := c.CreateAlbum(&a)
	if err != nil {
		t.Fatalf("CreateAlbum %s\n", err)
	}
	return a
}

func testSong(t *testing.T, c *Catalog, artist Artist, album *Album, title string, track int) Song {
	t.Helper()
	s := Song{ArtistID: artist.ID, Title: title, TrackNumber: track}
	if album != nil {
		s.AlbumID = &album.ID
	}
	err := c.CreateSong(&s)
	if err != nil {
		t.Fatalf("CreateSong %s\n", err)
	}
	return s
}

func TestArtistLookup(t *testing.T) {
	c := testCatalog(t)
	a := testArtist(t, c, "the-vines")

	got, err := c.FindArtist(a.ID)
	if err != nil || got.Name != "the-vines" {
		t.Errorf("FindArtist %v %s\n", got, err)
	}

	got, err = c.FindArtistBySlug("the-vines")
	if err != nil || got.ID != a.ID {
		t.Errorf("FindArtistBySlug %v %s\n", got, err)
	}

	_, err = c.FindArtist(a.ID + 99)
	if err != ErrArtistNotFound {
		t.Errorf("expected ErrArtistNotFound, got %s\n", err)
	}
}

func TestArtistFor(t *testing.T) {
	c := testCatalog(t)
	a := testArtist(t, c, "dj-shade")

	_, err := c.ArtistFor("fan@soundcrew.test")
	if err != ErrProfileNotFound {
		t.Errorf("expected ErrProfileNotFound, got %s\n", err)
	}

	// a plain listener profile is not an artist
	_, err = c.ProfileFor("fan@soundcrew.test")
	if err != nil {
		t.Fatalf("ProfileFor %s\n", err)
	}
	_, err = c.ArtistFor("fan@soundcrew.test")
	if err != ErrNotAnArtist {
		t.Errorf("expected ErrNotAnArtist, got %s\n", err)
	}

	err = c.LinkArtist("dj@soundcrew.test", a.ID)
	if err != nil {
		t.Fatalf("LinkArtist %s\n", err)
	}
	got, err := c.ArtistFor("dj@soundcrew.test")
	if err != nil || got.ID != a.ID {
		t.Errorf("ArtistFor %v %s\n", got, err)
	}
}

func TestAlbumTypes(t *testing.T) {
	c := testCatalog(t)
	a := testArtist(t, c, "side-a")

	album := Album{ArtistID: a.ID, Title: "Bad", AlbumType: "bootleg"}
	if err := c.CreateAlbum(&album); err != ErrInvalidType {
		t.Errorf("expected ErrInvalidType, got %s\n", err)
	}

	album = Album{ArtistID: a.ID, Title: "Untyped"}
	if err := c.CreateAlbum(&album); err != nil {
		t.Fatalf("CreateAlbum %s\n", err)
	}
	if album.AlbumType != TypeAlbum {
		t.Errorf("expected default type, got %s\n", album.AlbumType)
	}
}

func TestTrackCounts(t *testing.T) {
	c := testCatalog(t)
	artist := testArtist(t, c, "counter")
	album := testAlbum(t, c, artist, "Numbers")

	testSong(t, c, artist, &album, "One", 1)
	testSong(t, c, artist, &album, "Two", 2)

	got, _ := c.FindAlbum(album.ID)
	if got.Tracks != 2 {
		t.Errorf("expected 2 tracks, got %d\n", got.Tracks)
	}

	// a single does not touch any album count
	s := testSong(t, c, artist, nil, "Loosie", 0)
	if !s.IsSingle() {
		t.Errorf("expected single")
	}
	got, _ = c.FindAlbum(album.ID)
	if got.Tracks != 2 {
		t.Errorf("expected 2 tracks, got %d\n", got.Tracks)
	}
}

func TestReorderSongs(t *testing.T) {
	c := testCatalog(t)
	artist := testArtist(t, c, "shuffler")
	album := testAlbum(t, c, artist, "Resequenced")

	s1 := testSong(t, c, artist, &album, "A", 1)
	s2 := testSong(t, c, artist, &album, "B", 2)
	s3 := testSong(t, c, artist, &album, "C", 3)

	songs, err := c.ReorderSongs(album.ID, []SongOrder{
		{ID: s1.ID, TrackNumber: 3},
		{ID: s2.ID, TrackNumber: 1},
		{ID: s3.ID, TrackNumber: 2},
	})
	if err != nil {
		t.Fatalf("ReorderSongs %s\n", err)
	}
	want := []string{"B", "C", "A"}
	for i, title := range want {
		if songs[i].Title != title {
			t.Errorf("position %d: expected %s, got %s\n", i, title, songs[i].Title)
		}
	}
}

func TestReorderSongsRollback(t *testing.T) {
	c := testCatalog(t)
	artist := testArtist(t, c, "honest")
	album := testAlbum(t, c, artist, "Mine")
	other := testAlbum(t, c, artist, "Theirs")

	mine := testSong(t, c, artist, &album, "Mine", 1)
	theirs := testSong(t, c, artist, &other, "Theirs", 1)

	// reference to a song outside the album fails and rolls back the batch
	_, err := c.ReorderSongs(album.ID, []SongOrder{
		{ID: mine.ID, TrackNumber: 5},
		{ID: theirs.ID, TrackNumber: 6},
	})
	if err != ErrSongMismatch {
		t.Fatalf("expected ErrSongMismatch, got %s\n", err)
	}
	got, _ := c.FindSong(mine.ID)
	if got.TrackNumber != 1 {
		t.Errorf("rollback failed, track is %d\n", got.TrackNumber)
	}
	got, _ = c.FindSong(theirs.ID)
	if got.TrackNumber != 1 {
		t.Errorf("other album touched, track is %d\n", got.TrackNumber)
	}
}

func TestContent(t *testing.T) {
	c := testCatalog(t)
	artist := testArtist(t, c, "complete")
	album := testAlbum(t, c, artist, "Full Length")
	testSong(t, c, artist, &album, "Opener", 1)
	testSong(t, c, artist, &album, "Closer", 2)
	testSong(t, c, artist, nil, "Standalone", 0)

	content, err := c.Content(artist.ID)
	if err != nil {
		t.Fatalf("Content %s\n", err)
	}
	if content.Artist.ID != artist.ID {
		t.Errorf("wrong artist %v\n", content.Artist)
	}
	if len(content.Albums) != 1 || len(content.Albums[0].Songs) != 2 {
		t.Errorf("unexpected albums %v\n", content.Albums)
	}
	if len(content.Singles) != 1 || content.Singles[0].Title != "Standalone" {
		t.Errorf("unexpected singles %v\n", content.Singles)
	}
}

func TestLikes(t *testing.T) {
	c := testCatalog(t)
	artist := testArtist(t, c, "liked")
	song := testSong(t, c, artist, nil, "Hit", 0)

	user := "fan@soundcrew.test"
	if err := c.LikeSong(user, song.ID); err != nil {
		t.Fatalf("LikeSong %s\n", err)
	}
	// liking twice is a no-op
	if err := c.LikeSong(user, song.ID); err != nil {
		t.Errorf("second like %s\n", err)
	}
	has, _ := c.HasLike(user, song.ID)
	if !has {
		t.Errorf("expected like")
	}

	c.UnlikeSong(user, song.ID)
	has, _ = c.HasLike(user, song.ID)
	if has {
		t.Errorf("expected no like")
	}

	if err := c.LikeSong(user, song.ID+99); err != ErrSongNotFound {
		t.Errorf("expected ErrSongNotFound, got %s\n", err)
	}
}

func TestPlaylists(t *testing.T) {
	c := testCatalog(t)
	artist := testArtist(t, c, "curated")
	s1 := testSong(t, c, artist, nil, "First", 0)
	s2 := testSong(t, c, artist, nil, "Second", 0)

	p := Playlist{UserName: "fan@soundcrew.test", Name: "road trip"}
	if err := c.CreatePlaylist(&p); err != nil {
		t.Fatalf("CreatePlaylist %s\n", err)
	}

	c.AddPlaylistSong(p.ID, s1.ID)
	c.AddPlaylistSong(p.ID, s2.ID)

	songs, err := c.PlaylistSongs(p.ID)
	if err != nil {
		t.Fatalf("PlaylistSongs %s\n", err)
	}
	if len(songs) != 2 || songs[0].Title != "First" || songs[1].Title != "Second" {
		t.Errorf("unexpected order %v\n", songs)
	}

	c.RemovePlaylistSong(p.ID, s1.ID)
	songs, _ = c.PlaylistSongs(p.ID)
	if len(songs) != 1 || songs[0].Title != "Second" {
		t.Errorf("unexpected songs %v\n", songs)
	}

	lists, _ := c.UserPlaylists("fan@soundcrew.test")
	if len(lists) != 1 || lists[0].Name != "road trip" {
		t.Errorf("unexpected playlists %v\n", lists)
	}
}

func TestFixTrackCounts(t *testing.T) {
	c := testCatalog(t)
	artist := testArtist(t, c, "drift")
	album := testAlbum(t, c, artist, "Drifted")
	testSong(t, c, artist, &album, "Only", 1)

	// force the count out of sync
	c.db.Model(&Album{}).Where("id = ?", album.ID).Update("tracks", 9)

	if err := c.FixTrackCounts(); err != nil {
		t.Fatalf("FixTrackCounts %s\n", err)
	}
	got, _ := c.FindAlbum(album.ID)
	if got.Tracks != 1 {
		t.Errorf("expected 1 track, got %d\n", got.Tracks)
	}
}
