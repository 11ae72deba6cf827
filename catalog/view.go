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

// An AlbumWithSongs pairs an album with its songs in track order.
type AlbumWithSongs struct {
	Album
	Songs []Song `json:"songs"`
}

// ArtistContent is the artist dashboard view: the artist, each album with
// its songs, and standalone singles.
type ArtistContent struct {
	Artist  Artist           `json:"artist"`
	Albums  []AlbumWithSongs `json:"albums"`
	Singles []Song           `json:"singles"`
}

// Content assembles the full dashboard view for an artist.
func (c *Catalog) Content(artistID uint) (ArtistContent, error) {
	artist, err := c.findArtist(artistID)
	if err != nil {
		return ArtistContent{}, err
	}
	content := ArtistContent{Artist: artist, Albums: []AlbumWithSongs{}}
	for _, album := range c.artistAlbums(artistID) {
		content.Albums = append(content.Albums, AlbumWithSongs{
			Album: album,
			Songs: c.albumSongs(album.ID),
		})
	}
	content.Singles = c.artistSingles(artistID)
	return content, nil
}
