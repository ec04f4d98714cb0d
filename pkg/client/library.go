package client

import (
	"context"
	"iter"

	"github.com/Sternrassler/cloudplaya/pkg/criteria"
	"github.com/Sternrassler/cloudplaya/pkg/library"
	"github.com/Sternrassler/cloudplaya/pkg/pagination"
)

// SearchOptions narrows a typed library search.
type SearchOptions struct {
	// Search is ANDed with the record type's base predicates.
	Search []criteria.Criterion

	// Sort replaces the record type's default order when non-empty.
	Sort []criteria.Sort
}

func (o SearchOptions) sort(def []criteria.Sort) []criteria.Sort {
	if len(o.Sort) == 0 {
		return def
	}
	return o.Sort
}

// Songs lazily yields every available audio track matching opts.
func (c *Client) Songs(ctx context.Context, opts SearchOptions) iter.Seq2[library.Song, error] {
	it := c.SearchLibrary(SearchRequest{
		ReturnType: library.ReturnTracks,
		Search:     criteria.Join(library.SongSearch(), opts.Search...),
		Sort:       opts.sort(library.DefaultSongSort()),
		Columns:    library.SongColumns(),
	})
	return pagination.Map(it.All(ctx), library.NewSong)
}

// Albums lazily yields every available album matching opts.
func (c *Client) Albums(ctx context.Context, opts SearchOptions) iter.Seq2[library.Album, error] {
	it := c.SearchLibrary(SearchRequest{
		ReturnType: library.ReturnAlbums,
		Search:     criteria.Join(library.AlbumSearch(), opts.Search...),
		Sort:       opts.sort(library.DefaultAlbumSort()),
		Columns:    library.AlbumColumns(),
	})
	return pagination.Map(it.All(ctx), library.NewAlbum)
}

// Artists lazily yields every artist matching opts.
func (c *Client) Artists(ctx context.Context, opts SearchOptions) iter.Seq2[library.Artist, error] {
	it := c.SearchLibrary(SearchRequest{
		ReturnType: library.ReturnArtists,
		Search:     criteria.Join(library.ArtistSearch(), opts.Search...),
		Sort:       opts.sort(library.DefaultArtistSort()),
		Columns:    library.ArtistColumns(),
	})
	return pagination.Map(it.All(ctx), library.NewArtist)
}

// Album looks up one album by exact artist and album name. When several
// albums match, the first is returned and a warning is logged.
func (c *Client) Album(ctx context.Context, artistName, albumName string) (library.Album, error) {
	var matches []library.Album
	for album, err := range c.Albums(ctx, SearchOptions{Search: []criteria.Criterion{
		criteria.Where("artistName", criteria.Equals, artistName),
		criteria.Where("albumName", criteria.Equals, albumName),
	}}) {
		if err != nil {
			return library.Album{}, err
		}
		matches = append(matches, album)
	}

	if len(matches) == 0 {
		return library.Album{}, ErrNotFound
	}
	if len(matches) > 1 {
		c.logger.Warn().
			Str("artist", artistName).
			Str("album", albumName).
			Int("matches", len(matches)).
			Msg("Album lookup matched several albums, returning the first")
	}
	return matches[0], nil
}
