// Package library holds the record types returned by library searches and
// the default predicates used to find them.
package library

import (
	"strconv"
	"time"

	"github.com/Sternrassler/cloudplaya/pkg/criteria"
	"github.com/Sternrassler/cloudplaya/pkg/payload"
)

// Search return types.
const (
	ReturnTracks  = "TRACKS"
	ReturnAlbums  = "ALBUMS"
	ReturnArtists = "ARTISTS"
)

// Song is one track in the library.
type Song struct {
	ObjectID            string
	Title               string
	ArtistName          string
	AlbumName           string
	AlbumArtistName     string
	SortAlbumArtistName string
	SortAlbumName       string
	TrackNum            int
	DiscNum             int
	Duration            time.Duration
	Raw                 payload.Object
}

// Album is one album in the library.
type Album struct {
	ObjectID            string
	AlbumName           string
	ArtistName          string
	AlbumArtistName     string
	SortAlbumArtistName string
	SortAlbumName       string
	PrimaryGenre        string
	CoverURL            string
	NumTracks           int
	Raw                 payload.Object
}

// Artist is one artist in the library.
type Artist struct {
	ObjectID       string
	ArtistName     string
	SortArtistName string
	CoverURL       string
	Raw            payload.Object
}

// SongColumns returns the columns requested for songs.
func SongColumns() []string {
	return []string{
		"albumArtistName",
		"albumName",
		"artistName",
		"assetType",
		"duration",
		"objectId",
		"sortAlbumArtistName",
		"sortAlbumName",
		"sortArtistName",
		"title",
		"status",
		"trackStatus",
		"extension",
		"trackNum",
		"discNum",
	}
}

// AlbumColumns returns the columns requested for albums.
func AlbumColumns() []string {
	return []string{
		"albumArtistName",
		"albumName",
		"artistName",
		"objectId",
		"primaryGenre",
		"sortAlbumArtistName",
		"sortAlbumName",
		"sortArtistName",
		"albumCoverImageMedium",
		"numTracks",
	}
}

// ArtistColumns returns the columns requested for artists.
func ArtistColumns() []string {
	return []string{
		"artistName",
		"objectId",
		"sortArtistName",
		"albumCoverImageMedium",
	}
}

// SongSearch returns the base predicates of every song search. The keywords
// slot is empty; callers add their own predicates after it.
func SongSearch() []criteria.Criterion {
	return []criteria.Criterion{
		criteria.Where("keywords", criteria.Like, ""),
		criteria.Where("assetType", criteria.Equals, "AUDIO"),
		criteria.Where("status", criteria.Equals, "AVAILABLE"),
	}
}

// AlbumSearch returns the base predicates of every album search.
func AlbumSearch() []criteria.Criterion {
	return []criteria.Criterion{
		criteria.Where("status", criteria.Equals, "AVAILABLE"),
	}
}

// ArtistSearch returns the base predicates of every artist search.
func ArtistSearch() []criteria.Criterion {
	return []criteria.Criterion{
		criteria.Where("status", criteria.Equals, "AVAILABLE"),
		criteria.Null("trackStatus"),
	}
}

// TrackListSearch returns the predicates selecting the tracks of album.
func TrackListSearch(album Album) []criteria.Criterion {
	return []criteria.Criterion{
		criteria.Where("status", criteria.Equals, "AVAILABLE"),
		criteria.Null("trackStatus"),
		criteria.Where("sortAlbumArtistName", criteria.Equals, album.SortAlbumArtistName),
		criteria.Where("sortAlbumName", criteria.Equals, album.SortAlbumName),
	}
}

// DefaultSongSort orders songs by title.
func DefaultSongSort() []criteria.Sort {
	return []criteria.Sort{{Column: "sortTitle", Direction: criteria.Asc}}
}

// DefaultAlbumSort orders albums by name.
func DefaultAlbumSort() []criteria.Sort {
	return []criteria.Sort{{Column: "sortAlbumName", Direction: criteria.Asc}}
}

// DefaultArtistSort orders artists by name.
func DefaultArtistSort() []criteria.Sort {
	return []criteria.Sort{{Column: "sortArtistName", Direction: criteria.Asc}}
}

// TrackListSort orders an album's tracks by disc, then track number.
func TrackListSort() []criteria.Sort {
	return []criteria.Sort{
		{Column: "discNum", Direction: criteria.Asc},
		{Column: "trackNum", Direction: criteria.Asc},
	}
}

// NewSong builds a Song from a raw search item.
func NewSong(item payload.Object) Song {
	return Song{
		ObjectID:            payload.String(item, "objectId"),
		Title:               payload.String(item, "title"),
		ArtistName:          payload.String(item, "artistName"),
		AlbumName:           payload.String(item, "albumName"),
		AlbumArtistName:     payload.String(item, "albumArtistName"),
		SortAlbumArtistName: payload.String(item, "sortAlbumArtistName"),
		SortAlbumName:       payload.String(item, "sortAlbumName"),
		TrackNum:            number(item, "trackNum"),
		DiscNum:             number(item, "discNum"),
		Duration:            time.Duration(number(item, "duration")) * time.Second,
		Raw:                 item,
	}
}

// NewAlbum builds an Album from a raw search item.
func NewAlbum(item payload.Object) Album {
	return Album{
		ObjectID:            payload.String(item, "objectId"),
		AlbumName:           payload.String(item, "albumName"),
		ArtistName:          payload.String(item, "artistName"),
		AlbumArtistName:     payload.String(item, "albumArtistName"),
		SortAlbumArtistName: payload.String(item, "sortAlbumArtistName"),
		SortAlbumName:       payload.String(item, "sortAlbumName"),
		PrimaryGenre:        payload.String(item, "primaryGenre"),
		CoverURL:            payload.String(item, "albumCoverImageMedium"),
		NumTracks:           number(item, "numTracks"),
		Raw:                 item,
	}
}

// NewArtist builds an Artist from a raw search item.
func NewArtist(item payload.Object) Artist {
	return Artist{
		ObjectID:       payload.String(item, "objectId"),
		ArtistName:     payload.String(item, "artistName"),
		SortArtistName: payload.String(item, "sortArtistName"),
		CoverURL:       payload.String(item, "albumCoverImageMedium"),
		Raw:            item,
	}
}

// number reads an integer column. The remote sends numbers as strings;
// malformed or missing values read as zero.
func number(item payload.Object, key string) int {
	switch v := item[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
