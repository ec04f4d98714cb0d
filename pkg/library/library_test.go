package library

import (
	"testing"
	"time"

	"github.com/Sternrassler/cloudplaya/pkg/payload"
)

func TestNewSong(t *testing.T) {
	item := payload.Object{
		"objectId":   "o1",
		"title":      "Song",
		"artistName": "Artist",
		"albumName":  "Album",
		"trackNum":   "3",
		"discNum":    float64(2),
		"duration":   "215",
	}

	song := NewSong(item)

	if song.ObjectID != "o1" || song.Title != "Song" || song.ArtistName != "Artist" || song.AlbumName != "Album" {
		t.Errorf("NewSong() = %+v", song)
	}
	if song.TrackNum != 3 || song.DiscNum != 2 {
		t.Errorf("TrackNum = %d, DiscNum = %d", song.TrackNum, song.DiscNum)
	}
	if song.Duration != 215*time.Second {
		t.Errorf("Duration = %v", song.Duration)
	}
	if song.Raw["objectId"] != "o1" {
		t.Error("Raw not kept")
	}
}

func TestNewAlbum_LenientNumbers(t *testing.T) {
	tests := []struct {
		value any
		want  int
	}{
		{"12", 12},
		{float64(7), 7},
		{"n/a", 0},
		{nil, 0},
		{true, 0},
	}

	for _, tt := range tests {
		album := NewAlbum(payload.Object{"numTracks": tt.value})
		if album.NumTracks != tt.want {
			t.Errorf("numTracks %v -> %d, want %d", tt.value, album.NumTracks, tt.want)
		}
	}
}

func TestNewArtist(t *testing.T) {
	artist := NewArtist(payload.Object{"artistName": "A", "sortArtistName": "a"})
	if artist.ArtistName != "A" || artist.SortArtistName != "a" || artist.ObjectID != "" {
		t.Errorf("NewArtist() = %+v", artist)
	}
}

func TestDefaultsAreFresh(t *testing.T) {
	first := SongSearch()
	first[0].Value = "mutated"

	if SongSearch()[0].Value != "" {
		t.Error("SongSearch() returned shared storage")
	}

	sort := DefaultSongSort()
	sort[0].Column = "x"
	if DefaultSongSort()[0].Column != "sortTitle" {
		t.Error("DefaultSongSort() returned shared storage")
	}
}

func TestTrackListSearch(t *testing.T) {
	search := TrackListSearch(Album{SortAlbumArtistName: "beatles", SortAlbumName: "abbey road"})

	if len(search) != 4 {
		t.Fatalf("len = %d, want 4", len(search))
	}
	if search[2].Value != "beatles" || search[3].Value != "abbey road" {
		t.Errorf("search = %+v", search)
	}
	if !search[1].Comparison.Unary() {
		t.Error("trackStatus should be IS_NULL")
	}
}
