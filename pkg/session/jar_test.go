package session

import (
	"net/http"
	"net/url"
	"testing"
)

func TestRecordingJar_Header(t *testing.T) {
	jar, err := newRecordingJar()
	if err != nil {
		t.Fatal(err)
	}

	signIn, _ := url.Parse("https://www.amazon.com/ap/signin?openid.return_to=x")
	player, _ := url.Parse("https://www.amazon.com/gp/dmusic/mp3/player")

	jar.SetCookies(signIn, []*http.Cookie{
		{Name: "session-id", Value: "1", Path: "/"},
		{Name: "ubid-main", Value: "2", Path: "/"},
	})
	jar.SetCookies(player, []*http.Cookie{{Name: "at-main", Value: "3", Path: "/"}})
	jar.SetCookies(signIn, []*http.Cookie{{Name: "session-id", Value: "4", Path: "/"}})

	got := jar.Header()
	want := "session-id=4; ubid-main=2; at-main=3"
	if got != want {
		t.Errorf("Header() = %q, want %q", got, want)
	}
	if len(jar.urls) != 2 {
		t.Errorf("recorded %d urls, want 2 (query is ignored)", len(jar.urls))
	}
}

func TestRecordingJar_Empty(t *testing.T) {
	jar, err := newRecordingJar()
	if err != nil {
		t.Fatal(err)
	}
	if got := jar.Header(); got != "" {
		t.Errorf("Header() = %q, want empty", got)
	}
}
