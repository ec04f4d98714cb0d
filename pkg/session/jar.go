package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// recordingJar is a cookie jar that remembers which URLs set cookies, so
// the whole jar can later be flattened into one Cookie header.
type recordingJar struct {
	jar *cookiejar.Jar

	mu   sync.Mutex
	urls []*url.URL
	seen map[string]bool
}

func newRecordingJar() (*recordingJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &recordingJar{jar: jar, seen: make(map[string]bool)}, nil
}

// SetCookies implements http.CookieJar.
func (j *recordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	origin := *u
	origin.RawQuery, origin.Fragment = "", ""
	if key := origin.String(); !j.seen[key] {
		j.seen[key] = true
		j.urls = append(j.urls, &origin)
	}
	j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (j *recordingJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// Header joins every live cookie as "name=value; name=value", first setter
// first. A cookie name seen on several URLs is emitted once.
func (j *recordingJar) Header() string {
	j.mu.Lock()
	urls := append([]*url.URL(nil), j.urls...)
	j.mu.Unlock()

	var parts []string
	names := make(map[string]bool)
	for _, u := range urls {
		for _, c := range j.jar.Cookies(u) {
			if names[c.Name] {
				continue
			}
			names[c.Name] = true
			parts = append(parts, c.Name+"="+c.Value)
		}
	}
	return strings.Join(parts, "; ")
}
