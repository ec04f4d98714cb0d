//go:build integration

package integration

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/cloudplaya/internal/testutil"
	"github.com/Sternrassler/cloudplaya/pkg/client"
	"github.com/Sternrassler/cloudplaya/pkg/library"
	"github.com/Sternrassler/cloudplaya/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newConfig(mock *testutil.MockCirrus, store session.Store) client.Config {
	cfg := client.DefaultConfig()
	cfg.APIURL = mock.APIURL()
	cfg.PlayerURL = mock.PlayerURL()
	cfg.Timeout = 5 * time.Second
	cfg.Store = store
	return cfg
}

func TestFullSessionFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockCirrus()
	defer mock.Close()

	ctx := context.Background()
	store := session.NewRedisStore(redisClient, session.StoreKey{Account: "integration"}, time.Hour)

	// Login publishes the session to Redis
	leader, err := client.New(newConfig(mock, store))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := leader.Authenticate(ctx, "user@example.com", "secret"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	ttl, err := redisClient.TTL(ctx, session.StoreKey{Account: "integration"}.String()).Result()
	if err != nil || ttl <= 0 || ttl > time.Hour {
		t.Errorf("session TTL = %v (err %v), want (0, 1h]", ttl, err)
	}

	// A second client picks the session up without logging in
	worker, err := client.Open(ctx, newConfig(mock, store))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer worker.Close()

	creds, ok := worker.Credentials()
	if !ok || creds.CustomerID != testutil.CustomerID || creds.ADPToken != testutil.ADPToken {
		t.Fatalf("worker credentials = %+v", creds)
	}

	mock.SetSearchPages([]testutil.SearchPage{
		{Items: testutil.Items("p1", 50), NextToken: "t1"},
		{Items: testutil.Items("p2", 50), NextToken: "t2"},
		{Items: testutil.Items("p3", 7), NextToken: ""},
	})

	var songs []library.Song
	for song, err := range worker.Songs(ctx, client.SearchOptions{}) {
		if err != nil {
			t.Fatalf("Songs() error = %v", err)
		}
		songs = append(songs, song)
	}
	if len(songs) != 107 {
		t.Errorf("songs = %d, want 107", len(songs))
	}

	reqs := mock.Requests()
	if len(reqs) != 3 {
		t.Fatalf("requests = %d, want 3", len(reqs))
	}
	for _, r := range reqs {
		if r.Form.Get("customerInfo.customerId") != testutil.CustomerID {
			t.Errorf("customer id = %q", r.Form.Get("customerInfo.customerId"))
		}
		if r.Header.Get(client.HeaderADPToken) != testutil.ADPToken {
			t.Errorf("adp token header = %q", r.Header.Get(client.HeaderADPToken))
		}
		if r.Header.Get("Cookie") != creds.Cookies {
			t.Errorf("cookie header = %q, want %q", r.Header.Get("Cookie"), creds.Cookies)
		}
	}

	// Logout clears the shared session
	if err := worker.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, session.ErrNoCredentials) {
		t.Errorf("Load() after logout error = %v, want ErrNoCredentials", err)
	}
}

func TestRemoteRejectionMidSearch(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockCirrus()
	defer mock.Close()

	ctx := context.Background()
	store := session.NewRedisStore(redisClient, session.StoreKey{}, 0)

	c, err := client.New(newConfig(mock, store))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Authenticate(ctx, "user@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	mock.SetOperation(client.OpSearchLibrary, func(url.Values) (int, any) {
		if calls.Add(1) == 1 {
			return http.StatusOK, testutil.SearchLibraryBody(testutil.Items("a", 3), "t1")
		}
		return http.StatusUnauthorized, testutil.ErrorBody("Session expired", "InvalidSession")
	})

	it := c.SearchLibrary(client.SearchRequest{ReturnType: library.ReturnTracks})
	items, err := it.Collect(ctx)

	var remote *client.RemoteRequestError
	if !errors.As(err, &remote) {
		t.Fatalf("Collect() error = %v, want RemoteRequestError", err)
	}
	if remote.Message != "Session expired" || remote.Code != "InvalidSession" || remote.StatusCode != http.StatusUnauthorized {
		t.Errorf("remote = %+v", remote)
	}
	if len(items) != 3 {
		t.Errorf("items before rejection = %d, want 3", len(items))
	}
	if it.Next(ctx) || calls.Load() != 2 {
		t.Errorf("iterator continued after rejection (calls = %d)", calls.Load())
	}
}
