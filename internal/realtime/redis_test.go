package realtime

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wishwell/api/internal/domain"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis URL: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skipping Redis integration tests: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisBridge(t *testing.T) {
	client := newTestRedis(t)
	hub := NewHub(testLogger())
	bridge := NewRedisBridge(client, hub, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx) }()

	feed, unsubscribe := hub.Subscribe("bridge-test")
	defer unsubscribe()

	// The pattern subscription lands asynchronously; keep publishing until
	// the first snapshot echoes back through it.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var first domain.PublicWishlist
waitFirst:
	for {
		select {
		case payload := <-feed:
			if err := json.Unmarshal(payload, &first); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			break waitFirst
		case <-ticker.C:
			bridge.Broadcast("bridge-test", domain.PublicWishlist{Slug: "bridge-test", Title: "First"})
		case <-deadline:
			t.Fatal("timed out waiting for the first snapshot")
		}
	}
	if first.Slug != "bridge-test" {
		t.Fatalf("unexpected snapshot %+v", first)
	}
	ticker.Stop()

	// The feed must keep delivering on the same subscription; a single
	// snapshot is never the last one the bridge hands over.
	bridge.Broadcast("bridge-test", domain.PublicWishlist{Slug: "bridge-test", Title: "Second"})

	for {
		select {
		case payload := <-feed:
			var snapshot domain.PublicWishlist
			if err := json.Unmarshal(payload, &snapshot); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			if snapshot.Title == "Second" {
				cancel()
				select {
				case err := <-done:
					if err != nil {
						t.Fatalf("run returned %v", err)
					}
				case <-time.After(2 * time.Second):
					t.Fatal("run did not stop on cancellation")
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for the second snapshot")
		}
	}
}
