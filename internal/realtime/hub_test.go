package realtime

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/wishwell/api/internal/domain"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	feed, cancel := hub.Subscribe("emma-birthday")
	defer cancel()
	other, cancelOther := hub.Subscribe("other-list")
	defer cancelOther()

	hub.Broadcast("emma-birthday", domain.PublicWishlist{Slug: "emma-birthday", Title: "Emma"})

	select {
	case payload := <-feed:
		var snapshot domain.PublicWishlist
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if snapshot.Slug != "emma-birthday" || snapshot.Title != "Emma" {
			t.Fatalf("unexpected snapshot %+v", snapshot)
		}
	default:
		t.Fatal("expected a buffered snapshot")
	}

	select {
	case payload := <-other:
		t.Fatalf("unexpected delivery to another slug: %s", payload)
	default:
	}
}

func TestHubCancel(t *testing.T) {
	hub := NewHub(testLogger())

	feed, cancel := hub.Subscribe("slug")
	if got := hub.Subscribers("slug"); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	cancel()
	cancel() // safe to call twice

	if got := hub.Subscribers("slug"); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
	if _, ok := <-feed; ok {
		t.Fatal("expected feed to be closed")
	}

	// Delivery after cancel must not panic or block.
	hub.Deliver("slug", []byte(`{}`))
}

func TestHubDropsWhenSubscriberLags(t *testing.T) {
	hub := NewHub(testLogger())

	feed, cancel := hub.Subscribe("slug")
	defer cancel()

	for i := 0; i < subscriberBuffer+4; i++ {
		hub.Deliver("slug", []byte(`{}`))
	}

	if got := len(feed); got != subscriberBuffer {
		t.Fatalf("expected %d buffered snapshots, got %d", subscriberBuffer, got)
	}
}
