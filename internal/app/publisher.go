package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wishwell/api/internal/domain"
)

// Publisher pushes a fresh public snapshot to every viewer of a slug.
// Publishing is best-effort: a missed push self-heals on the next snapshot.
type Publisher interface {
	PublishSnapshot(slug string)
}

// ProjectionReader loads the public projection used for snapshots.
type ProjectionReader interface {
	PublicProjection(ctx context.Context, slug string) (domain.PublicWishlist, error)
}

// Broadcaster delivers one snapshot to all subscribers of a slug.
type Broadcaster interface {
	Broadcast(slug string, snapshot domain.PublicWishlist)
}

const publishTimeout = 5 * time.Second

// SnapshotPublisher reloads the projection after a commit and hands it to
// the broadcaster off the request path, so fan-out never delays a response.
type SnapshotPublisher struct {
	proj ProjectionReader
	bc   Broadcaster
	log  *logrus.Logger
}

func NewSnapshotPublisher(proj ProjectionReader, bc Broadcaster, log *logrus.Logger) *SnapshotPublisher {
	return &SnapshotPublisher{proj: proj, bc: bc, log: log}
}

func (p *SnapshotPublisher) PublishSnapshot(slug string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		snapshot, err := p.proj.PublicProjection(ctx, slug)
		if err != nil {
			// The wishlist may be gone by the time we reload; nothing to push.
			if !errors.Is(err, domain.ErrNotFound) {
				p.log.WithError(err).WithField("slug", slug).Warn("snapshot publish skipped")
			}
			return
		}
		p.bc.Broadcast(slug, snapshot)
	}()
}

// NopPublisher discards snapshots; used when realtime is disabled and in tests.
type NopPublisher struct{}

func (NopPublisher) PublishSnapshot(string) {}
