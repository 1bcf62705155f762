package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wishwell/api/internal/app"
	"github.com/wishwell/api/internal/clock"
	"github.com/wishwell/api/internal/domain"
	"github.com/wishwell/api/internal/testutil"
	"github.com/wishwell/api/internal/token"
)

func TestReservationRepository(t *testing.T) {
	ctx, pool := setupDB(t)
	repo := NewReservationRepository(pool)

	t.Run("item lookup through the slug", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		wishlistID := testutil.InsertWishlist(t, ctx, pool, "List", "list", "secret-a")
		itemID := testutil.InsertItem(t, ctx, pool, wishlistID, "Headphones", int64ptr(19900))

		item, err := repo.ItemForUpdate(ctx, "list", itemID)
		if err != nil {
			t.Fatalf("item for update: %v", err)
		}
		if item.ID != itemID || item.Title != "Headphones" {
			t.Errorf("unexpected item %+v", item)
		}

		if _, err := repo.ItemForUpdate(ctx, "wrong-slug", itemID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for a foreign slug, got %v", err)
		}
		if _, err := repo.ItemForUpdate(ctx, "list", "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for a malformed id, got %v", err)
		}
	})

	t.Run("second insert for the same item loses", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		wishlistID := testutil.InsertWishlist(t, ctx, pool, "List", "list", "secret-b")
		itemID := testutil.InsertItem(t, ctx, pool, wishlistID, "Item", nil)

		testutil.InsertReservation(t, ctx, pool, domain.Reservation{
			ItemID: itemID, ReserverName: "Alice", ReserverSecret: "rsv-1",
		})

		err := repo.CreateReservation(ctx, domain.Reservation{
			ItemID: itemID, ReserverName: "Bob", ReserverSecret: "rsv-2",
		})
		if !errors.Is(err, domain.ErrAlreadyReserved) {
			t.Fatalf("expected ErrAlreadyReserved, got %v", err)
		}
	})

	t.Run("view joins the item and wishlist", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		wishlistID := testutil.InsertWishlist(t, ctx, pool, "List", "emma-birthday", "secret-c")
		itemID := testutil.InsertItem(t, ctx, pool, wishlistID, "Headphones", nil)
		testutil.InsertReservation(t, ctx, pool, domain.Reservation{
			ItemID: itemID, ReserverName: "Alice", ReserverSecret: "rsv-3",
		})

		view, err := repo.ReservationBySecret(ctx, "rsv-3")
		if err != nil {
			t.Fatalf("by secret: %v", err)
		}
		if view.ItemTitle != "Headphones" || view.WishlistSlug != "emma-birthday" || view.ReserverName != "Alice" {
			t.Errorf("unexpected view %+v", view)
		}

		if err := repo.DeleteReservation(ctx, view.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.ReservationBySecret(ctx, "rsv-3"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected secret to stop resolving, got %v", err)
		}
	})
}

// TestConcurrentReservers races many reservers for one item; exactly one may
// win and the item must stay reserved by that winner.
func TestConcurrentReservers(t *testing.T) {
	ctx, pool := setupDB(t)

	wishlistID := testutil.InsertWishlist(t, ctx, pool, "List", "race-list", "secret-race")
	itemID := testutil.InsertItem(t, ctx, pool, wishlistID, "Solo item", nil)

	repo := NewReservationRepository(pool)
	svc := app.NewReservationService(repo, token.NewSecret, clock.NewSystem(), app.NopPublisher{},
		app.WithReservationRetry(IsTransient))

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), app.ReserveInput{
				Slug:         "race-list",
				ItemID:       itemID,
				ReserverName: "Racer",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrAlreadyReserved):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
	if conflicts != racers-1 {
		t.Errorf("expected %d conflicts, got %d", racers-1, conflicts)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE item_id = $1`, itemID).Scan(&count); err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 reservation row, got %d", count)
	}
}

// TestReserveCancelReserve walks the full cycle: reserve, cancel with the
// secret, reserve again by someone else.
func TestReserveCancelReserve(t *testing.T) {
	ctx, pool := setupDB(t)

	wishlistID := testutil.InsertWishlist(t, ctx, pool, "List", "cycle-list", "secret-cycle")
	itemID := testutil.InsertItem(t, ctx, pool, wishlistID, "Item", nil)

	svc := app.NewReservationService(NewReservationRepository(pool), token.NewSecret, clock.NewSystem(), app.NopPublisher{})

	first, err := svc.Reserve(ctx, app.ReserveInput{Slug: "cycle-list", ItemID: itemID, ReserverName: "Alice"})
	if err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	if _, err := svc.Reserve(ctx, app.ReserveInput{Slug: "cycle-list", ItemID: itemID, ReserverName: "Bob"}); !errors.Is(err, domain.ErrAlreadyReserved) {
		t.Fatalf("expected ErrAlreadyReserved, got %v", err)
	}

	if err := svc.Cancel(ctx, first.ReserverSecret); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.Cancel(ctx, first.ReserverSecret); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected second cancel to miss, got %v", err)
	}

	if _, err := svc.Reserve(ctx, app.ReserveInput{Slug: "cycle-list", ItemID: itemID, ReserverName: "Bob"}); err != nil {
		t.Fatalf("reserve after cancel: %v", err)
	}
}
