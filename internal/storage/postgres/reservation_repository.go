package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wishwell/api/internal/domain"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// ItemForUpdate resolves an item through its wishlist's public slug and locks
// the row, serializing reserve and contribute attempts on the same item.
func (r *ReservationRepository) ItemForUpdate(ctx context.Context, slug, itemID string) (domain.Item, error) {
	const query = `
SELECT i.id, i.wishlist_id, i.title, i.link, i.price, i.min_contribution, i.image_url, i.sort_order, i.created_at
FROM wishlist_items i
JOIN wishlists w ON w.id = i.wishlist_id
WHERE w.slug = $1 AND i.id = $2
FOR UPDATE OF i`

	var item domain.Item
	err := db(ctx, r.pool).QueryRow(ctx, query, slug, itemID).Scan(
		&item.ID, &item.WishlistID, &item.Title, &item.Link, &item.Price,
		&item.MinContribution, &item.ImageURL, &item.SortOrder, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return domain.Item{}, domain.ErrNotFound
		}
		return domain.Item{}, fmt.Errorf("get item for update: %w", err)
	}
	return item, nil
}

func (r *ReservationRepository) ItemReserved(ctx context.Context, itemID string) (bool, error) {
	var reserved bool
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE item_id = $1)`, itemID,
	).Scan(&reserved)
	if err != nil {
		return false, fmt.Errorf("check reservation: %w", err)
	}
	return reserved, nil
}

// CreateReservation inserts the reservation; the unique constraint on
// item_id arbitrates concurrent reservers, the loser gets ErrAlreadyReserved.
func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, item_id, reserver_name, reserver_secret, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		res.ID, res.ItemID, res.ReserverName, res.ReserverSecret, res.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyReserved
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) ReservationBySecret(ctx context.Context, reserverSecret string) (domain.ReservationView, error) {
	const query = `
SELECT res.id, res.item_id, i.title, w.slug, res.reserver_name, res.created_at
FROM reservations res
JOIN wishlist_items i ON i.id = res.item_id
JOIN wishlists w ON w.id = i.wishlist_id
WHERE res.reserver_secret = $1`

	var v domain.ReservationView
	err := db(ctx, r.pool).QueryRow(ctx, query, reserverSecret).Scan(
		&v.ID, &v.ItemID, &v.ItemTitle, &v.WishlistSlug, &v.ReserverName, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReservationView{}, domain.ErrNotFound
		}
		return domain.ReservationView{}, fmt.Errorf("get reservation: %w", err)
	}
	return v, nil
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
