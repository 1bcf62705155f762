package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wishwell/api/internal/domain"
)

// WishlistRepository owns wishlist and item rows. Item deletes cascade their
// reservation and contributions at the schema level.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *WishlistRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlists WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *WishlistRepository) CreateWishlist(ctx context.Context, w domain.Wishlist) error {
	const stmt = `
INSERT INTO wishlists (id, title, occasion, event_date, currency, slug, creator_secret, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		w.ID, w.Title, w.Occasion, w.EventDate, w.Currency, w.Slug, w.CreatorSecret, w.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrGenerationExhausted
		}
		return fmt.Errorf("create wishlist: %w", err)
	}
	return nil
}

func (r *WishlistRepository) WishlistBySecret(ctx context.Context, creatorSecret string) (domain.Wishlist, error) {
	return r.wishlistBy(ctx, `creator_secret`, creatorSecret)
}

func (r *WishlistRepository) WishlistBySlug(ctx context.Context, slug string) (domain.Wishlist, error) {
	return r.wishlistBy(ctx, `slug`, slug)
}

func (r *WishlistRepository) wishlistBy(ctx context.Context, column, value string) (domain.Wishlist, error) {
	query := `
SELECT id, title, occasion, event_date, currency, slug, creator_secret, created_at
FROM wishlists
WHERE ` + column + ` = $1`

	var w domain.Wishlist
	err := db(ctx, r.pool).QueryRow(ctx, query, value).Scan(
		&w.ID, &w.Title, &w.Occasion, &w.EventDate, &w.Currency, &w.Slug, &w.CreatorSecret, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Wishlist{}, domain.ErrNotFound
		}
		return domain.Wishlist{}, fmt.Errorf("get wishlist: %w", err)
	}
	return w, nil
}

func (r *WishlistRepository) UpdateWishlist(ctx context.Context, w domain.Wishlist) error {
	const stmt = `
UPDATE wishlists
SET title = $2, occasion = $3, event_date = $4, currency = $5
WHERE id = $1`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, w.ID, w.Title, w.Occasion, w.EventDate, w.Currency)
	if err != nil {
		return fmt.Errorf("update wishlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WishlistRepository) DeleteWishlist(ctx context.Context, id string) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ContributedTotal sums the live contributions for one item. Called after an
// item UPDATE in the same transaction, the updated row's lock serializes it
// against concurrent contributors.
func (r *WishlistRepository) ContributedTotal(ctx context.Context, itemID string) (int64, error) {
	var total int64
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::BIGINT FROM contributions WHERE item_id = $1`,
		itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum contributions: %w", err)
	}
	return total, nil
}

func (r *WishlistRepository) NextSortOrder(ctx context.Context, wishlistID string) (int, error) {
	var next int
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM wishlist_items WHERE wishlist_id = $1`,
		wishlistID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	return next, nil
}

func (r *WishlistRepository) CreateItem(ctx context.Context, item domain.Item) error {
	const stmt = `
INSERT INTO wishlist_items (id, wishlist_id, title, link, price, min_contribution, image_url, sort_order, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		item.ID, item.WishlistID, item.Title, item.Link, item.Price,
		item.MinContribution, item.ImageURL, item.SortOrder, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *WishlistRepository) ItemByID(ctx context.Context, wishlistID, itemID string) (domain.Item, error) {
	const query = `
SELECT id, wishlist_id, title, link, price, min_contribution, image_url, sort_order, created_at
FROM wishlist_items
WHERE id = $1 AND wishlist_id = $2`

	var item domain.Item
	err := db(ctx, r.pool).QueryRow(ctx, query, itemID, wishlistID).Scan(
		&item.ID, &item.WishlistID, &item.Title, &item.Link, &item.Price,
		&item.MinContribution, &item.ImageURL, &item.SortOrder, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return domain.Item{}, domain.ErrNotFound
		}
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (r *WishlistRepository) UpdateItem(ctx context.Context, item domain.Item) error {
	const stmt = `
UPDATE wishlist_items
SET title = $3, link = $4, price = $5, min_contribution = $6, image_url = $7, sort_order = $8
WHERE id = $1 AND wishlist_id = $2`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt,
		item.ID, item.WishlistID, item.Title, item.Link, item.Price,
		item.MinContribution, item.ImageURL, item.SortOrder)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WishlistRepository) DeleteItem(ctx context.Context, wishlistID, itemID string) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM wishlist_items WHERE id = $1 AND wishlist_id = $2`, itemID, wishlistID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PublicItems loads the redacted item views for one wishlist: aggregate
// reservation and contribution state only, never names or secrets.
func (r *WishlistRepository) PublicItems(ctx context.Context, wishlistID string) ([]domain.PublicItem, error) {
	const query = `
SELECT i.id, i.title, i.link, i.price, i.min_contribution, i.image_url, i.sort_order,
       EXISTS (SELECT 1 FROM reservations res WHERE res.item_id = i.id) AS is_reserved,
       COALESCE((SELECT SUM(c.amount) FROM contributions c WHERE c.item_id = i.id), 0)::BIGINT AS total_contributed,
       i.created_at
FROM wishlist_items i
WHERE i.wishlist_id = $1
ORDER BY i.sort_order, i.created_at`

	rows, err := db(ctx, r.pool).Query(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.PublicItem, 0)
	for rows.Next() {
		var it domain.PublicItem
		if err := rows.Scan(
			&it.ID, &it.Title, &it.Link, &it.Price, &it.MinContribution, &it.ImageURL,
			&it.SortOrder, &it.IsReserved, &it.TotalContributed, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// PublicProjection assembles the snapshot pushed to viewers and served for
// slug reads.
func (r *WishlistRepository) PublicProjection(ctx context.Context, slug string) (domain.PublicWishlist, error) {
	w, err := r.WishlistBySlug(ctx, slug)
	if err != nil {
		return domain.PublicWishlist{}, err
	}
	items, err := r.PublicItems(ctx, w.ID)
	if err != nil {
		return domain.PublicWishlist{}, err
	}
	return domain.PublicWishlist{
		ID:        w.ID,
		Title:     w.Title,
		Occasion:  w.Occasion,
		EventDate: w.EventDate,
		Currency:  w.Currency,
		Slug:      w.Slug,
		Items:     items,
	}, nil
}
