package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wishwell/api/internal/domain"
)

type ContributionRepository struct {
	pool *pgxpool.Pool
}

func NewContributionRepository(pool *pgxpool.Pool) *ContributionRepository {
	return &ContributionRepository{pool: pool}
}

func (r *ContributionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// ItemForUpdate locks the item row so the budget check and insert happen
// against a stable contribution sum.
func (r *ContributionRepository) ItemForUpdate(ctx context.Context, slug, itemID string) (domain.Item, error) {
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

func (r *ContributionRepository) ItemReserved(ctx context.Context, itemID string) (bool, error) {
	var reserved bool
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE item_id = $1)`, itemID,
	).Scan(&reserved)
	if err != nil {
		return false, fmt.Errorf("check reservation: %w", err)
	}
	return reserved, nil
}

func (r *ContributionRepository) SumContributions(ctx context.Context, itemID string) (int64, error) {
	var total int64
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::BIGINT FROM contributions WHERE item_id = $1`, itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum contributions: %w", err)
	}
	return total, nil
}

func (r *ContributionRepository) CreateContribution(ctx context.Context, c domain.Contribution) error {
	const stmt = `
INSERT INTO contributions (id, item_id, contributor_name, amount, contributor_secret, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		c.ID, c.ItemID, c.ContributorName, c.Amount, c.ContributorSecret, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create contribution: %w", err)
	}
	return nil
}

func (r *ContributionRepository) ContributionBySecret(ctx context.Context, contributorSecret string) (domain.ContributionView, error) {
	const query = `
SELECT c.id, c.item_id, i.title, w.slug, c.contributor_name, c.amount, c.created_at
FROM contributions c
JOIN wishlist_items i ON i.id = c.item_id
JOIN wishlists w ON w.id = i.wishlist_id
WHERE c.contributor_secret = $1`

	var v domain.ContributionView
	err := db(ctx, r.pool).QueryRow(ctx, query, contributorSecret).Scan(
		&v.ID, &v.ItemID, &v.ItemTitle, &v.WishlistSlug, &v.ContributorName, &v.Amount, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ContributionView{}, domain.ErrNotFound
		}
		return domain.ContributionView{}, fmt.Errorf("get contribution: %w", err)
	}
	return v, nil
}

func (r *ContributionRepository) DeleteContribution(ctx context.Context, id string) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM contributions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
