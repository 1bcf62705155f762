package app

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/wishwell/api/internal/clock"
	"github.com/wishwell/api/internal/domain"
)

// WishlistRepository is the storage surface for wishlist and item CRUD.
type WishlistRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateWishlist(ctx context.Context, w domain.Wishlist) error
	WishlistBySecret(ctx context.Context, creatorSecret string) (domain.Wishlist, error)
	WishlistBySlug(ctx context.Context, slug string) (domain.Wishlist, error)
	UpdateWishlist(ctx context.Context, w domain.Wishlist) error
	DeleteWishlist(ctx context.Context, id string) error
	ContributedTotal(ctx context.Context, itemID string) (int64, error)
	NextSortOrder(ctx context.Context, wishlistID string) (int, error)
	CreateItem(ctx context.Context, item domain.Item) error
	ItemByID(ctx context.Context, wishlistID, itemID string) (domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, wishlistID, itemID string) error
	PublicItems(ctx context.Context, wishlistID string) ([]domain.PublicItem, error)
	PublicProjection(ctx context.Context, slug string) (domain.PublicWishlist, error)
}

// SlugGenerator derives a unique public slug from a title.
type SlugGenerator interface {
	New(ctx context.Context, title string) (string, error)
}

// SecretMinter produces capability tokens.
type SecretMinter func() (string, error)

// WishlistService owns wishlist and item management, scoped strictly by the
// creator secret. Every lookup miss is ErrNotFound; a wrong secret is never
// distinguishable from an absent wishlist.
type WishlistService struct {
	repo      WishlistRepository
	slugs     SlugGenerator
	newSecret SecretMinter
	clock     clock.Clock
	pub       Publisher
}

func NewWishlistService(repo WishlistRepository, slugs SlugGenerator, newSecret SecretMinter, clk clock.Clock, pub Publisher) *WishlistService {
	return &WishlistService{
		repo:      repo,
		slugs:     slugs,
		newSecret: newSecret,
		clock:     clk,
		pub:       pub,
	}
}

type CreateWishlistInput struct {
	Title     string
	Occasion  string
	EventDate *time.Time
	Currency  string
}

func (s *WishlistService) Create(ctx context.Context, in CreateWishlistInput) (domain.ManagedWishlist, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.ManagedWishlist{}, domain.ErrTitleRequired
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return domain.ManagedWishlist{}, err
	}

	w := domain.Wishlist{
		ID:        uuid.NewString(),
		Title:     title,
		Occasion:  strings.TrimSpace(in.Occasion),
		EventDate: in.EventDate,
		Currency:  currency,
		CreatedAt: s.clock.Now(),
	}

	// A slug can pass the uniqueness probe and still lose the insert race.
	// One fresh pair of identifiers covers that window; a second collision
	// means something is genuinely wrong.
	for attempt := 0; ; attempt++ {
		slug, err := s.slugs.New(ctx, title)
		if err != nil {
			return domain.ManagedWishlist{}, err
		}
		secret, err := s.newSecret()
		if err != nil {
			return domain.ManagedWishlist{}, err
		}
		w.Slug, w.CreatorSecret = slug, secret

		err = s.repo.CreateWishlist(ctx, w)
		if err == nil {
			return managedView(w, []domain.PublicItem{}), nil
		}
		if !errors.Is(err, domain.ErrGenerationExhausted) || attempt > 0 {
			return domain.ManagedWishlist{}, err
		}
	}
}

func (s *WishlistService) GetManaged(ctx context.Context, creatorSecret string) (domain.ManagedWishlist, error) {
	w, err := s.repo.WishlistBySecret(ctx, creatorSecret)
	if err != nil {
		return domain.ManagedWishlist{}, err
	}
	items, err := s.repo.PublicItems(ctx, w.ID)
	if err != nil {
		return domain.ManagedWishlist{}, err
	}
	return managedView(w, items), nil
}

func (s *WishlistService) GetPublic(ctx context.Context, slug string) (domain.PublicWishlist, error) {
	return s.repo.PublicProjection(ctx, slug)
}

type UpdateWishlistInput struct {
	Title     *string
	Occasion  *string
	EventDate *time.Time
	Currency  *string
}

func (s *WishlistService) Update(ctx context.Context, creatorSecret string, in UpdateWishlistInput) (domain.ManagedWishlist, error) {
	w, err := s.repo.WishlistBySecret(ctx, creatorSecret)
	if err != nil {
		return domain.ManagedWishlist{}, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.ManagedWishlist{}, domain.ErrTitleRequired
		}
		w.Title = title
	}
	if in.Occasion != nil {
		w.Occasion = strings.TrimSpace(*in.Occasion)
	}
	if in.EventDate != nil {
		w.EventDate = in.EventDate
	}
	if in.Currency != nil {
		currency, err := normalizeCurrency(*in.Currency)
		if err != nil {
			return domain.ManagedWishlist{}, err
		}
		w.Currency = currency
	}

	if err := s.repo.UpdateWishlist(ctx, w); err != nil {
		return domain.ManagedWishlist{}, err
	}
	items, err := s.repo.PublicItems(ctx, w.ID)
	if err != nil {
		return domain.ManagedWishlist{}, err
	}
	s.pub.PublishSnapshot(w.Slug)
	return managedView(w, items), nil
}

// Delete removes the wishlist and cascades every item, reservation and
// contribution under it. Secrets minted for those records stop resolving.
func (s *WishlistService) Delete(ctx context.Context, creatorSecret string) error {
	w, err := s.repo.WishlistBySecret(ctx, creatorSecret)
	if err != nil {
		return err
	}
	return s.repo.DeleteWishlist(ctx, w.ID)
}

type ItemInput struct {
	Title           string
	Link            string
	Price           *int64
	MinContribution *int64
	ImageURL        string
}

func (s *WishlistService) AddItem(ctx context.Context, creatorSecret string, in ItemInput) (domain.PublicItem, error) {
	w, err := s.repo.WishlistBySecret(ctx, creatorSecret)
	if err != nil {
		return domain.PublicItem{}, err
	}
	if err := validateItemInput(in.Title, in.Price, in.MinContribution); err != nil {
		return domain.PublicItem{}, err
	}

	item := domain.Item{
		ID:              uuid.NewString(),
		WishlistID:      w.ID,
		Title:           strings.TrimSpace(in.Title),
		Link:            strings.TrimSpace(in.Link),
		Price:           in.Price,
		MinContribution: in.MinContribution,
		ImageURL:        strings.TrimSpace(in.ImageURL),
		CreatedAt:       s.clock.Now(),
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.NextSortOrder(txCtx, w.ID)
		if err != nil {
			return err
		}
		item.SortOrder = order
		return s.repo.CreateItem(txCtx, item)
	})
	if err != nil {
		return domain.PublicItem{}, err
	}

	s.pub.PublishSnapshot(w.Slug)
	return domain.PublicItem{
		ID:              item.ID,
		Title:           item.Title,
		Link:            item.Link,
		Price:           item.Price,
		MinContribution: item.MinContribution,
		ImageURL:        item.ImageURL,
		SortOrder:       item.SortOrder,
		CreatedAt:       item.CreatedAt,
	}, nil
}

type UpdateItemInput struct {
	Title           *string
	Link            *string
	Price           *int64
	MinContribution *int64
	ImageURL        *string
	SortOrder       *int
}

func (s *WishlistService) UpdateItem(ctx context.Context, creatorSecret, itemID string, in UpdateItemInput) (domain.PublicItem, error) {
	w, err := s.repo.WishlistBySecret(ctx, creatorSecret)
	if err != nil {
		return domain.PublicItem{}, err
	}
	item, err := s.repo.ItemByID(ctx, w.ID, itemID)
	if err != nil {
		return domain.PublicItem{}, err
	}

	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Link != nil {
		item.Link = strings.TrimSpace(*in.Link)
	}
	if in.Price != nil {
		item.Price = in.Price
	}
	if in.MinContribution != nil {
		item.MinContribution = in.MinContribution
	}
	if in.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.SortOrder != nil {
		item.SortOrder = *in.SortOrder
	}
	if err := validateItemInput(item.Title, item.Price, item.MinContribution); err != nil {
		return domain.PublicItem{}, err
	}

	// The UPDATE locks the item row, so the total checked here cannot grow
	// under us before commit. A price below the committed total would leave
	// the item permanently overfunded.
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateItem(txCtx, item); err != nil {
			return err
		}
		if item.Price != nil {
			total, err := s.repo.ContributedTotal(txCtx, item.ID)
			if err != nil {
				return err
			}
			if total > *item.Price {
				return domain.ErrPriceBelowTotal
			}
		}
		return nil
	})
	if err != nil {
		return domain.PublicItem{}, err
	}
	view, err := s.publicItem(ctx, w.ID, item.ID)
	if err != nil {
		return domain.PublicItem{}, err
	}
	s.pub.PublishSnapshot(w.Slug)
	return view, nil
}

// DeleteItem cascades the item's reservation and contributions; it never
// blocks on them existing.
func (s *WishlistService) DeleteItem(ctx context.Context, creatorSecret, itemID string) error {
	w, err := s.repo.WishlistBySecret(ctx, creatorSecret)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, w.ID, itemID); err != nil {
		return err
	}
	s.pub.PublishSnapshot(w.Slug)
	return nil
}

func (s *WishlistService) publicItem(ctx context.Context, wishlistID, itemID string) (domain.PublicItem, error) {
	items, err := s.repo.PublicItems(ctx, wishlistID)
	if err != nil {
		return domain.PublicItem{}, err
	}
	for _, it := range items {
		if it.ID == itemID {
			return it, nil
		}
	}
	return domain.PublicItem{}, domain.ErrNotFound
}

func validateItemInput(title string, price, minContribution *int64) error {
	if strings.TrimSpace(title) == "" {
		return domain.ErrTitleRequired
	}
	if price != nil && *price < 0 {
		return domain.ErrInvalidPrice
	}
	if minContribution != nil && *minContribution <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

func normalizeCurrency(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.DefaultCurrency, nil
	}
	if len(code) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	for _, r := range code {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return "", domain.ErrInvalidCurrency
		}
	}
	return strings.ToUpper(code), nil
}

func managedView(w domain.Wishlist, items []domain.PublicItem) domain.ManagedWishlist {
	return domain.ManagedWishlist{
		PublicWishlist: domain.PublicWishlist{
			ID:        w.ID,
			Title:     w.Title,
			Occasion:  w.Occasion,
			EventDate: w.EventDate,
			Currency:  w.Currency,
			Slug:      w.Slug,
			Items:     items,
		},
		CreatorSecret: w.CreatorSecret,
		CreatedAt:     w.CreatedAt,
	}
}
