package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogRepo interface {
	ListItems(ctx context.Context, f models.ItemFilter) ([]models.Item, error)
	GetItem(ctx context.Context, id uint) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id uint) error
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
}

// ItemIndex is the full-text index kept in sync with the catalog.
type ItemIndex interface {
	IndexItem(ctx context.Context, item models.Item) error
	DeleteItem(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, from, size int) (int64, []models.Item, error)
}

type CatalogService struct {
	Repo   CatalogRepo
	Index  ItemIndex
	Events EventPublisher
}

func (s *CatalogService) ListItems(ctx context.Context, f models.ItemFilter) ([]models.Item, error) {
	return s.Repo.ListItems(ctx, f)
}

func (s *CatalogService) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	item, err := s.Repo.GetItem(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return item, err
}

func (s *CatalogService) CreateItem(ctx context.Context, req transport.ItemRequest) (*models.Item, error) {
	item := models.Item{}
	if err := s.applyFull(ctx, &item, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	s.synced(ctx, "item_created", item)
	return &item, nil
}

// ReplaceItem overwrites every writable field (PUT).
func (s *CatalogService) ReplaceItem(ctx context.Context, id uint, req transport.ItemRequest) (*models.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyFull(ctx, item, req); err != nil {
		return nil, err
	}
	return s.update(ctx, item)
}

// PatchItem changes only the fields present in req.
func (s *CatalogService) PatchItem(ctx context.Context, id uint, req transport.PatchItemRequest) (*models.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title may not be blank: %w", ErrValidation)
		}
		item.Title = title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return nil, err
		}
		item.Price = *req.Price
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = req.CategoryID
	}
	if req.Image != nil {
		item.Image = *req.Image
	}
	return s.update(ctx, item)
}

func (s *CatalogService) DeleteItem(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteItem(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_unindex_failed", "item_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, TopicProducts, id, map[string]any{"type": "item_deleted", "item_id": id})
	return nil
}

// SearchItems uses the full-text index when configured, else the title filter.
func (s *CatalogService) SearchItems(ctx context.Context, q string, page, size int) (int64, []models.Item, error) {
	from, limit, _ := Paginate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, from, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Error("search_index_failed", "error", err)
	}

	var f models.ItemFilter
	queryParam(url.Values{"q": {q}}, &f)
	all, err := s.Repo.ListItems(ctx, f)
	if err != nil {
		return 0, nil, err
	}
	total := int64(len(all))
	if from >= len(all) {
		return total, []models.Item{}, nil
	}
	end := min(from+limit, len(all))
	return total, all[from:end], nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	sl := strings.TrimSpace(req.Slug)
	if sl == "" {
		sl = slug.Make(name)
	} else if !slug.IsSlug(sl) {
		return nil, fmt.Errorf("slug %q is not a valid slug: %w", sl, ErrValidation)
	}
	if sl == "" {
		return nil, fmt.Errorf("cannot derive a slug from %q: %w", name, ErrValidation)
	}

	c := &models.Category{Name: name, Slug: sl}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("category with slug %q already exists: %w", sl, ErrValidation)
		}
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) applyFull(ctx context.Context, item *models.Item, req transport.ItemRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("title is required: %w", ErrValidation)
	}
	if req.Price == nil {
		return fmt.Errorf("price is required: %w", ErrValidation)
	}
	if err := checkPrice(*req.Price); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return err
	}

	item.Title = title
	item.Description = req.Description
	item.Price = *req.Price
	item.CategoryID = req.CategoryID
	item.Image = req.Image
	return nil
}

func (s *CatalogService) update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := s.Repo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
		}
		return nil, err
	}
	s.synced(ctx, "item_updated", *item)
	return item, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category %d does not exist: %w", *id, ErrValidation)
		}
		return err
	}
	return nil
}

func checkPrice(p decimal.Decimal) error {
	if !exponentInRange(p) {
		return fmt.Errorf("price is out of range: %w", ErrValidation)
	}
	if p.IsNegative() {
		return fmt.Errorf("price must be greater than or equal to 0: %w", ErrValidation)
	}
	if p.Exponent() < -2 && !p.Equal(p.Round(2)) {
		return fmt.Errorf("price must have at most 2 decimal places: %w", ErrValidation)
	}
	if p.GreaterThanOrEqual(decimal.New(1, 10)) {
		return fmt.Errorf("price must have at most 10 digits before the decimal point: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) synced(ctx context.Context, event string, item models.Item) {
	if s.Index != nil {
		if err := s.Index.IndexItem(ctx, item); err != nil {
			logging.FromContext(ctx).Error("search_index_failed", "item_id", item.ID, "error", err)
		}
	}
	publish(ctx, s.Events, TopicProducts, item.ID, map[string]any{
		"type":    event,
		"item_id": item.ID,
		"title":   item.Title,
		"price":   item.Price.StringFixed(2),
	})
}
