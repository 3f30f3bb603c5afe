package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterScopes turns an ItemFilter into gorm scopes; absent fields add nothing.
func filterScopes(f models.ItemFilter) []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.Query != "" {
		pattern := "%" + likeEscaper.Replace(f.Query) + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(`items.title_key LIKE ? ESCAPE '\'`, pattern)
		})
	}
	if f.CategorySlug != "" {
		slug := f.CategorySlug
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			sub := db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Category{}).Select("id").Where("slug = ?", slug)
			return db.Where("items.category_id IN (?)", sub)
		})
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("items.price >= ?", lo)
		})
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("items.price <= ?", hi)
		})
	}
	return scopes
}

func (r *GormRepo) ListItems(ctx context.Context, f models.ItemFilter) ([]models.Item, error) {
	items := make([]models.Item, 0)
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Scopes(filterScopes(f)...).
		Order("items.created_at DESC").
		Order("items.id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateItem(ctx context.Context, item *models.Item) error {
	db := r.DB.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(item).Error; err != nil {
		return err
	}
	return db.Preload("Category").First(item, item.ID).Error
}

func (r *GormRepo) UpdateItem(ctx context.Context, item *models.Item) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.Item{ID: item.ID}).
		Select("title", "title_key", "description", "price", "category_id", "image").
		Updates(map[string]any{
			"title":       item.Title,
			"title_key":   models.FoldCase(item.Title),
			"description": item.Description,
			"price":       item.Price,
			"category_id": item.CategoryID,
			"image":       item.Image,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	item.Category = nil
	return db.Preload("Category").First(item, item.ID).Error
}

func (r *GormRepo) DeleteItem(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug %q: %w", c.Slug, ErrDuplicate)
		}
		return err
	}
	return nil
}
