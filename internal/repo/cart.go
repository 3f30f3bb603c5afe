package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func getOrCreateCart(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Where("user_id = ?", userID).Take(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// a concurrent request may have created it; the unique user_id index decides
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&models.Cart{UserID: userID}).Error; err != nil {
		return nil, err
	}
	cart = models.Cart{}
	if err := tx.Where("user_id = ?", userID).Take(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	return getOrCreateCart(r.DB.WithContext(ctx), userID)
}

// CartLines returns the lines of a cart with their items, oldest first.
func (r *GormRepo) CartLines(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	lines := make([]models.CartItem, 0)
	err := r.DB.WithContext(ctx).
		Preload("Item.Category").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// AddToCart adds qty of itemID to the cart in a single upsert, so concurrent
// adds of the same item sum up on one row. Returns gorm.ErrRecordNotFound
// when the item does not exist.
func (r *GormRepo) AddToCart(ctx context.Context, cartID, itemID uint, qty int) (*models.CartItem, error) {
	var line models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Take(&models.Item{}, itemID).Error; err != nil {
			return err
		}

		add := models.CartItem{CartID: cartID, ItemID: itemID, Quantity: qty}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			}),
		}).Omit(clause.Associations).Create(&add).Error; err != nil {
			return err
		}

		return tx.Preload("Item.Category").
			Where("cart_id = ? AND item_id = ?", cartID, itemID).
			Take(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// SetLineQuantity sets the quantity of a line of this cart, deleting it when
// qty <= 0. Lines of other carts are reported as gorm.ErrRecordNotFound.
func (r *GormRepo) SetLineQuantity(ctx context.Context, cartID, lineID uint, qty int) (removed bool, err error) {
	if qty <= 0 {
		return true, r.RemoveLine(ctx, cartID, lineID)
	}
	res := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Update("quantity", qty)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

func (r *GormRepo) RemoveLine(ctx context.Context, cartID, lineID uint) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
