package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type CartRepo interface {
	GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error)
	CartLines(ctx context.Context, cartID uint) ([]models.CartItem, error)
	AddToCart(ctx context.Context, cartID, itemID uint, qty int) (*models.CartItem, error)
	SetLineQuantity(ctx context.Context, cartID, lineID uint, qty int) (bool, error)
	RemoveLine(ctx context.Context, cartID, lineID uint) error
}

type CartService struct {
	Repo   CartRepo
	Events EventPublisher
}

type UpdateOutcome string

const (
	Updated UpdateOutcome = "updated"
	Removed UpdateOutcome = "removed"
)

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Repo.CartLines(ctx, cart.ID)
}

// AddItem adds qty to the user's line for itemID, creating it if needed.
func (s *CartService) AddItem(ctx context.Context, userID, itemID uint, qty int) (*models.CartItem, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", ErrValidation)
	}
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	line, err := s.Repo.AddToCart(ctx, cart.ID, itemID, qty)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicCarts, userID, map[string]any{
		"type":     "cart_item_added",
		"user_id":  userID,
		"item_id":  itemID,
		"added":    qty,
		"quantity": line.Quantity,
	})
	return line, nil
}

// UpdateQuantity sets the line quantity; qty <= 0 removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID uint, qty int) (UpdateOutcome, error) {
	if lineID == 0 {
		return "", fmt.Errorf("cart_item_id is required: %w", ErrValidation)
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return "", err
	}
	removed, err := s.Repo.SetLineQuantity(ctx, cart.ID, lineID, qty)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("cart item %d: %w", lineID, ErrNotFound)
		}
		return "", err
	}

	if removed {
		s.removedEvent(ctx, userID, lineID)
		return Removed, nil
	}
	publish(ctx, s.Events, TopicCarts, userID, map[string]any{
		"type":         "cart_item_updated",
		"user_id":      userID,
		"cart_item_id": lineID,
		"quantity":     qty,
	})
	return Updated, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, lineID uint) error {
	if lineID == 0 {
		return fmt.Errorf("cart_item_id is required: %w", ErrValidation)
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.RemoveLine(ctx, cart.ID, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart item %d: %w", lineID, ErrNotFound)
		}
		return err
	}
	s.removedEvent(ctx, userID, lineID)
	return nil
}

func (s *CartService) removedEvent(ctx context.Context, userID, lineID uint) {
	publish(ctx, s.Events, TopicCarts, userID, map[string]any{
		"type":         "cart_item_removed",
		"user_id":      userID,
		"cart_item_id": lineID,
	})
}
