package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RegisterResponse struct {
	Msg  string       `json:"msg"`
	User UserResponse `json:"user"`
}

type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type MessageResponse struct {
	Msg string `json:"msg"`
}

// ItemRequest is the full item payload used by POST and PUT.
type ItemRequest struct {
	Title       string           `json:"title"       validate:"required,max=200"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uint            `json:"category_id"`
	Image       string           `json:"image"       validate:"max=500"`
}

type PatchItemRequest struct {
	Title       *string          `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uint            `json:"category_id"`
	Image       *string          `json:"image"       validate:"omitempty,max=500"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"omitempty,max=100"`
}

type AddToCartRequest struct {
	ItemID   *uint `json:"item_id"`
	Quantity *int  `json:"quantity"`
}

type UpdateCartRequest struct {
	CartItemID *uint `json:"cart_item_id"`
	Quantity   *int  `json:"quantity"`
}

type CartLine struct {
	ID       uint        `json:"id"`
	Item     models.Item `json:"item"`
	Quantity int         `json:"quantity"`
}

type CartResponse struct {
	Items []CartLine `json:"items"`
}

func NewCartResponse(lines []models.CartItem) CartResponse {
	out := CartResponse{Items: make([]CartLine, 0, len(lines))}
	for _, l := range lines {
		out.Items = append(out.Items, CartLine{ID: l.ID, Item: l.Item, Quantity: l.Quantity})
	}
	return out
}

type SearchResponse struct {
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Items []models.Item `json:"items"`
}
