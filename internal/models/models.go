package models

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"       json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"size:254"                       json:"email"`
	PasswordHash string    `gorm:"not null"                       json:"-"`
	CreatedAt    time.Time `                                      json:"-"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:64;uniqueIndex;not null"`
	JTI       string    `gorm:"size:36;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name string `gorm:"size:100;not null"              json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null"  json:"slug"`
}

type Item struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	Title       string          `gorm:"size:200;not null"                 json:"title"`
	TitleKey    string          `gorm:"size:400;not null;default:''"      json:"-"`
	Description string          `gorm:"type:text"                         json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;check:price >= 0" json:"price"`
	CategoryID  *uint           `gorm:"index"                             json:"-"`
	Category    *Category       `gorm:"constraint:OnDelete:SET NULL"      json:"category"`
	Image       string          `gorm:"size:500"                          json:"image"`
	CreatedAt   time.Time       `gorm:"index"                             json:"created_at"`
}

// BeforeSave keeps TitleKey in step with Title.
func (it *Item) BeforeSave(*gorm.DB) error {
	it.TitleKey = FoldCase(it.Title)
	return nil
}

// FoldCase lowercases s with Unicode rules. Title matching compares FoldCase
// of both sides, so it does not depend on the database's LOWER.
func FoldCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Cart is created together with its user and is never shared.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"       json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null"           json:"-"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE"    json:"-"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE"    json:"items"`
	CreatedAt time.Time  `                                      json:"-"`
}

// CartItem is unique per (cart, item); quantity is always positive.
type CartItem struct {
	ID       uint `gorm:"primaryKey;autoIncrement"                 json:"id"`
	CartID   uint `gorm:"uniqueIndex:idx_cart_item;not null"       json:"-"`
	ItemID   uint `gorm:"uniqueIndex:idx_cart_item;not null"       json:"-"`
	Item     Item `gorm:"constraint:OnDelete:CASCADE"              json:"item"`
	Quantity int  `gorm:"not null;check:quantity > 0"              json:"quantity"`
}

// ItemFilter holds the optional listing predicates. Nil/empty fields are not applied.
type ItemFilter struct {
	Query        string
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
}

func (f ItemFilter) IsZero() bool {
	return f.Query == "" && f.CategorySlug == "" && f.MinPrice == nil && f.MaxPrice == nil
}
