package domain

import (
	"errors"
	"time"

	"qrmenu/pkg/plan"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Category struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id"`
	CategoryID  *string   `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Available   bool      `json:"available"`
	ImageURL    *string   `json:"image_url"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

type Table struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	Number    int       `json:"table_number"`
	QRToken   string    `json:"qr_code_token"`
	CreatedAt time.Time `json:"created_at"`
}

type Profile struct {
	OwnerID               string     `json:"user_id"`
	RestaurantName        string     `json:"restaurant_name"`
	RestaurantDescription *string    `json:"restaurant_description"`
	LogoURL               *string    `json:"logo_url"`
	SubscriptionPlan      plan.Plan  `json:"subscription_plan"`
	MenuTheme             plan.Theme `json:"menu_theme"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type PublicTable struct {
	ID     string `json:"id"`
	Number int    `json:"table_number"`
}

type PublicProfile struct {
	RestaurantName        string     `json:"restaurant_name"`
	RestaurantDescription *string    `json:"restaurant_description"`
	LogoURL               *string    `json:"logo_url"`
	MenuTheme             plan.Theme `json:"menu_theme"`
	Currency              string     `json:"currency"`
}

// PublicMenu is everything a customer needs after scanning a table code.
type PublicMenu struct {
	Table      PublicTable   `json:"table"`
	Profile    PublicProfile `json:"profile"`
	Categories []Category    `json:"categories"`
	Products   []Product     `json:"products"`
}

type CategoryInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,gte=0"`
}

type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	CategoryID  *string  `json:"category_id" validate:"omitempty,uuid"`
	Available   *bool    `json:"available"`
	SortOrder   *int     `json:"sort_order" validate:"omitempty,gte=0"`
}

type ProductPatch struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=2000"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	CategoryID    *string  `json:"category_id" validate:"omitempty,uuid"`
	ClearCategory bool     `json:"clear_category"`
	Available     *bool    `json:"available"`
	SortOrder     *int     `json:"sort_order" validate:"omitempty,gte=0"`
}

type GenerateTablesInput struct {
	Count int `json:"count" validate:"required,gte=1,lte=200"`
}

type ProfileInput struct {
	RestaurantName        string  `json:"restaurant_name" validate:"required,max=200"`
	RestaurantDescription *string `json:"restaurant_description" validate:"omitempty,max=2000"`
}

type ThemeInput struct {
	MenuTheme string `json:"menu_theme" validate:"required"`
}
