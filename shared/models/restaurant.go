package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Restaurant represents a tenant with a published slug
type Restaurant struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	WhatsApp    *string    `json:"whatsapp,omitempty"`
	Instagram   *string    `json:"instagram,omitempty"`
	Categories  []Category `json:"categories"`
	Settings    *Settings  `json:"settings,omitempty"`
}

// Settings holds the owner-controlled display and ordering switches
type Settings struct {
	IsGrid   *bool   `json:"isGrid,omitempty"`
	IsOrder  *bool   `json:"isOrder,omitempty"`
	Facebook *string `json:"facebook,omitempty"`
}

// OrderingEnabled reports whether visitors may build a cart. Unset means enabled.
func (r *Restaurant) OrderingEnabled() bool {
	if r.Settings == nil || r.Settings.IsOrder == nil {
		return true
	}
	return *r.Settings.IsOrder
}

// GridLayout reports whether the menu should be shown as a grid. Unset means list.
func (r *Restaurant) GridLayout() bool {
	if r.Settings == nil || r.Settings.IsGrid == nil {
		return false
	}
	return *r.Settings.IsGrid
}

// FindItem looks up a menu item across all categories
func (r *Restaurant) FindItem(itemID string) (*MenuItem, bool) {
	for i := range r.Categories {
		for j := range r.Categories[i].MenuItems {
			if r.Categories[i].MenuItems[j].ID == itemID {
				return &r.Categories[i].MenuItems[j], true
			}
		}
	}
	return nil, false
}

// Category groups menu items. Order is whatever the backend returned.
type Category struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	RestaurantID string     `json:"restaurant_id,omitempty"`
	MenuItems    []MenuItem `json:"menuItems"`
}

// UnmarshalJSON accepts both menuItems and menu_items
func (c *Category) UnmarshalJSON(data []byte) error {
	type alias Category
	var raw struct {
		alias
		SnakeItems []MenuItem `json:"menu_items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Category(raw.alias)
	if len(c.MenuItems) == 0 && len(raw.SnakeItems) > 0 {
		c.MenuItems = raw.SnakeItems
	}
	return nil
}

// MenuItem represents a single orderable dish
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Price       Price   `json:"price"`
	IsAvailable bool    `json:"isAvailable"`
	CategoryID  string  `json:"categoryId"`
}

// Price is a non-negative amount in minor units (two decimal places)
type Price int64

// PriceFromFloat rounds a decimal amount to minor units
func PriceFromFloat(v float64) Price {
	return Price(math.Round(v * 100))
}

// Times returns the price multiplied by a quantity
func (p Price) Times(qty int) Price {
	return p * Price(qty)
}

// String renders the amount with two decimals
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the price as a decimal number
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string
func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", s, err)
	}
	if v < 0 {
		return fmt.Errorf("invalid price %q: negative", s)
	}
	*p = PriceFromFloat(v)
	return nil
}
