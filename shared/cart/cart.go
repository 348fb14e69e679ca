// Package cart keeps the per-tenant quantity map a visitor builds before
// handing an order off to the restaurant.
package cart

import (
	"sync"
	"time"

	"github.com/pavitra93/menulink/shared/models"
)

// MaxQuantity bounds the quantity of a single line
const MaxQuantity = 999

// Item is the part of a menu item the cart needs
type Item struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Price models.Price `json:"price"`
}

// ItemFrom copies the cart-relevant fields of a menu item
func ItemFrom(m models.MenuItem) Item {
	return Item{ID: m.ID, Name: m.Name, Price: m.Price}
}

// MenuLookup resolves cart items against a loaded menu
func MenuLookup(r *models.Restaurant) func(itemID string) (Item, bool) {
	return func(itemID string) (Item, bool) {
		m, ok := r.FindItem(itemID)
		if !ok {
			return Item{}, false
		}
		return ItemFrom(*m), true
	}
}

// Line is one item with a positive quantity
type Line struct {
	Item
	Quantity int          `json:"quantity"`
	Subtotal models.Price `json:"subtotal"`
}

// Snapshot is the serialisable state of a cart
type Snapshot struct {
	Slug       string       `json:"slug"`
	Lines      []Line       `json:"lines"`
	TotalCount int          `json:"total_count"`
	Total      models.Price `json:"total"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Empty reports whether the snapshot has no lines
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Cart is safe for concurrent use. Quantities are always positive; an item
// whose quantity drops to zero is removed.
type Cart struct {
	mu        sync.Mutex
	slug      string
	order     []string
	items     map[string]Item
	qty       map[string]int
	updatedAt time.Time
}

// New returns an empty cart for a tenant slug
func New(slug string) *Cart {
	return &Cart{
		slug:  slug,
		items: make(map[string]Item),
		qty:   make(map[string]int),
	}
}

// FromSnapshot rebuilds a cart, skipping non-positive and repeated lines
func FromSnapshot(s Snapshot) *Cart {
	c := New(s.Slug)
	for _, line := range s.Lines {
		c.insert(line.Item, line.Quantity)
	}
	c.updatedAt = s.UpdatedAt
	return c
}

// Slug returns the tenant the cart belongs to
func (c *Cart) Slug() string {
	return c.slug
}

// AddItem inserts item with quantity 1. Adding an item already in the cart
// leaves its quantity unchanged.
func (c *Cart) AddItem(item Item) bool {
	return c.AddItemWithQuantity(item, 1)
}

// AddItemWithQuantity inserts item with qty if absent. It reports whether
// the item was inserted.
func (c *Cart) AddItemWithQuantity(item Item, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.insert(item, qty) {
		return false
	}
	c.touch()
	return true
}

func (c *Cart) insert(item Item, qty int) bool {
	if qty <= 0 || item.ID == "" {
		return false
	}
	if _, ok := c.qty[item.ID]; ok {
		return false
	}
	c.order = append(c.order, item.ID)
	c.items[item.ID] = item
	c.qty[item.ID] = qty
	return true
}

// UpdateQuantity sets the absolute quantity of an item already in the cart.
// qty <= 0 removes it. Unknown items are ignored.
func (c *Cart) UpdateQuantity(itemID string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.qty[itemID]; !ok {
		return
	}
	if qty <= 0 {
		c.remove(itemID)
	} else {
		c.qty[itemID] = qty
	}
	c.touch()
}

// Refresh re-reads every line from lookup. Lines whose item is gone are
// dropped and names and prices follow the current menu. It reports whether
// anything changed.
func (c *Cart) Refresh(lookup func(itemID string) (Item, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for _, id := range append([]string(nil), c.order...) {
		item, ok := lookup(id)
		if !ok {
			c.remove(id)
			changed = true
			continue
		}
		if item != c.items[id] {
			c.items[id] = item
			changed = true
		}
	}
	if changed {
		c.touch()
	}
	return changed
}

func (c *Cart) remove(itemID string) {
	delete(c.qty, itemID)
	delete(c.items, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Quantity returns 0 for items not in the cart
func (c *Cart) Quantity(itemID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.qty[itemID]
}

// TotalCount is the sum of all quantities
func (c *Cart) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCount()
}

func (c *Cart) totalCount() int {
	n := 0
	for _, q := range c.qty {
		n += q
	}
	return n
}

// Total is the sum of price times quantity over all lines
func (c *Cart) Total() models.Price {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total()
}

func (c *Cart) total() models.Price {
	var sum models.Price
	for id, q := range c.qty {
		sum += c.items[id].Price.Times(q)
	}
	return sum
}

// Lines enumerates the cart in insertion order
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines()
}

func (c *Cart) lines() []Line {
	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		item := c.items[id]
		q := c.qty[id]
		lines = append(lines, Line{Item: item, Quantity: q, Subtotal: item.Price.Times(q)})
	}
	return lines
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.items = make(map[string]Item)
	c.qty = make(map[string]int)
	c.touch()
}

// Snapshot captures the cart atomically
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Slug:       c.slug,
		Lines:      c.lines(),
		TotalCount: c.totalCount(),
		Total:      c.total(),
		UpdatedAt:  c.updatedAt,
	}
}

func (c *Cart) touch() {
	c.updatedAt = time.Now().UTC()
}
