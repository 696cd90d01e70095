// Package cart aggregates a customer's menu selections before an order is
// submitted. A Cart is plain in-memory state and is not safe for concurrent use.
package cart

import "math"

type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Entry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price × quantity rounded to cents.
func (e Entry) Subtotal() float64 {
	return RoundCents(e.Product.Price * float64(e.Quantity))
}

type Cart struct {
	entries []Entry
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID string) int {
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of product into the cart.
func (c *Cart) Add(p Product) {
	if i := c.index(p.ID); i >= 0 {
		c.entries[i].Quantity++
		return
	}
	c.entries = append(c.entries, Entry{Product: p, Quantity: 1})
}

// AdjustQuantity adds delta to the entry for productID. An entry whose
// quantity drops to zero or below is removed. Unknown ids are ignored.
func (c *Cart) AdjustQuantity(productID string, delta int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.entries[i].Quantity += delta
	if c.entries[i].Quantity <= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
}

// SetQuantity adds p if needed and moves its quantity to qty.
func (c *Cart) SetQuantity(p Product, qty int) {
	current := 0
	if i := c.index(p.ID); i >= 0 {
		current = c.entries[i].Quantity
	} else if qty > 0 {
		c.Add(p)
		current = 1
	}
	c.AdjustQuantity(p.ID, qty-current)
}

func (c *Cart) Total() float64 {
	var total float64
	for _, e := range c.entries {
		total += e.Product.Price * float64(e.Quantity)
	}
	return RoundCents(total)
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

func (c *Cart) Empty() bool {
	return len(c.entries) == 0
}

// Entries returns a copy of the entries in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
