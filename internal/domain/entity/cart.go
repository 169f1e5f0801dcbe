package entity

import "time"

// Cart is a shopper's pending order. It lives in the cart store, not the database.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is one product line in a cart.
type CartItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Subtotal returns the sum of price x quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	return RoundCents(total)
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
