package domain

// TopProduct is one row of the best-seller board. Products are grouped by
// the name snapshotted on the order item, so deleted products still count.
type TopProduct struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}
