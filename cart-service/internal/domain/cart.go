package domain

import "time"

// Cart is the per-user cart document. The whole Items list is read, modified
// in memory and written back on every mutation; there is no version token, so
// concurrent writers race (last write wins).
type Cart struct {
	UserID    string     `firestore:"userId" json:"userId"`
	Items     []CartItem `firestore:"items" json:"items"`
	CreatedAt time.Time  `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	UpdatedAt time.Time  `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

type CartItem struct {
	ItemID   string    `firestore:"itemId" json:"itemId"`
	Quantity int       `firestore:"quantity" json:"quantity"`
	AddedAt  time.Time `firestore:"addedAt" json:"addedAt"`
}

// FindItem returns the index of the line holding itemID, or -1.
func (c *Cart) FindItem(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// TotalQuantity sums the quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}
