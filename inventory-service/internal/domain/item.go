package domain

import "time"

// Item is a catalog entry in the "items" collection. The document id is
// generated by the store and carried separately from the document body.
type Item struct {
	ID          string    `firestore:"-" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Price       float64   `firestore:"price" json:"price"`
	Category    string    `firestore:"category" json:"category"`
	Stock       int       `firestore:"stock" json:"stock"`
	Unit        string    `firestore:"unit,omitempty" json:"unit,omitempty"`
	ImageURL    string    `firestore:"imageUrl" json:"imageUrl,omitempty"`
	Available   bool      `firestore:"available" json:"available"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// StockRequest is one line of a batch availability check.
type StockRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// StockStatus is the availability verdict for one requested line.
type StockStatus struct {
	ItemID            string `json:"itemId"`
	Available         bool   `json:"available"`
	CurrentStock      int    `json:"currentStock,omitempty"`
	RequestedQuantity int    `json:"requestedQuantity,omitempty"`
	Reason            string `json:"reason,omitempty"`
}
