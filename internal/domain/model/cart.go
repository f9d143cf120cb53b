package model

// Cart lives in redis only. A cart line is unique per (user, book); it is
// consumed by checkout and reborn empty afterwards.
type Cart struct {
	UserID int        `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
