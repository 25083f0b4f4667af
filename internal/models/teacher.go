package models

// Teacher is a read-only staff identity used as a portfolio reviewer.
type Teacher struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Email *string `db:"email" json:"email,omitempty"`
}
