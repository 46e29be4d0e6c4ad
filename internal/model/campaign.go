// internal/model/campaign.go
package model

import "time"

// Campaign is the fixed-content payload delivered to every target of an enrollment.
// Rows are never updated once created.
type Campaign struct {
	ID        int       `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
