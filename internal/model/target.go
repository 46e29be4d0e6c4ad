// internal/model/target.go
package model

// Target is one recipient of a customer's list.
type Target struct {
	ID         int    `db:"id" json:"id"`
	CustomerID int    `db:"customer_id" json:"customer_id"`
	Email      string `db:"email" json:"email"`
}
