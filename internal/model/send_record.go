// internal/model/send_record.go
package model

import "time"

// SendRecord is one delivery attempt. Rows are append-only.
type SendRecord struct {
	ID         int       `db:"id" json:"id"`
	TargetID   int       `db:"target_id" json:"target_id"`
	CustomerID int       `db:"customer_id" json:"customer_id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	Timestamp  time.Time `db:"scheduled_at" json:"timestamp"`
	Interval   int       `db:"interval_number" json:"interval"`
	Success    bool      `db:"success" json:"success"`
}

// SentTarget is the projection of a successful SendRecord the batcher needs.
type SentTarget struct {
	TargetID  int       `db:"target_id"`
	Timestamp time.Time `db:"scheduled_at"`
}
