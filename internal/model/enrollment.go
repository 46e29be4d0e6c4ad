// internal/model/enrollment.go
package model

// Enrollment links a customer to a campaign. Only unfinished enrollments are scheduled;
// Finished is flipped by an external actor, never by the scheduler.
type Enrollment struct {
	ID         int  `db:"id" json:"id"`
	CustomerID int  `db:"customer_id" json:"customer_id"`
	CampaignID int  `db:"campaign_id" json:"campaign_id"`
	Finished   bool `db:"finished" json:"finished"`

	Customer Customer `db:"customer" json:"customer"`
	Campaign Campaign `db:"campaign" json:"campaign"`
}

// EnrollmentStats is recomputed from storage on every read.
type EnrollmentStats struct {
	EnrollmentID       int  `json:"enrollment_id"`
	CustomerID         int  `json:"customer_id"`
	CampaignID         int  `json:"campaign_id"`
	Finished           bool `json:"finished"`
	TotalTargets       int  `json:"total_targets"`
	SentTargets        int  `json:"sent_targets"`
	FailedAttempts     int  `json:"failed_attempts"`
	PendingTargets     int  `json:"pending_targets"`
	CurrentInterval    int  `json:"current_interval"`
	RemainingIntervals int  `json:"remaining_intervals"`
}
