// internal/model/customer.go
package model

const (
	MinIntervalWeeks = 1
	MaxIntervalWeeks = 4
)

type Customer struct {
	ID            int    `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	IntervalWeeks int    `db:"interval_weeks" json:"interval_weeks"` // length of one pacing interval

	Targets []Target `db:"-" json:"targets,omitempty"`
}

// ValidInterval reports whether the configured interval is inside [1,4] weeks.
func (c Customer) ValidInterval() bool {
	return c.IntervalWeeks >= MinIntervalWeeks && c.IntervalWeeks <= MaxIntervalWeeks
}
