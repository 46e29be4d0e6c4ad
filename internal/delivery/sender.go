// internal/delivery/sender.go
package delivery

import (
	"context"
	"time"
)

// Delivery is one item handed to the transport.
type Delivery struct {
	TargetID    int       `json:"target_id"`
	TargetEmail string    `json:"target_email"`
	CustomerID  int       `json:"customer_id"`
	CampaignID  int       `json:"campaign_id"`
	Interval    int       `json:"interval"`
	Content     string    `json:"content"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Sender attempts one delivery. A nil error means the item was accepted.
type Sender interface {
	Send(ctx context.Context, d Delivery) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, d Delivery) error

func (f SenderFunc) Send(ctx context.Context, d Delivery) error { return f(ctx, d) }

// MockSender accepts everything.
type MockSender struct{}

func (MockSender) Send(ctx context.Context, _ Delivery) error {
	return ctx.Err()
}

var (
	_ Sender = MockSender{}
	_ Sender = SenderFunc(nil)
)
