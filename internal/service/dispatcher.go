// internal/service/dispatcher.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/delivery"
	"github.com/unclebandit/baz-scheduler/internal/logger"
	"github.com/unclebandit/baz-scheduler/internal/model"
	"github.com/unclebandit/baz-scheduler/internal/repository"
)

type DispatchResult struct {
	Written   int
	Succeeded int
	Failed    int
	Unpaired  int // targets left without a timestamp; they stay pending
}

// DispatchRecorder pairs targets with timestamps, hands each pair to the sender
// and appends one SendRecord per attempt.
type DispatchRecorder struct {
	Sender      delivery.Sender
	SendRecords repository.SendRecordRepositoryInterface
}

func (d *DispatchRecorder) Dispatch(
	ctx context.Context,
	targets []model.Target,
	campaign model.Campaign,
	customer model.Customer,
	interval int,
	timestamps []time.Time,
) (DispatchResult, error) {
	pairs := min(len(targets), len(timestamps))
	result := DispatchResult{Unpaired: len(targets) - pairs}
	records := make([]model.SendRecord, 0, pairs)

	for i := 0; i < pairs; i++ {
		if ctx.Err() != nil {
			result.Unpaired += pairs - i
			break
		}
		target := targets[i]
		item := delivery.Delivery{
			TargetID:    target.ID,
			TargetEmail: target.Email,
			CustomerID:  customer.ID,
			CampaignID:  campaign.ID,
			Interval:    interval,
			Content:     campaign.Content,
			ScheduledAt: timestamps[i],
		}
		logger.Debug("prepare to send",
			zap.String("to", target.Email),
			zap.Time("time", item.ScheduledAt),
			zap.String("content", item.Content),
		)

		err := d.Sender.Send(ctx, item)
		if err != nil {
			result.Failed++
			logger.Warn("delivery failed",
				zap.Int("target_id", target.ID),
				zap.Int("campaign_id", campaign.ID),
				zap.Error(err),
			)
		} else {
			result.Succeeded++
		}

		records = append(records, model.SendRecord{
			TargetID:   target.ID,
			CustomerID: customer.ID,
			CampaignID: campaign.ID,
			Timestamp:  item.ScheduledAt,
			Interval:   interval,
			Success:    err == nil,
		})
	}

	// attempted items are recorded even when the pass is being cancelled,
	// otherwise they would be handed to the transport again next run
	if err := d.SendRecords.BulkAppend(context.WithoutCancel(ctx), records); err != nil {
		return result, fmt.Errorf("append send records: %w", err)
	}
	result.Written = len(records)
	return result, ctx.Err()
}
