package audit

import (
	"context"

	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/metrics"
	"rollcall/internal/queue"
)

// Consumer reads attendance events and flags repeated check-ins. It never
// changes stored logs.
type Consumer struct {
	tracker Tracker
	log     *zap.Logger
}

// NewConsumer creates a consumer.
func NewConsumer(tracker Tracker, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{tracker: tracker, log: log}
}

// Run consumes q until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	c.log.Info("audit consumer started")
	for msg := range messages {
		if err := c.Handle(ctx, msg); err != nil {
			c.log.Warn("audit event skipped", zap.String("type", msg.Type), zap.Error(err))
		}
	}
	c.log.Info("audit consumer stopped")
	return nil
}

// Handle processes one message. Messages of other types are ignored.
func (c *Consumer) Handle(ctx context.Context, msg queue.Message) error {
	if msg.Type != attendance.EventRecorded {
		return nil
	}
	evt, err := attendance.DecodeRecorded(msg)
	if err != nil {
		return err
	}

	first, err := c.tracker.Mark(ctx, evt)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("event_id", evt.EventID),
		zap.Int64("log_id", evt.LogID),
		zap.Int64("student_id", evt.StudentID),
		zap.Int64("class_id", evt.ClassID),
		zap.String("method", evt.Method),
		zap.String("day", evt.Day()),
	}
	if !first {
		metrics.DuplicateAttendance.Inc()
		c.log.Warn("duplicate attendance", fields...)
		return nil
	}
	c.log.Info("attendance recorded", fields...)
	return nil
}
