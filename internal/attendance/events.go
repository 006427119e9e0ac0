package attendance

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/queue"
)

// EventRecorded is the queue message type published after a check-in.
const EventRecorded = "attendance.recorded"

// RecordedEvent describes a stored attendance log.
type RecordedEvent struct {
	EventID    string    `json:"event_id"`
	LogID      int64     `json:"log_id"`
	StudentID  int64     `json:"student_id"`
	ClassID    int64     `json:"class_id"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Day returns the UTC calendar date of the event.
func (e RecordedEvent) Day() string {
	return e.RecordedAt.UTC().Format(time.DateOnly)
}

func newRecordedEvent(logID int64, in CheckIn, at time.Time) RecordedEvent {
	return RecordedEvent{
		EventID:    uuid.NewString(),
		LogID:      logID,
		StudentID:  in.StudentID,
		ClassID:    in.ClassID,
		Method:     in.Method,
		Status:     PresentStatus,
		RecordedAt: at.UTC(),
	}
}

// Message encodes the event for a queue.
func (e RecordedEvent) Message() (queue.Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return queue.Message{}, err
	}
	return queue.Message{Type: EventRecorded, Body: body}, nil
}

// DecodeRecorded decodes an EventRecorded queue message.
func DecodeRecorded(msg queue.Message) (RecordedEvent, error) {
	if msg.Type != EventRecorded {
		return RecordedEvent{}, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var e RecordedEvent
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		return RecordedEvent{}, fmt.Errorf("decode %s: %w", EventRecorded, err)
	}
	return e, nil
}
