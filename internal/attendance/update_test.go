package attendance

import (
	"reflect"
	"regexp"
	"testing"
	"time"

	"rollcall/internal/queue"
)

func TestUpdateStatement(t *testing.T) {
	name, empty := "Ann", ""
	teacher, zero := int64(4), int64(0)

	var set Assignments
	set.AddString("class_name", &name)
	set.AddString("schedule", &empty)
	set.AddString("room", nil)
	set.AddInt64("teacher_id", &teacher)
	set.AddInt64("other_id", &zero)

	query, args := updateStatement("classes", "class_id", 9, set)
	if want := "UPDATE classes SET class_name = $1, teacher_id = $2 WHERE class_id = $3"; query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if want := []any{"Ann", int64(4), int64(9)}; !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestGenerateRFIDTag(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tag, err := GenerateRFIDTag()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !pattern.MatchString(tag) {
			t.Fatalf("bad tag %q", tag)
		}
		seen[tag] = true
	}
	if len(seen) < 99 {
		t.Fatalf("tags are not random enough: %d distinct of 100", len(seen))
	}
}

func TestRecordedEventMessage(t *testing.T) {
	at := time.Date(2026, 5, 4, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	evt := newRecordedEvent(12, CheckIn{StudentID: 3, ClassID: 7, Method: "Face"}, at)
	if evt.EventID == "" || evt.Status != PresentStatus {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Day() != "2026-05-05" {
		t.Fatalf("day should be the UTC date, got %s", evt.Day())
	}

	msg, err := evt.Message()
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if msg.Type != EventRecorded {
		t.Fatalf("type = %s", msg.Type)
	}
	if _, err := DecodeRecorded(queue.Message{Type: "other", Body: msg.Body}); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestErrorKinds(t *testing.T) {
	conflict := Conflict("Username already exists", errString("UNIQUE constraint failed: users.username"))
	if KindOf(conflict) != KindConflict || Message(conflict) != "Username already exists" {
		t.Fatalf("unexpected conflict %v", conflict)
	}
	if Internal(conflict) != conflict {
		t.Fatalf("Internal must keep an existing kind")
	}
	plain := errString("disk I/O error")
	if KindOf(plain) != KindInternal || Message(Internal(plain)) != "disk I/O error" {
		t.Fatalf("foreign errors are internal and keep their message")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
