package audit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/internal/attendance"
)

// presenceTTL keeps a day's presence set around long enough for late events.
const presenceTTL = 48 * time.Hour

// Tracker remembers which students were seen per class and day.
type Tracker interface {
	// Mark records the event and reports whether it is the first for its
	// student, class and day.
	Mark(ctx context.Context, evt attendance.RecordedEvent) (bool, error)
}

func presenceKey(evt attendance.RecordedEvent) string {
	return "attendance:present:" + strconv.FormatInt(evt.ClassID, 10) + ":" + evt.Day()
}

// RedisTracker keeps presence sets in Redis so every worker shares them.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker creates a tracker on client.
func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

// Mark adds the student to the class/day set.
func (t *RedisTracker) Mark(ctx context.Context, evt attendance.RecordedEvent) (bool, error) {
	key := presenceKey(evt)
	pipe := t.client.TxPipeline()
	added := pipe.SAdd(ctx, key, strconv.FormatInt(evt.StudentID, 10))
	pipe.Expire(ctx, key, presenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return added.Val() == 1, nil
}

// MemoryTracker is the in-process tracker used with the memory queue. Like
// the Redis TTL, it only keeps the event's day and the day before.
type MemoryTracker struct {
	mu   sync.Mutex
	days map[string]map[string]map[int64]struct{}
}

// NewMemoryTracker creates an empty tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{days: make(map[string]map[string]map[int64]struct{})}
}

// Mark adds the student to the class/day set and drops days older than the
// day before evt.
func (t *MemoryTracker) Mark(_ context.Context, evt attendance.RecordedEvent) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	day := evt.Day()
	cutoff := evt.RecordedAt.UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	for d := range t.days {
		if d < cutoff {
			delete(t.days, d)
		}
	}

	sets, ok := t.days[day]
	if !ok {
		sets = make(map[string]map[int64]struct{})
		t.days[day] = sets
	}
	key := presenceKey(evt)
	students, ok := sets[key]
	if !ok {
		students = make(map[int64]struct{})
		sets[key] = students
	}
	if _, dup := students[evt.StudentID]; dup {
		return false, nil
	}
	students[evt.StudentID] = struct{}{}
	return true, nil
}
