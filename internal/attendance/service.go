package attendance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rollcall/internal/auth"
	"rollcall/internal/metrics"
	"rollcall/internal/queue"
)

// Verifier decides whether photoData shows the given student.
type Verifier interface {
	Verify(ctx context.Context, studentID int64, photoData string) (bool, error)
}

// Service coordinates password hashing, tag generation, verification and
// event publication around the repository.
type Service struct {
	repo     *Repository
	verifier Verifier
	events   queue.Publisher
	log      *zap.Logger
	newTag   func() (string, error)
	now      func() time.Time
}

// NewService creates a service backed by a repository. events may be nil.
func NewService(repo *Repository, verifier Verifier, events queue.Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		verifier: verifier,
		events:   events,
		log:      log,
		newTag:   GenerateRFIDTag,
		now:      time.Now,
	}
}

// Users

// CreateUser hashes the password and stores a new user.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (int64, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, Internal(err)
	}
	id, err := s.repo.CreateUser(ctx, in.Username, hash, in.Role)
	if err != nil {
		return 0, err
	}
	s.log.Info("user created", zap.Int64("user_id", id), zap.String("role", in.Role))
	return id, nil
}

// GetUser returns a user without its password hash.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateUser applies the present fields of p; a new password is hashed first.
func (s *Service) UpdateUser(ctx context.Context, id int64, p UserPatch) error {
	var set Assignments
	set.AddString("username", p.Username)
	if p.Password != nil && *p.Password != "" {
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return Internal(err)
		}
		set.AddString("password_hash", &hash)
	}
	set.AddString("role", p.Role)
	if len(set) == 0 {
		return Validation("No fields to update")
	}
	return s.repo.UpdateUser(ctx, id, set)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// Authenticate checks username and password and returns the user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return User{}, Unauthorized("Invalid username or password")
		}
		return User{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return User{}, Unauthorized("Invalid username or password")
	}
	return u, nil
}

// Students

// CreateStudent stores a student, generating an RFID tag when none is given.
func (s *Service) CreateStudent(ctx context.Context, in NewStudent) (Student, error) {
	tag := in.RFIDTag
	if tag == "" {
		var err error
		if tag, err = s.newTag(); err != nil {
			return Student{}, Internal(err)
		}
	}
	id, err := s.repo.CreateStudent(ctx, in.Name, tag, in.PhotoPath)
	if err != nil {
		return Student{}, err
	}
	s.log.Info("student created", zap.Int64("student_id", id), zap.Bool("generated_tag", in.RFIDTag == ""))
	return Student{ID: id, Name: in.Name, RFIDTag: tag, PhotoPath: in.PhotoPath}, nil
}

// GetStudent returns a student by id.
func (s *Service) GetStudent(ctx context.Context, id int64) (Student, error) {
	return s.repo.GetStudent(ctx, id)
}

// UpdateStudent applies the present fields of p.
func (s *Service) UpdateStudent(ctx context.Context, id int64, p StudentPatch) error {
	var set Assignments
	set.AddString("name", p.Name)
	set.AddString("rfid_tag", p.RFIDTag)
	set.AddString("photo_path", p.PhotoPath)
	if len(set) == 0 {
		return Validation("No fields to update")
	}
	return s.repo.UpdateStudent(ctx, id, set)
}

// Classes

// CreateClass stores a class.
func (s *Service) CreateClass(ctx context.Context, in NewClass) (int64, error) {
	return s.repo.CreateClass(ctx, in.Name, in.TeacherID, in.Schedule)
}

// GetClass returns a class by id.
func (s *Service) GetClass(ctx context.Context, id int64) (Class, error) {
	return s.repo.GetClass(ctx, id)
}

// UpdateClass applies the present fields of p.
func (s *Service) UpdateClass(ctx context.Context, id int64, p ClassPatch) error {
	var set Assignments
	set.AddString("class_name", p.Name)
	set.AddInt64("teacher_id", p.TeacherID)
	set.AddString("schedule", p.Schedule)
	if len(set) == 0 {
		return Validation("No fields to update")
	}
	return s.repo.UpdateClass(ctx, id, set)
}

// Roster lists the students enrolled in a class. Unknown classes are empty.
func (s *Service) Roster(ctx context.Context, classID int64) ([]RosterEntry, error) {
	return s.repo.Roster(ctx, classID)
}

// Attendance

// RecordAttendance appends a "Present" log and announces it on the event
// queue. A failed publish is logged and does not fail the check-in.
func (s *Service) RecordAttendance(ctx context.Context, in CheckIn) (int64, error) {
	id, err := s.repo.InsertLog(ctx, in)
	if err != nil {
		return 0, err
	}
	metrics.AttendanceRecorded.WithLabelValues(in.Method).Inc()
	s.publish(ctx, newRecordedEvent(id, in, s.now()))
	return id, nil
}

func (s *Service) publish(ctx context.Context, evt RecordedEvent) {
	if s.events == nil {
		return
	}
	msg, err := evt.Message()
	if err == nil {
		err = s.events.Publish(ctx, msg)
	}
	if err != nil {
		s.log.Warn("attendance event publish failed", zap.Int64("log_id", evt.LogID), zap.Error(err))
	}
}

// AttendanceOn returns the logs of a class recorded on day.
func (s *Service) AttendanceOn(ctx context.Context, classID int64, day time.Time) ([]LogEntry, error) {
	return s.repo.LogsOn(ctx, classID, day)
}

// Identification

// ScanRFID identifies the student holding rfidTag. It records nothing.
func (s *Service) ScanRFID(ctx context.Context, rfidTag string) (Student, error) {
	st, err := s.repo.StudentByTag(ctx, rfidTag)
	switch {
	case err == nil:
		metrics.RFIDScans.WithLabelValues("verified").Inc()
	case KindOf(err) == KindNotFound:
		metrics.RFIDScans.WithLabelValues("unknown").Inc()
	}
	return st, err
}

// VerifyFace asks the configured verifier whether photoData matches the student.
func (s *Service) VerifyFace(ctx context.Context, studentID int64, photoData string) (bool, error) {
	ok, err := s.verifier.Verify(ctx, studentID, photoData)
	if err != nil {
		metrics.FaceVerifications.WithLabelValues("error").Inc()
		s.log.Warn("face verification failed", zap.Int64("student_id", studentID), zap.Error(err))
		return false, Unavailable("Face verification service unavailable", err)
	}
	result := "rejected"
	if ok {
		result = "verified"
	}
	metrics.FaceVerifications.WithLabelValues(result).Inc()
	return ok, nil
}
