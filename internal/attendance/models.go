package attendance

import "time"

// PresentStatus is the only status an attendance log is created with.
const PresentStatus = "Present"

// User is a staff account. The password hash never leaves the service.
type User struct {
	ID           int64     `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `json:"-"`
}

// Student is identified at check-in by RFIDTag.
type Student struct {
	ID        int64   `json:"student_id"`
	Name      string  `json:"name"`
	RFIDTag   string  `json:"rfid_tag"`
	PhotoPath *string `json:"photo_path"`
}

// Class is taught by one user.
type Class struct {
	ID        int64   `json:"class_id"`
	Name      string  `json:"class_name"`
	TeacherID int64   `json:"teacher_id"`
	Schedule  *string `json:"schedule"`
}

// RosterEntry is one enrolled student of a class.
type RosterEntry struct {
	StudentID int64  `json:"student_id"`
	Name      string `json:"name"`
	RFIDTag   string `json:"rfid_tag"`
}

// LogEntry is an attendance log joined with the student's name.
type LogEntry struct {
	StudentID int64     `json:"student_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
}

// NewUser is the input for registering a user.
type NewUser struct {
	Username string
	Password string
	Role     string
}

// UserPatch holds the fields of a partial user update; nil means absent.
type UserPatch struct {
	Username *string
	Password *string
	Role     *string
}

// NewStudent is the input for registering a student. An empty RFIDTag is
// replaced by a generated one.
type NewStudent struct {
	Name      string
	RFIDTag   string
	PhotoPath *string
}

// StudentPatch holds the fields of a partial student update.
type StudentPatch struct {
	Name      *string
	RFIDTag   *string
	PhotoPath *string
}

// NewClass is the input for creating a class.
type NewClass struct {
	Name      string
	TeacherID int64
	Schedule  *string
}

// ClassPatch holds the fields of a partial class update.
type ClassPatch struct {
	Name      *string
	TeacherID *int64
	Schedule  *string
}

// CheckIn is the input for recording attendance.
type CheckIn struct {
	StudentID int64
	ClassID   int64
	Method    string
}
