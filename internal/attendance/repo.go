package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rollcall/internal/store"
)

const (
	msgUsernameExists = "Username already exists"
	msgRFIDExists     = "RFID tag already exists"
	msgTeacherInUse   = "User is assigned as teacher to existing classes"
)

// Repository persists users, students, classes and attendance logs.
type Repository struct {
	db      *sql.DB
	dialect store.Dialect
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db.Client, dialect: db.Dialect}
}

// withTx runs fn in one transaction, committing on success and rolling back
// on any error.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Internal(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return Internal(err)
	}
	return nil
}

// insertID executes an INSERT ... RETURNING <id> and returns the generated key.
func insertID(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// applyUpdate runs a partial update and reports NotFound when no row matched.
func applyUpdate(ctx context.Context, tx *sql.Tx, table, keyColumn string, id int64, set Assignments, notFound string) error {
	query, args := updateStatement(table, keyColumn, id, set)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFound(notFound)
	}
	return nil
}

// classify maps a store error to the error taxonomy. conflictMsg is used for
// unique violations; an empty value leaves them internal.
func classify(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if conflictMsg != "" && store.IsUniqueViolation(err) {
		return Conflict(conflictMsg, err)
	}
	return Internal(err)
}

// Users

// CreateUser inserts a user and returns the generated id.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash, role string) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertID(ctx, tx, `
			INSERT INTO users (username, password_hash, role)
			VALUES ($1, $2, $3)
			RETURNING user_id
		`, username, passwordHash, role)
		return classify(err, msgUsernameExists)
	})
	return id, err
}

// GetUser returns a single user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, role, created_at
		FROM users WHERE user_id = $1
	`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, NotFound("User not found")
		}
		return User{}, Internal(err)
	}
	return u, nil
}

// UserByUsername returns a user including the password hash.
func (r *Repository) UserByUsername(ctx context.Context, username string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, password_hash, role, created_at
		FROM users WHERE username = $1
	`, username)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, NotFound("User not found")
		}
		return User{}, Internal(err)
	}
	return u, nil
}

// UpdateUser applies the assignments to the user row.
func (r *Repository) UpdateUser(ctx context.Context, id int64, set Assignments) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		err := applyUpdate(ctx, tx, "users", "user_id", id, set, "User not found")
		if KindOf(err) == KindNotFound {
			return err
		}
		return classify(err, msgUsernameExists)
	})
}

// DeleteUser removes a user. Users still teaching a class are kept.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
		if err != nil {
			if store.IsForeignKeyViolation(err) {
				return Conflict(msgTeacherInUse, err)
			}
			return Internal(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Internal(err)
		}
		if n == 0 {
			return NotFound("User not found")
		}
		return nil
	})
}

// Students

// CreateStudent inserts a student and returns the generated id.
func (r *Repository) CreateStudent(ctx context.Context, name, rfidTag string, photoPath *string) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertID(ctx, tx, `
			INSERT INTO students (name, rfid_tag, photo_path)
			VALUES ($1, $2, $3)
			RETURNING student_id
		`, name, rfidTag, photoPath)
		return classify(err, msgRFIDExists)
	})
	return id, err
}

// GetStudent returns a single student by id.
func (r *Repository) GetStudent(ctx context.Context, id int64) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT student_id, name, rfid_tag, photo_path
		FROM students WHERE student_id = $1
	`, id)
	return scanStudent(row, "Student not found")
}

// StudentByTag returns the student holding rfidTag.
func (r *Repository) StudentByTag(ctx context.Context, rfidTag string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT student_id, name, rfid_tag, photo_path
		FROM students WHERE rfid_tag = $1
	`, rfidTag)
	return scanStudent(row, "RFID tag not recognized")
}

func scanStudent(row *sql.Row, notFound string) (Student, error) {
	var s Student
	var photo sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &s.RFIDTag, &photo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, NotFound(notFound)
		}
		return Student{}, Internal(err)
	}
	if photo.Valid {
		s.PhotoPath = &photo.String
	}
	return s, nil
}

// UpdateStudent applies the assignments to the student row.
func (r *Repository) UpdateStudent(ctx context.Context, id int64, set Assignments) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		err := applyUpdate(ctx, tx, "students", "student_id", id, set, "Student not found")
		if KindOf(err) == KindNotFound {
			return err
		}
		return classify(err, msgRFIDExists)
	})
}

// Classes

// CreateClass inserts a class and returns the generated id.
func (r *Repository) CreateClass(ctx context.Context, name string, teacherID int64, schedule *string) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertID(ctx, tx, `
			INSERT INTO classes (class_name, teacher_id, schedule)
			VALUES ($1, $2, $3)
			RETURNING class_id
		`, name, teacherID, schedule)
		return classify(err, "")
	})
	return id, err
}

// GetClass returns a single class by id.
func (r *Repository) GetClass(ctx context.Context, id int64) (Class, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT class_id, class_name, teacher_id, schedule
		FROM classes WHERE class_id = $1
	`, id)
	var c Class
	var schedule sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.TeacherID, &schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Class{}, NotFound("Class not found")
		}
		return Class{}, Internal(err)
	}
	if schedule.Valid {
		c.Schedule = &schedule.String
	}
	return c, nil
}

// UpdateClass applies the assignments to the class row.
func (r *Repository) UpdateClass(ctx context.Context, id int64, set Assignments) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		err := applyUpdate(ctx, tx, "classes", "class_id", id, set, "Class not found")
		if KindOf(err) == KindNotFound {
			return err
		}
		return classify(err, "")
	})
}

// Roster returns the students enrolled in a class, in storage order.
func (r *Repository) Roster(ctx context.Context, classID int64) ([]RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.student_id, s.name, s.rfid_tag
		FROM students s
		JOIN enrollments e ON s.student_id = e.student_id
		WHERE e.class_id = $1
	`, classID)
	if err != nil {
		return nil, Internal(err)
	}
	defer rows.Close()

	res := make([]RosterEntry, 0)
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.StudentID, &e.Name, &e.RFIDTag); err != nil {
			return nil, Internal(err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, Internal(err)
	}
	return res, nil
}

// Attendance

// InsertLog appends a "Present" attendance log and returns its id.
func (r *Repository) InsertLog(ctx context.Context, in CheckIn) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertID(ctx, tx, `
			INSERT INTO attendance_logs (student_id, class_id, method, status)
			VALUES ($1, $2, $3, $4)
			RETURNING log_id
		`, in.StudentID, in.ClassID, in.Method, PresentStatus)
		return classify(err, "")
	})
	return id, err
}

// LogsOn returns the logs of a class whose timestamp falls on day's calendar date.
func (r *Repository) LogsOn(ctx context.Context, classID int64, day time.Time) ([]LogEntry, error) {
	query := fmt.Sprintf(`
		SELECT a.student_id, s.name, a.timestamp, a.method, a.status
		FROM attendance_logs a
		JOIN students s ON a.student_id = s.student_id
		WHERE a.class_id = $1
		  AND %s
		ORDER BY a.timestamp
	`, r.sameDay("a.timestamp", 2))
	rows, err := r.db.QueryContext(ctx, query, classID, r.dayArg(day))
	if err != nil {
		return nil, Internal(err)
	}
	defer rows.Close()

	res := make([]LogEntry, 0)
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.StudentID, &e.Name, &e.Timestamp, &e.Method, &e.Status); err != nil {
			return nil, Internal(err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, Internal(err)
	}
	return res, nil
}

// sameDay renders a predicate truncating column to its date.
func (r *Repository) sameDay(column string, placeholder int) string {
	if r.dialect == store.SQLite {
		return fmt.Sprintf("DATE(%s) = $%d", column, placeholder)
	}
	return fmt.Sprintf("CAST(%s AS DATE) = $%d", column, placeholder)
}

func (r *Repository) dayArg(day time.Time) any {
	if r.dialect == store.SQLite {
		return day.Format(time.DateOnly)
	}
	return day
}
