package store

import (
	"context"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS students (
	student_id BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	rfid_tag   TEXT NOT NULL UNIQUE,
	photo_path TEXT
);

CREATE TABLE IF NOT EXISTS classes (
	class_id   BIGSERIAL PRIMARY KEY,
	class_name TEXT NOT NULL,
	teacher_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE RESTRICT,
	schedule   TEXT
);

CREATE TABLE IF NOT EXISTS enrollments (
	student_id BIGINT NOT NULL REFERENCES students(student_id),
	class_id   BIGINT NOT NULL REFERENCES classes(class_id),
	PRIMARY KEY (student_id, class_id)
);

CREATE TABLE IF NOT EXISTS attendance_logs (
	log_id     BIGSERIAL PRIMARY KEY,
	student_id BIGINT NOT NULL REFERENCES students(student_id),
	class_id   BIGINT NOT NULL REFERENCES classes(class_id),
	method     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'Present',
	timestamp  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_attendance_logs_class_time ON attendance_logs(class_id, timestamp);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS students (
	student_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	rfid_tag   TEXT NOT NULL UNIQUE,
	photo_path TEXT
);

CREATE TABLE IF NOT EXISTS classes (
	class_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	class_name TEXT NOT NULL,
	teacher_id INTEGER NOT NULL REFERENCES users(user_id),
	schedule   TEXT
);

CREATE TABLE IF NOT EXISTS enrollments (
	student_id INTEGER NOT NULL REFERENCES students(student_id),
	class_id   INTEGER NOT NULL REFERENCES classes(class_id),
	PRIMARY KEY (student_id, class_id)
);

CREATE TABLE IF NOT EXISTS attendance_logs (
	log_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id INTEGER NOT NULL REFERENCES students(student_id),
	class_id   INTEGER NOT NULL REFERENCES classes(class_id),
	method     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'Present',
	timestamp  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_attendance_logs_class_time ON attendance_logs(class_id, timestamp);
`

// Migrate creates the attendance schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if d.Dialect == SQLite {
		schema = sqliteSchema
	}
	if _, err := d.Client.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate %s schema: %w", d.Dialect, err)
	}
	return nil
}
