package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"rollcall/internal/store"
)

// NewDB opens a private in-memory SQLite database with the full schema. It is
// closed when the test ends.
func NewDB(t *testing.T) *store.DB {
	t.Helper()

	dsn := "sqlite:file:test_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := store.NewDB(dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

// Enroll adds a student to a class; there is no API for enrollments.
func Enroll(t *testing.T, db *store.DB, studentID, classID int64) {
	t.Helper()

	_, err := db.Client.Exec(`
		INSERT INTO enrollments (student_id, class_id)
		VALUES ($1, $2)
	`, studentID, classID)
	if err != nil {
		t.Fatalf("Failed to enroll student %d in class %d: %v", studentID, classID, err)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *store.DB, table string) int {
	t.Helper()

	var n int
	if err := db.Client.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request with an optional JSON body.
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// Serve runs req through h and returns the recorded response.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided value.
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v. Body: %s", err, w.Body.String())
	}
}

// AssertError checks the status and the {"error": msg} body of a failed request.
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	AssertStatus(t, w, status)
	var body struct {
		Error string `json:"error"`
	}
	AssertJSON(t, w, &body)
	if body.Error != msg {
		t.Errorf("Expected error %q, got %q", msg, body.Error)
	}
}
