package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignSkipsUnsignedParams(t *testing.T) {
	c := New("demo", "key", "secret", "")
	got := c.sign(map[string]string{
		"timestamp": "1315060510",
		"public_id": "student_1",
		"api_key":   "key",
		"file":      "data:image/png;base64,AAAA",
		"folder":    "",
	})
	want := fmt.Sprintf("%x", sha1.Sum([]byte("public_id=student_1&timestamp=1315060510secret")))
	if got != want {
		t.Fatalf("signature = %s, want %s", got, want)
	}
}

func TestUploadStudentPhoto(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/image/upload" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		form = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			form[k] = v[0]
		}
		_ = json.NewEncoder(w).Encode(UploadResult{
			PublicID:  "rollcall/students/student_42",
			SecureURL: "https://res.cloudinary.com/demo/image/upload/student_42.jpg",
		})
	}))
	defer srv.Close()

	c := New("demo", "key", "secret", "rollcall/students")
	c.BaseURL = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	url, err := c.UploadStudentPhoto(context.Background(), 42, "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://res.cloudinary.com/demo/image/upload/student_42.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
	if form["public_id"] != "student_42" || form["folder"] != "rollcall/students" || form["overwrite"] != "true" {
		t.Fatalf("unexpected form fields %v", form)
	}
	if form["timestamp"] != "1700000000" || form["signature"] == "" {
		t.Fatalf("missing signed timestamp: %v", form)
	}
}

func TestUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid Signature"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("demo", "key", "wrong", "")
	c.BaseURL = srv.URL
	if _, err := c.UploadBytes(context.Background(), []byte{0xff, 0xd8}, "photo.jpg", ""); err == nil {
		t.Fatalf("expected upload error")
	}
}
