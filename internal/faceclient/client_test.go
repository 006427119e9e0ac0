package faceclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStubAlwaysVerifies(t *testing.T) {
	ok, err := Stub{}.Verify(context.Background(), 1, "anything")
	if err != nil || !ok {
		t.Fatalf("expected stub to verify, got ok=%v err=%v", ok, err)
	}
}

func TestClientVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		verified := body["user_id"] == "7" && body["image"] == "face-of-7"
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": verified, "similarity": 0.9, "threshold": 0.5})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ok, err := c.Verify(context.Background(), 7, "face-of-7")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = c.Verify(context.Background(), 7, "someone-else")
	if err != nil || ok {
		t.Fatalf("expected rejection, got ok=%v err=%v", ok, err)
	}
}

func TestClientVerifyServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Verify(context.Background(), 1, "img"); err == nil {
		t.Fatalf("expected error from failing face service")
	}
	if err := New(srv.URL).Health(context.Background()); err == nil {
		t.Fatalf("expected unhealthy face service")
	}
}

func TestClientVerifyRequiresPhoto(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": true})
	}))
	defer srv.Close()

	ok, err := New(srv.URL).Verify(context.Background(), 1, "")
	if err == nil || ok {
		t.Fatalf("expected error for empty photo, got ok=%v err=%v", ok, err)
	}
	if calls != 0 {
		t.Fatalf("face service called %d times for an empty photo", calls)
	}
}
