package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testIssuer() Issuer {
	return Issuer{Name: "rollcall-test", Key: []byte("secret"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.Issue(42, "teacher")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	claims, err := issuer.Parse(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 || claims.Role != "teacher" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !pair.RefreshExp.After(pair.AccessExp) {
		t.Fatalf("expected refresh token to outlive access token")
	}
}

func TestParseRejectsRefreshAndForeignTokens(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.Issue(1, "admin")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := issuer.Parse(pair.RefreshToken); err == nil {
		t.Fatalf("expected refresh token to be rejected as access token")
	}

	other := testIssuer()
	other.Name = "someone-else"
	if _, err := other.Parse(pair.AccessToken); err == nil {
		t.Fatalf("expected issuer mismatch")
	}

	wrongKey := testIssuer()
	wrongKey.Key = []byte("other-secret")
	if _, err := wrongKey.Parse(pair.AccessToken); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestParseRefresh(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.Issue(7, "teacher")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	claims, err := issuer.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if id, _ := claims.UserID(); id != 7 || claims.TokenType != "refresh" {
		t.Fatalf("unexpected refresh claims: %+v", claims)
	}
	if _, err := issuer.ParseRefresh(pair.AccessToken); err == nil {
		t.Fatalf("expected access token to be rejected as refresh token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "password123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if err := CheckPassword(hash, "password123"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}

func TestUserAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := testIssuer()
	r := gin.New()
	r.GET("/private", UserAuth(issuer), func(c *gin.Context) {
		claims := c.MustGet(ClaimsKey).(Claims)
		c.JSON(http.StatusOK, gin.H{"role": claims.Role})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	pair, err := issuer.Issue(7, "teacher")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
}
