package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-event/internal/models"
)

func TestJWTMiddleware(t *testing.T) {
	svc := newTestService(true)
	participant, _ := svc.GenerateToken(&models.User{ID: "u1", Username: "harry", Role: models.RoleParticipant})
	admin, _ := svc.GenerateToken(&models.User{ID: "a1", Username: "albus", Role: models.RoleAdmin})

	protected := JWTMiddleware(svc)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFrom(r.Context())
		w.Write([]byte(claims.UserID))
	})))

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "No token provided"},
		{"malformed", "Token abc", http.StatusUnauthorized, "Token format invalid"},
		{"garbage", "Bearer abc", http.StatusUnauthorized, "Invalid or expired token"},
		{"participant", "Bearer " + participant, http.StatusForbidden, "Admin access required"},
		{"admin", "Bearer " + admin, http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.message == "" {
				if rec.Body.String() != "a1" {
					t.Fatalf("expected admin id in body, got %q", rec.Body.String())
				}
				return
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, body["error"])
			}
		})
	}
}
