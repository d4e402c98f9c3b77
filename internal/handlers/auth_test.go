package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vitalsin/internal/handlers"
)

// Validation runs before any database access, so a nil db is safe here; a
// request that reached the insert would panic and fail the test loudly.
func TestSignup_RejectsInvalidInput(t *testing.T) {
	h := handlers.NewAuthHandler(nil, []byte("secret"))

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing email", `{"password": "longenough1"}`},
		{"email without at-sign", `{"email": "not-an-email", "password": "longenough1"}`},
		{"whitespace email", `{"email": "   ", "password": "longenough1"}`},
		{"short password", `{"email": "a@example.com", "password": "short"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			h.Signup(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestLogin_RejectsMissingCredentials(t *testing.T) {
	h := handlers.NewAuthHandler(nil, []byte("secret"))

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing email", `{"password": "whatever1"}`},
		{"missing password", `{"email": "a@example.com"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			h.Login(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}
		})
	}
}
