package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     registerRequest
		wantErr string
	}{
		{"valid", registerRequest{Email: "a@b.test", Password: "longenough", DisplayName: "Ada"}, ""},
		{"missing email", registerRequest{Password: "longenough", DisplayName: "Ada"}, "email is required"},
		{"malformed email", registerRequest{Email: "nodomain", Password: "longenough", DisplayName: "Ada"}, "email is malformed"},
		{"short password", registerRequest{Email: "a@b.test", Password: "short", DisplayName: "Ada"}, "password must be at least 8 characters"},
		{"blank display name", registerRequest{Email: "a@b.test", Password: "longenough", DisplayName: "   "}, "displayName is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterRequestNormalizes(t *testing.T) {
	req := registerRequest{Email: "  Ada@Example.COM ", Password: "longenough", DisplayName: " Ada "}
	if err := req.validate(); err != nil {
		t.Fatalf("validate() = %v", err)
	}
	if req.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased and trimmed", req.Email)
	}
	if req.DisplayName != "Ada" {
		t.Errorf("displayName = %q, want trimmed", req.DisplayName)
	}
}

func TestLoginRequestValidate(t *testing.T) {
	req := loginRequest{Email: "A@B.test", Password: "pw"}
	if err := req.validate(); err != nil {
		t.Fatalf("validate() = %v", err)
	}
	if req.Email != "a@b.test" {
		t.Errorf("email = %q, want normalized", req.Email)
	}

	req = loginRequest{Email: "a@b.test"}
	if err := req.validate(); err == nil {
		t.Error("missing password must not validate")
	}
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	h := NewHandler(nil) // invalid bodies never reach the service

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader("{not json"))
	h.Register(rec, req)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
