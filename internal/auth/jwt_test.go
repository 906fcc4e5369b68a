package auth

import (
	"testing"
	"time"

	"kantin/internal/models"
)

func TestIssueAndParseToken(t *testing.T) {
	u := &models.User{ID: 42, Name: "Siti", Role: models.RoleStudent}

	token, err := IssueToken("secret", u, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	id, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	u := &models.User{ID: 1, Name: "Budi", Role: models.RoleVendor}

	token, err := IssueToken("secret-a", u, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected error for token signed with different secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	u := &models.User{ID: 1, Name: "Budi", Role: models.RoleStudent}

	token, err := IssueToken("secret", u, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestIssueTokenEmptySecret(t *testing.T) {
	if _, err := IssueToken("", &models.User{ID: 1}, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer tok", want: "tok"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic dXNlcg==", wantErr: true},
		{name: "no token", header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("BearerToken(%q) expected error", tt.header)
				}
				return
			}
			if err != nil {
				t.Fatalf("BearerToken(%q): %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "rahasia123") {
		t.Error("CheckPassword rejected the correct password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}
}
