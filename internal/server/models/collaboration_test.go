package models

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/convokeeper/internal/common"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"WRITER", RoleWriter, false},
		{" Viewer ", RoleViewer, false},
		{"BaNnEd", RoleBanned, false},
		{"owner", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if !errors.Is(err, common.ErrInvalidArgument) {
				t.Errorf("ParseRole(%q) err = %v, want ErrInvalidArgument", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseRole(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestRole_Satisfies(t *testing.T) {
	tests := []struct {
		have, min Role
		want      bool
	}{
		{RoleAdmin, RoleViewer, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleWriter, RoleViewer, true},
		{RoleWriter, RoleAdmin, false},
		{RoleViewer, RoleWriter, false},
		{RoleBanned, RoleViewer, false},
		{RoleAdmin, RoleBanned, false},
		{Role("ADMIN"), RoleViewer, false},
	}
	for _, tt := range tests {
		if got := tt.have.Satisfies(tt.min); got != tt.want {
			t.Errorf("%q.Satisfies(%q) = %v, want %v", tt.have, tt.min, got, tt.want)
		}
	}
}

func TestAccount_Credentials(t *testing.T) {
	a := &Account{}
	if a.HasCredentials() {
		t.Fatal("empty account has credentials")
	}
	a.SetCredentials("h", "")
	if a.HasCredentials() {
		t.Fatal("hash without salt counted as credentials")
	}
	a.SetCredentials("h", "s")
	if !a.HasCredentials() {
		t.Fatal("expected credentials")
	}
}
