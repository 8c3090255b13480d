package util

import (
	"testing"
	"time"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount  float64
		wantErr bool
	}{
		{100, false},
		{0.01, false},
		{9999999.99, false},
		{0, true},
		{-5, true},
		{10000000, true},
	}
	for _, tt := range tests {
		err := ValidateAmount(tt.amount)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAmount(%v) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"2026-03-15T10:30:00", time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC), false},
		{"2026-03-15T10:30:00Z", time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC), false},
		{"15/03/2026", time.Time{}, true},
		{"", time.Time{}, true},
		{"not-a-date", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateRole(t *testing.T) {
	for _, role := range []string{"owner", "admin", "member", "viewer"} {
		if err := ValidateRole(role); err != nil {
			t.Errorf("ValidateRole(%q) = %v, want nil", role, err)
		}
	}
	for _, role := range []string{"", "Owner", "root", "guest"} {
		if err := ValidateRole(role); err == nil {
			t.Errorf("ValidateRole(%q) = nil, want error", role)
		}
	}
}
