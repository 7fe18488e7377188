package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !isForeignKeyViolation(&pq.Error{Code: "23503"}) {
		t.Error("23503 should be a foreign key violation")
	}
	if isForeignKeyViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 should not be a foreign key violation")
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Errorf("nonNil(nil) = %#v, want empty non-nil slice", got)
	}
	in := []string{"wifi"}
	if got := nonNil(in); len(got) != 1 || got[0] != "wifi" {
		t.Errorf("nonNil(%v) = %v", in, got)
	}
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("empty string should map to NULL")
	}
	if got := nullStringValue(nullString("22BCE3934")); got != "22BCE3934" {
		t.Errorf("round trip = %q", got)
	}
}
