package field

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	tests := []struct {
		name string
		ft   Type
	}{
		{"order_number", Text},
		{"status", Tag},
		{"total_weight", Numeric},
		{"created_at", Date},
		{"a", Tag},
		{strings.Repeat("x", 64), Numeric},
	}

	for _, tt := range tests {
		f, err := New(tt.name, tt.ft)
		if err != nil {
			t.Errorf("New(%q, %q) unexpected error: %v", tt.name, tt.ft, err)
			continue
		}
		if f.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", f.Name(), tt.name)
		}
		if f.FieldType() != tt.ft {
			t.Errorf("Type() = %q, want %q", f.FieldType(), tt.ft)
		}
		if f.IsMulti() {
			t.Errorf("%q: new field should not be multi-valued", tt.name)
		}
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New("", Tag)
	if err == nil {
		t.Fatal("expected error for empty name")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want 'required'", err)
	}
}

func TestNew_NameTooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", 65), Tag)
	if err == nil {
		t.Fatal("expected error for name too long")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q, want 'too long'", err)
	}
}

func TestNew_BadName(t *testing.T) {
	for _, name := range []string{"Order", "1abc", "with-dash", "$.path"} {
		if _, err := New(name, Tag); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestNew_InvalidType(t *testing.T) {
	_, err := New("valid_name", "invalid")
	if err == nil {
		t.Fatal("expected error for invalid type")
	}
	if !strings.Contains(err.Error(), "invalid field type") {
		t.Errorf("error = %q, want 'invalid field type'", err)
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustNew("", Tag)
}

func TestMulti(t *testing.T) {
	f := MustNew("hawb_numbers", Text)
	m := f.Multi()
	if f.IsMulti() {
		t.Error("Multi mutated the receiver")
	}
	if !m.IsMulti() {
		t.Error("expected multi-valued copy")
	}
}

func TestIsNumeric(t *testing.T) {
	if !MustNew("d", Date).IsNumeric() || !MustNew("n", Numeric).IsNumeric() {
		t.Error("date and numeric fields are numeric")
	}
	if MustNew("t", Text).IsNumeric() || MustNew("g", Tag).IsNumeric() {
		t.Error("text and tag fields are not numeric")
	}
}
