package utils

import "testing"

func TestUniqueSlice(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		want  []string
	}{
		{"duplicates collapse keeping first order", []string{"ZOOM.US", "Zoom", "ZOOM.US"}, []string{"ZOOM.US", "Zoom"}},
		{"already unique", []string{"a", "b"}, []string{"a", "b"}},
		{"empty", nil, []string{}},
	}
	for _, tc := range cases {
		got := UniqueSlice(tc.input)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %d entries, got %v", tc.name, len(tc.want), got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: entry %d = %q, want %q", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestNilIfEmpty(t *testing.T) {
	if got := NilIfEmpty(""); got != nil {
		t.Fatalf("empty string should map to nil, got %v", *got)
	}
	got := NilIfEmpty("2026-01")
	if got == nil || *got != "2026-01" {
		t.Fatalf("non-empty string should survive, got %v", got)
	}
}

func TestDereferencePtr(t *testing.T) {
	if got := DereferencePtr[string](nil); got != "" {
		t.Fatalf("nil pointer should yield zero value, got %q", got)
	}
	if got := DereferencePtr(nil, "fallback"); got != "fallback" {
		t.Fatalf("nil pointer with default should yield the default, got %q", got)
	}
	v := "x"
	if got := DereferencePtr(&v, "fallback"); got != "x" {
		t.Fatalf("set pointer should win over the default, got %q", got)
	}
}
