package importer

import "testing"

func strPtr(s string) *string { return &s }

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil stays nil", nil, nil},
		{"empty becomes nil", strPtr(""), nil},
		{"whitespace only becomes nil", strPtr("   \t"), nil},
		{"trims", strPtr("  hello  "), strPtr("hello")},
		{"keeps inner spacing", strPtr("a  b"), strPtr("a  b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.in)
			if !ptrEq(got, tt.want) {
				t.Fatalf("CleanText(%v) = %v, want %v", deref(tt.in), deref(got), deref(tt.want))
			}
		})
	}
}

func TestCleanEmail(t *testing.T) {
	got := CleanEmail(strPtr("  John.Doe@Example.COM "))
	if got == nil || *got != "john.doe@example.com" {
		t.Fatalf("got %v", deref(got))
	}
	if CleanEmail(strPtr("   ")) != nil {
		t.Fatal("blank email should be nil")
	}
}

func TestCleanCompanyName(t *testing.T) {
	got := CleanCompanyName(strPtr("  Acme   Corp \t Ltd "))
	if got == nil || *got != "Acme Corp Ltd" {
		t.Fatalf("got %v", deref(got))
	}
	// Case is preserved: matching is deliberately case-sensitive.
	got = CleanCompanyName(strPtr("ACME"))
	if got == nil || *got != "ACME" {
		t.Fatalf("got %v", deref(got))
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"1990-05-17", strPtr("1990-05-17")},
		{"1990/05/17", strPtr("1990-05-17")},
		{"05/17/1990", strPtr("1990-05-17")},
		{"17-May-1990", strPtr("1990-05-17")},
		{"May 17, 1990", strPtr("1990-05-17")},
		{"not a date", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := NormalizeDate(strPtr(tt.in))
		if !ptrEq(got, tt.want) {
			t.Errorf("NormalizeDate(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
		}
	}
}

func ptrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
