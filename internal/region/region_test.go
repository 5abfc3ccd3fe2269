package region

import "testing"

func TestRegionString(t *testing.T) {
	tests := []struct {
		name string
		r    Region
		want string
	}{
		{"zero", Zero(), "<generated>"},
		{"single line", New(3, 4, 3, 10), "3:4-10"},
		{"multi line", New(3, 4, 5, 1), "3:4-5:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAtZero(t *testing.T) {
	loc := AtZero(42)
	if !loc.Region.IsZero() {
		t.Errorf("AtZero region = %v, want zero", loc.Region)
	}
	if loc.Value != 42 {
		t.Errorf("AtZero value = %d, want 42", loc.Value)
	}
}
