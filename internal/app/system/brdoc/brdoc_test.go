package brdoc

import "testing"

func TestValidCPF(t *testing.T) {
	cases := []struct {
		name   string
		digits string
		want   bool
	}{
		{"known valid", "52998224725", true},
		{"another valid", "11144477735", true},
		{"bad check digit", "52998224726", false},
		{"bad first check digit", "52998224715", false},
		{"all same digits", "11111111111", false},
		{"all zeros", "00000000000", false},
		{"too short", "5299822472", false},
		{"too long", "529982247250", false},
		{"empty", "", false},
		{"non numeric", "5299822472a", false},
		{"formatted input not accepted", "529.982.247-25", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidCPF(tc.digits); got != tc.want {
				t.Errorf("ValidCPF(%q) = %v, want %v", tc.digits, got, tc.want)
			}
		})
	}
}
