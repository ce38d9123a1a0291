package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Maria Silva", "Maria Silva"},
		{"  Maria Silva  ", "Maria Silva"},
		{"", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"admin", "ADMIN"},
		{"  Leader  ", "LEADER"},
		{"SUPPORTER", "SUPPORTER"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Role(tt.input)
			if got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCPFDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"529.982.247-25", "52998224725"},
		{"52998224725", "52998224725"},
		{" 529 982 247 25 ", "52998224725"},
		{"", ""},
		{"abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CPFDigits(tt.input)
			if got != tt.want {
				t.Errorf("CPFDigits(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBirthDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"brazilian format", "25/12/1990", "1990-12-25"},
		{"iso input dropped", "2024-12-25", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"wrong separator count", "25/12", ""},
		{"short year", "25/12/90", ""},
		{"single digit day", "5/12/1990", ""},
		{"non numeric", "aa/bb/cccc", ""},
		{"garbage", "not a date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BirthDate(tt.input)
			if got != tt.want {
				t.Errorf("BirthDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBirthDateBR(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"storage form", "1990-12-25", "25/12/1990"},
		{"empty", "", ""},
		{"garbage", "not a date", ""},
		{"wrong shape", "25/12/1990", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BirthDateBR(tt.input)
			if got != tt.want {
				t.Errorf("BirthDateBR(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBirthDateRoundTrip(t *testing.T) {
	// A form prefilled from storage must survive an unchanged resubmit.
	stored := "1990-12-25"
	if got := BirthDate(BirthDateBR(stored)); got != stored {
		t.Errorf("round trip = %q, want %q", got, stored)
	}
}
