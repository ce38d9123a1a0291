// Package normalize canonicalizes user-supplied form values before they are
// validated or written to the database. Every handler runs its inputs through
// these helpers so the stores only ever see one spelling of each value.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving its case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Phone trims a phone number, preserving its formatting.
func Phone(s string) string {
	return strings.TrimSpace(s)
}

// Role uppercases and trims a role value (SUPPORTER, LEADER, ADMIN).
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// CPFDigits strips everything except digits from a CPF, so both
// "529.982.247-25" and "52998224725" normalize to "52998224725".
func CPFDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BirthDate converts a Brazilian DD/MM/YYYY date to the storage form
// YYYY-MM-DD. Anything else (wrong shape, non-numeric parts, already-ISO
// input) normalizes to "", meaning "not provided" - malformed dates are
// dropped rather than rejected.
func BirthDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ""
	}
	day, month, year := parts[0], parts[1], parts[2]
	if len(day) != 2 || len(month) != 2 || len(year) != 4 {
		return ""
	}
	if !allDigits(day) || !allDigits(month) || !allDigits(year) {
		return ""
	}
	return year + "-" + month + "-" + day
}

// BirthDateBR converts a stored YYYY-MM-DD date back to the DD/MM/YYYY form
// the forms use, so a prefilled date survives an unchanged resubmit. Empty
// or unexpected values come back as "".
func BirthDateBR(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return ""
	}
	year, month, day := parts[0], parts[1], parts[2]
	if len(year) != 4 || len(month) != 2 || len(day) != 2 {
		return ""
	}
	if !allDigits(year) || !allDigits(month) || !allDigits(day) {
		return ""
	}
	return day + "/" + month + "/" + year
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
