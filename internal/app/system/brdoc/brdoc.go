// Package brdoc validates Brazilian identity documents.
package brdoc

// ValidCPF reports whether digits is a valid CPF. The input must already be
// normalized to exactly 11 numeric characters (see normalize.CPFDigits);
// anything else is invalid. Sequences of a single repeated digit pass the
// checksum but are not real CPFs, so they are rejected too.
func ValidCPF(digits string) bool {
	if len(digits) != 11 {
		return false
	}
	allSame := true
	for i := 0; i < 11; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		if c != digits[0] {
			allSame = false
		}
	}
	if allSame {
		return false
	}

	if checkDigit(digits, 9) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits, 10) == int(digits[10]-'0')
}

// checkDigit computes the verification digit over the first n digits using
// the standard CPF weighting: sum(digit[i] * (n+1-i)), then (sum*10 % 11) % 10.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	return sum * 10 % 11 % 10
}
