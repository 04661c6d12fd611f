package domain

import "strings"

// CPF validation and formatting. A CPF is the 11-digit Brazilian national
// identifier with two mod-11 check digits.

// CleanCPF strips everything that is not a digit.
func CleanCPF(cpf string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cpf)
}

// IsValidCPF reports whether cpf (formatted or not) is a valid CPF:
// exactly 11 digits, not all identical, and both check digits match.
func IsValidCPF(cpf string) bool {
	digits := CleanCPF(cpf)
	if len(digits) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	return checkDigit(digits, 9) && checkDigit(digits, 10)
}

// checkDigit verifies the check digit at position pos (9 or 10) using the
// weighted mod-11 sum over the preceding digits. Weights run from pos+1
// down to 2; a remainder of 10 or 11 maps to 0.
func checkDigit(digits string, pos int) bool {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(digits[i]-'0') * (pos + 1 - i)
	}
	d := 11 - (sum % 11)
	if d >= 10 {
		d = 0
	}
	return d == int(digits[pos]-'0')
}

// FormatCPF renders a CPF (or a prefix of one, for live input masking) with
// separators: 000.000.000-00. Partial input gets only the separators its
// length has earned, so the mask can be applied on every keystroke.
func FormatCPF(cpf string) string {
	digits := CleanCPF(cpf)
	if len(digits) > 11 {
		digits = digits[:11]
	}

	switch n := len(digits); {
	case n <= 3:
		return digits
	case n <= 6:
		return digits[:3] + "." + digits[3:]
	case n <= 9:
		return digits[:3] + "." + digits[3:6] + "." + digits[6:]
	default:
		return digits[:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:]
	}
}
