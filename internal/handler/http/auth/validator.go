package auth

import (
	"fmt"
	"strings"
)

var keyboardPatterns = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm", "qwerty", "asdfgh", "zxcvb"}

// CheckPassword applies the password policy to a configured account.
// The returned message never contains the password.
func CheckPassword(pass string, minLength int, weak []string) error {
	if pass == "" {
		return fmt.Errorf("password must not be empty")
	}
	if len(pass) < minLength {
		return fmt.Errorf("password must be at least %d characters (current length: %d)", minLength, len(pass))
	}
	if isRepeatedChar(pass) || isDigitSequence(pass) {
		return fmt.Errorf("password must not be a simple numeric pattern")
	}
	lower := strings.ToLower(pass)
	for _, p := range keyboardPatterns {
		if strings.Contains(lower, p) || strings.Contains(lower, reverse(p)) {
			return fmt.Errorf("password must not be a keyboard pattern")
		}
	}
	for _, w := range weak {
		w = strings.ToLower(w)
		if lower == w {
			return fmt.Errorf("password must not be a weak password")
		}
		// "admin123456!" の様な弱いパスワード+数字の組み合わせも拒否
		if strings.HasPrefix(lower, w) && len(pass) < minLength+5 {
			return fmt.Errorf("password must not be based on common weak passwords")
		}
	}
	return nil
}

func isRepeatedChar(pass string) bool {
	for i := 1; i < len(pass); i++ {
		if pass[i] != pass[0] {
			return false
		}
	}
	return len(pass) > 0
}

// isDigitSequence matches runs like 123456789012 or 987654321098.
func isDigitSequence(pass string) bool {
	asc, desc := true, true
	for i := 0; i < len(pass); i++ {
		if pass[i] < '0' || pass[i] > '9' {
			return false
		}
		if i == 0 {
			continue
		}
		diff := int(pass[i]) - int(pass[i-1])
		if diff != 1 && diff != -9 {
			asc = false
		}
		if diff != -1 && diff != 9 {
			desc = false
		}
	}
	return asc || desc
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
