package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	rePhone   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	reQ       = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCoupon  = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,31}$`)
	reRefCode = regexp.MustCompile(`^[A-Z0-9-]{4,32}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Phone accepts digits with an optional leading +, no spaces.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (product/coupon/message ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// CouponCode upper-cases and validates a coupon code.
func CouponCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reCoupon.MatchString(s)
}

// ReferralCode upper-cases and validates a referral code.
func ReferralCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reRefCode.MatchString(s)
}

// Rating parses a 1-5 star rating.
func Rating(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil && n >= 1 && n <= 5
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// Password enforces a simple strength window for signup checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
			hasLetter = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
