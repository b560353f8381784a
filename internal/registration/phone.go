package registration

import (
	"strings"

	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
)

// NormalizePhone converts common North American and international input to
// E.164. Blank input stays blank.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}

	plus := strings.HasPrefix(s, "+")
	if plus {
		s = s[1:]
	}
	var digits strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", invalidPhone()
		}
	}
	d := digits.String()

	switch {
	case plus && len(d) >= 8 && len(d) <= 15:
		return "+" + d, nil
	case plus:
		return "", invalidPhone()
	case len(d) == 10:
		return "+1" + d, nil
	case len(d) == 11 && d[0] == '1':
		return "+" + d, nil
	}
	return "", invalidPhone()
}

func invalidPhone() error {
	return dErrors.NewField(dErrors.CodeValidation, "phone", "Phone number is invalid")
}
