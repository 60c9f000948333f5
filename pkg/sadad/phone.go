package sadad

import "strings"

// digitTable maps every Persian and Arabic digit, in Unicode and HTML numeric-entity
// form, to its ASCII digit.
var digitTable = [...][2]string{
	{"۰", "0"}, {"۱", "1"}, {"۲", "2"}, {"۳", "3"}, {"۴", "4"},
	{"۵", "5"}, {"۶", "6"}, {"۷", "7"}, {"۸", "8"}, {"۹", "9"},
	{"٠", "0"}, {"١", "1"}, {"٢", "2"}, {"٣", "3"}, {"٤", "4"},
	{"٥", "5"}, {"٦", "6"}, {"٧", "7"}, {"٨", "8"}, {"٩", "9"},
	{"&#1776;", "0"}, {"&#1777;", "1"}, {"&#1778;", "2"}, {"&#1779;", "3"}, {"&#1780;", "4"},
	{"&#1781;", "5"}, {"&#1782;", "6"}, {"&#1783;", "7"}, {"&#1784;", "8"}, {"&#1785;", "9"},
	{"&#1632;", "0"}, {"&#1633;", "1"}, {"&#1634;", "2"}, {"&#1635;", "3"}, {"&#1636;", "4"},
	{"&#1637;", "5"}, {"&#1638;", "6"}, {"&#1639;", "7"}, {"&#1640;", "8"}, {"&#1641;", "9"},
}

// digitReplacer rewrites the input in a single pass, so output is never re-scanned.
var digitReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(digitTable)*2)
	for _, p := range digitTable {
		pairs = append(pairs, p[0], p[1])
	}
	return strings.NewReplacer(pairs...)
}()

const (
	minPhoneDigits = 3
	maxPhoneDigits = 14
)

// NormalizeDigits converts Persian and Arabic digits to ASCII digits and leaves every
// other character untouched.
func NormalizeDigits(input string) string {
	return digitReplacer.Replace(input)
}

// ValidatePhone normalizes a phone number to its digits. It drops punctuation and a
// leading "00" international prefix. An input with no digits returns "" and no error.
func ValidatePhone(input string) (string, error) {
	normalized := NormalizeDigits(input)

	var digits strings.Builder
	for i := 0; i < len(normalized); i++ {
		if b := normalized[i]; b >= '0' && b <= '9' {
			digits.WriteByte(b)
		}
	}
	number := strings.TrimPrefix(digits.String(), "00")

	if number == "" {
		return "", nil
	}
	if len(number) < minPhoneDigits || len(number) > maxPhoneDigits {
		return "", ErrInvalidPhone
	}
	return number, nil
}
