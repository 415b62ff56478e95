package bookinfo

import (
	"strings"
	"unicode"
)

// pickISBN returns the first valid ISBN-13 among candidates, else the first
// valid ISBN-10, else "". Open Library lists every edition's ISBNs and some
// of them fail their checksum.
func pickISBN(candidates []string) string {
	isbn10 := ""
	for _, c := range candidates {
		n := normalizeISBN(c)
		switch {
		case validISBN13(n):
			return n
		case isbn10 == "" && validISBN10(n):
			isbn10 = n
		}
	}
	return isbn10
}

func normalizeISBN(value string) string {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "ISBN")
	value = strings.TrimPrefix(value, ":")

	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validISBN10 checks the mod 11 checksum; X stands for 10 in the last place.
func validISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}
	sum := 0
	for i, r := range isbn {
		digit := int(r - '0')
		if r == 'X' {
			if i != 9 {
				return false
			}
			digit = 10
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	sum := 0
	for i, r := range isbn {
		if r == 'X' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(r-'0') * weight
	}
	return sum%10 == 0
}
