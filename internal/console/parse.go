package console

import "strings"

// maxID bounds parsed ids; anything larger cannot name a subsystem.
const maxID = 100000000

// leadingInt reads an optionally signed decimal at the start of s, after
// leading blanks. Trailing text is ignored. ok is false when no digit is
// found.
func leadingInt(s string) (n int, ok bool) {
	s = strings.TrimLeft(s, " \t\r\n\v\f")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		ok = true
		if n < maxID {
			n = n*10 + int(r-'0')
		}
	}
	if neg {
		n = -n
	}
	return n, ok
}

// atoi is leadingInt without the flag: text that is not a number reads as 0,
// which never names a subsystem.
func atoi(s string) int {
	n, _ := leadingInt(s)
	return n
}
