package news

import (
	"strconv"
	"strings"
)

// numberForm stands in for a numeric part when it is compared with a
// release-stage word.
const numberForm = "#"

// stageOrder ranks release-stage words. Words are matched by prefix in this
// order, so "alpha" wins over "a" and "pre" ranks as "p".
var stageOrder = []struct {
	prefix string
	rank   int
}{
	{"dev", 0},
	{"alpha", 1},
	{"a", 1},
	{"beta", 2},
	{"b", 2},
	{"RC", 3},
	{"rc", 3},
	{numberForm, 4},
	{"pl", 5},
	{"p", 5},
}

// CompareVersions orders two version strings the way release tooling
// commonly does: dev < alpha < beta < RC < release < patch level. Separators
// (".", "-", "_", "+") and digit/letter boundaries split parts. It returns -1,
// 0 or 1.
func CompareVersions(a, b string) int {
	if a == "" || b == "" {
		switch {
		case a == "" && b == "":
			return 0
		case a == "":
			return -1
		default:
			return 1
		}
	}

	pa := versionParts(a)
	pb := versionParts(b)
	n := min(len(pa), len(pb))
	for i := 0; i < n; i++ {
		if c := comparePart(pa[i], pb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(pa) > n:
		if isDigits(pa[n]) {
			return 1
		}
		return CompareVersions(pa[n], numberForm)
	case len(pb) > n:
		if isDigits(pb[n]) {
			return -1
		}
		return CompareVersions(numberForm, pb[n])
	}
	return 0
}

func comparePart(a, b string) int {
	aNum, bNum := isDigits(a), isDigits(b)
	switch {
	case aNum && bNum:
		return compareNumbers(a, b)
	case !aNum && !bNum:
		return compareInts(stageRank(a), stageRank(b))
	case aNum:
		return compareInts(stageRank(numberForm), stageRank(b))
	default:
		return compareInts(stageRank(a), stageRank(numberForm))
	}
}

func stageRank(part string) int {
	for _, form := range stageOrder {
		if strings.HasPrefix(part, form.prefix) {
			return form.rank
		}
	}
	return -6
}

func compareNumbers(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return compareInts(int(ai), int(bi))
	}
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return compareInts(len(a), len(b))
	}
	return strings.Compare(a, b)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// versionParts canonicalizes v and splits it into comparable parts.
func versionParts(v string) []string {
	var b strings.Builder
	b.Grow(len(v) * 2)
	last := byte(0)
	lastOut := byte(0)
	dot := func() {
		if lastOut != '.' {
			b.WriteByte('.')
			lastOut = '.'
		}
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case i == 0:
			b.WriteByte(c)
			lastOut = c
		case c == '-' || c == '_' || c == '+':
			dot()
		case (isNonDigit(last) && isDigit(c)) || (isDigit(last) && isNonDigit(c)):
			dot()
			b.WriteByte(c)
			lastOut = c
		case !isAlnum(c):
			dot()
		default:
			b.WriteByte(c)
			lastOut = c
		}
		last = c
	}
	raw := strings.Split(b.String(), ".")
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNonDigit(c byte) bool { return !isDigit(c) && c != '.' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
