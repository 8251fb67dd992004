package division

// Codes are six decimal digits: two for the province, two for the
// prefecture, two for the county. A zero pair means the code addresses the
// division above it, so 110000 is Beijing itself and 110108 is a county-level
// district inside it.

// Split returns the three two-digit parts of code.
func Split(code int) (province, prefecture, county int) {
	return code / 10000, (code % 10000) / 100, code % 100
}

// Join assembles a code from its three two-digit parts.
func Join(province, prefecture, county int) int {
	return province*10000 + prefecture*100 + county
}

// Level returns the administrative level (1-3) implied by the structure of
// code. It does not check that code exists in any dataset.
func Level(code int) int {
	province, prefecture, county := Split(code)
	level := 3
	for _, part := range []int{province, prefecture, county} {
		if part == 0 {
			level--
		}
	}
	return level
}

// Parents returns the codes that contain code at levels 1, 2 and 3. The
// entry at the code's own level is the code itself.
func Parents(code int) (l1, l2, l3 int) {
	return code - code%10000, code - code%100, code
}

// Parent returns the immediate-parent code prefix for a record at level.
// Level-1 divisions have no parent and report zero.
func Parent(code, level int) int {
	switch level {
	case 2:
		return code - code%10000
	case 3:
		return code - code%100
	default:
		return 0
	}
}

// Within reports whether division a lies within (or is the same as)
// division b. Neither code is checked for existence.
func Within(a, b int) bool {
	aProv, aPref, _ := Split(a)
	bProv, bPref, bCounty := Split(b)
	if bCounty != 0 {
		return a == b
	}
	if bPref != 0 {
		return aProv == bProv && aPref == bPref
	}
	return aProv == bProv
}

// ValidCode reports whether code has the six-digit shape of a GB/T 2260
// code: a non-zero province part and no digits above the sixth.
func ValidCode(code int) bool {
	return code >= 100000 && code <= 999999
}
