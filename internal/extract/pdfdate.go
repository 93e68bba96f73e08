package extract

import "regexp"

// Everything after the 4-digit year is optional in the PDF date grammar.
var pdfDateRE = regexp.MustCompile(
	`^D:(\d{4})(\d{2})?(\d{2})?(\d{2})?(\d{2})?(\d{2})?([Z+\-])?(\d{2})?'?(\d{2})?'?`)

// ParsePDFDate converts a PDF date string (D:YYYYMMDDHHmmSS with an
// optional Z or +/-HH'mm' zone) to ISO-8601. Missing month and day default
// to 01, missing time components to 00. The second return is false when
// the input is not a PDF date; callers keep the raw value in that case.
func ParsePDFDate(value string) (string, bool) {
	m := pdfDateRE.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}

	year := m[1]
	month := orDefault(m[2], "01")
	day := orDefault(m[3], "01")
	hour := orDefault(m[4], "00")
	minute := orDefault(m[5], "00")
	second := orDefault(m[6], "00")

	iso := year + "-" + month + "-" + day + "T" + hour + ":" + minute + ":" + second

	switch zone := m[7]; zone {
	case "", "Z":
		iso += "Z"
	default:
		iso += zone + orDefault(m[8], "00") + ":" + orDefault(m[9], "00")
	}
	return iso, true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
