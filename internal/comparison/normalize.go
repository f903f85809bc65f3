package comparison

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes raw according to spec.Type. It never fails: values that
// cannot be interpreted come back unparseable with a reason.
func Normalize(raw string, spec FieldSpec) Value {
	b, ok := behaviors[spec.Type]
	if !ok {
		return unparseable(spec.Type, "unknown field type %q", spec.Type)
	}
	return b.normalize(raw, spec)
}

var (
	// isoCodePrefix and isoCodeSuffix match a three-letter currency code such as "USD".
	isoCodePrefix = regexp.MustCompile(`^[A-Z]{3}`)
	isoCodeSuffix = regexp.MustCompile(`[A-Z]{3}$`)
	plainNumber   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	commaGrouped  = regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)
	dotGrouped    = regexp.MustCompile(`^\d{1,3}(\.\d{3})*$`)
)

// currencyAbbreviations are the non-ISO currency markers accepted next to an amount.
// Longer forms come first so "Rs." is not split into "Rs" and a stray dot.
var currencyAbbreviations = []string{"Rs.", "Rs", "kr.", "kr"}

func normalizeAmount(raw string, _ FieldSpec) Value {
	s := strings.TrimSpace(norm.NFKC.String(raw))
	parens := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	if parens {
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	// One sign at most, either side of the currency code: "-USD 5" or "USD -5".
	s, negative, signed := trimSign(s)
	s = trimCurrencyCode(s)
	if !signed {
		s, negative, signed = trimSign(s)
	}
	if parens && signed {
		return unparseable(FieldTypeAmount, "sign inside parentheses in %q", raw)
	}
	if parens {
		negative = true
	}

	if s == "" {
		return unparseable(FieldTypeAmount, "no digits in %q", raw)
	}
	s, ok := resolveSeparators(s)
	if !ok {
		return unparseable(FieldTypeAmount, "malformed digit grouping in %q", raw)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if !plainNumber.MatchString(s) {
		return unparseable(FieldTypeAmount, "non-numeric residue in %q", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return unparseable(FieldTypeAmount, "invalid amount %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return amountValue(d)
}

// trimSign strips one leading '-' or '+' and reports whether it saw one.
func trimSign(s string) (rest string, negative, signed bool) {
	switch {
	case strings.HasPrefix(s, "-"):
		return s[1:], true, true
	case strings.HasPrefix(s, "+"):
		return s[1:], false, true
	default:
		return s, false, false
	}
}

// trimCurrencyCode removes a single currency marker from one end of s.
func trimCurrencyCode(s string) string {
	for _, abbr := range currencyAbbreviations {
		if strings.HasPrefix(s, abbr) {
			return s[len(abbr):]
		}
		if strings.HasSuffix(s, abbr) {
			return s[:len(s)-len(abbr)]
		}
	}
	if loc := isoCodePrefix.FindStringIndex(s); loc != nil {
		return s[loc[1]:]
	}
	if loc := isoCodeSuffix.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

// resolveSeparators rewrites thousands and decimal separators into a plain
// "1234.56" form. When both '.' and ',' appear the rightmost one is the decimal
// separator; a single ',' followed by one or two digits is a decimal comma;
// otherwise repeated separators of one kind are thousands separators. Thousands
// groups after the first must hold exactly three digits, or ok is false.
func resolveSeparators(s string) (out string, ok bool) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		at, grouped, sep := lastDot, commaGrouped, ","
		if lastComma > lastDot {
			at, grouped, sep = lastComma, dotGrouped, "."
		}
		if !grouped.MatchString(s[:at]) {
			return s, false
		}
		return strings.ReplaceAll(s[:at], sep, "") + "." + s[at+1:], true
	case lastComma >= 0:
		decimals := len(s) - lastComma - 1
		if strings.Count(s, ",") == 1 && decimals >= 1 && decimals <= 2 {
			return strings.Replace(s, ",", ".", 1), true
		}
		if !commaGrouped.MatchString(s) {
			return s, false
		}
		return strings.ReplaceAll(s, ",", ""), true
	case strings.Count(s, ".") > 1:
		if !dotGrouped.MatchString(s) {
			return s, false
		}
		return strings.ReplaceAll(s, ".", ""), true
	}
	return s, true
}

// dateLayouts is tried in order; day-first numeric forms win over month-first ones.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"20060102",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"1-2-2006",
	"1/2/2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	"2-1-2006 15:04:05",
	time.RFC3339,
}

func normalizeDate(raw string, _ FieldSpec) Value {
	s := strings.Join(strings.Fields(norm.NFKC.String(raw)), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateValue(Date{Year: t.Year(), Month: t.Month(), Day: t.Day()})
		}
	}
	return unparseable(FieldTypeDate, "no known date format matches %q", raw)
}

func fold(s string) string {
	// Casers are stateful; one per call keeps normalization safe for concurrent use.
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

func normalizeIdentifier(raw string, spec FieldSpec) Value {
	var b strings.Builder
	for _, r := range fold(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(spec.KeepChars, r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return unparseable(FieldTypeIdentifier, "no alphanumeric characters in %q", raw)
	}
	return textValue(FieldTypeIdentifier, b.String())
}

func normalizeFreeText(raw string, _ FieldSpec) Value {
	s := strings.Join(strings.Fields(fold(raw)), " ")
	if s == "" {
		return unparseable(FieldTypeFreeText, "empty text")
	}
	return textValue(FieldTypeFreeText, s)
}
