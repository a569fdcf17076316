package fields

import (
	"regexp"
	"strings"
)

// calculationIDPattern matches Tableau's internal calculated-field identifiers.
var calculationIDPattern = regexp.MustCompile(`^Calculation_\d+$`)

// bracketedCalculationID finds calculation identifiers still present in formula text.
var bracketedCalculationID = regexp.MustCompile(`\[(Calculation_\d+)\]`)

// listNumberingPrefix matches captions numbered for sort order, e.g. "1. Period" or "2) Region".
var listNumberingPrefix = regexp.MustCompile(`^\d+[.)]\s*`)

// derivationSuffixes are the pill-type suffixes Tableau appends to column-instance names.
var derivationSuffixes = map[string]bool{
	"qk": true,
	"nk": true,
	"ok": true,
}

// IsCalculationID reports whether name is an internal identifier of the form Calculation_<digits>.
func IsCalculationID(name string) bool {
	return calculationIDPattern.MatchString(name)
}

// StripBrackets removes every '[' and ']' from a Tableau identifier.
// "[Orders].[sales_amount]" becomes "Orders.sales_amount".
func StripBrackets(s string) string {
	if !strings.ContainsAny(s, "[]") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.NewReplacer("[", "", "]", "").Replace(s))
}

// CleanCaption removes list numbering from the start of a caption and trims it.
// A caption that is nothing but numbering is returned trimmed and unchanged.
func CleanCaption(caption string) string {
	trimmed := strings.TrimSpace(caption)
	cleaned := strings.TrimSpace(listNumberingPrefix.ReplaceAllString(trimmed, ""))
	if cleaned == "" {
		return trimmed
	}
	return cleaned
}

// NormalizeFieldReference reduces a worksheet field reference to the name used
// for registry matching.
//
//	[federated.0abc].[none:Region:nk]  -> Region
//	[avg:father_age:qk]                -> avg:father_age
//	[usr:Calculation_1:qk:3]           -> Calculation_1
//
// Three-part references ending in a pill suffix keep their derivation prefix;
// matching relies on the substring fallback to connect "avg:father_age" with
// "father_age".
func NormalizeFieldReference(ref string) string {
	s := strings.TrimSpace(ref)
	if i := strings.LastIndex(s, "].["); i >= 0 {
		s = s[i+2:]
	}
	s = StripBrackets(s)

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) == 3 && derivationSuffixes[parts[2]] {
			s = parts[0] + ":" + parts[1]
		} else {
			s = parts[1]
		}
	}

	s = strings.NewReplacer(":qk", "", ":nk", "", ":ok", "", "none:", "").Replace(s)
	return strings.TrimSpace(s)
}
