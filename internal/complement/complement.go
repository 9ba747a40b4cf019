// =============================================================================
// Survey Address Converter - Complement Codes
// =============================================================================
//
// An address complement is a free-text qualifier such as "AP101" or "BL 3".
// Its first two letters name a category (apartment, block, lot, ...) and the
// rest is the argument. This package maps the category to the numeric code
// used by the XML import format and extracts the argument.
//
// DEFAULTS:
//   - Unknown, empty or one-letter categories map to code 60 (LT, lote).
//   - An empty or missing argument is reported as "1".
//
// =============================================================================

package complement

import (
	"strconv"
	"strings"
)

// DefaultCode is returned for empty, short or unknown prefixes.
const DefaultCode = 60

// DefaultArgument is returned when a complement carries no argument.
const DefaultArgument = "1"

// codes maps a complement prefix to its category code.
var codes = map[string]int{
	"AC": 1, "AA": 2, "AF": 3, "AL": 4, "AS": 5, "AB": 6, "AN": 7, "AX": 8,
	"AP": 9, "AZ": 10, "AT": 11, "BS": 12, "BA": 13, "BR": 14, "BC": 15, "BL": 16,
	"BX": 17, "CS": 18, "CM": 20, "CP": 21, "CA": 22, "CE": 23, "CT": 24, "CB": 25,
	"CL": 26, "CD": 27, "CJ": 28, "CR": 29, "CO": 30, "DP": 31, "DT": 32, "DV": 34,
	"ED": 35, "EN": 36, "ES": 37, "EC": 38, "ET": 39, "EP": 40, "FO": 42, "FR": 43,
	"FU": 44, "GL": 45, "GP": 46, "GA": 47, "GB": 48, "GJ": 49, "GR": 50, "GH": 52,
	"HG": 53, "LD": 55, "LM": 56, "LH": 57, "LE": 58, "LJ": 59, "LT": 60, "LO": 61,
	"M": 62, "MT": 63, "MC": 64, "MZ": 65, "MD": 66, "NC": 67, "OM": 68, "OG": 69,
	"PC": 70, "PR": 71, "PP": 72, "PV": 73, "PM": 74, "PS": 75, "PA": 76, "PL": 77,
	"P": 78, "PO": 80, "PT": 81, "PD": 82, "PE": 83, "QU": 85, "QT": 86, "KM": 87,
	"QN": 88, "QQ": 89, "RM": 90, "RP": 91, "RF": 92, "RT": 93, "RL": 95, "SL": 96,
	"SC": 97, "SR": 98, "SB": 100, "SJ": 101, "SD": 102, "SU": 103, "SS": 104, "SQ": 105,
	"TN": 106, "TO": 107, "TE": 109, "TV": 110, "TR": 111, "VL": 112, "VZ": 113, "AD": 114,
	"BI": 115, "SA": 116, "NA": 117, "SK": 118, "ND": 119, "SE": 120, "AM": 121, "NR": 122,
	"CH": 124,
}

// Lookup returns the category code for a prefix. Prefixes shorter than two
// characters and unknown prefixes return DefaultCode.
func Lookup(prefix string) int {
	if len([]rune(prefix)) < 2 {
		return DefaultCode
	}
	if code, ok := codes[prefix]; ok {
		return code
	}
	return DefaultCode
}

// Prefixes returns every known prefix. The order is unspecified.
func Prefixes() []string {
	out := make([]string, 0, len(codes))
	for p := range codes {
		out = append(out, p)
	}
	return out
}

// Pair is the decoded form of one complement field.
type Pair struct {
	Code     string
	Argument string
}

// Decode returns the code and argument of a complement.
func Decode(text string) Pair {
	return Pair{Code: CodeFor(text), Argument: ArgumentFor(text)}
}

// CodeFor returns the category code of a complement as a string.
func CodeFor(text string) string {
	if text == "" {
		return strconv.Itoa(DefaultCode)
	}
	runes := []rune(strings.ToUpper(strings.TrimSpace(text)))
	if len(runes) < 2 {
		return strconv.Itoa(DefaultCode)
	}
	return strconv.Itoa(Lookup(string(runes[:2])))
}

// ArgumentFor returns everything after the two-letter category, trimmed.
// Case is preserved.
func ArgumentFor(text string) string {
	if text == "" {
		return DefaultArgument
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) < 2 {
		return DefaultArgument
	}
	arg := strings.TrimSpace(string(runes[2:]))
	if arg == "" {
		return DefaultArgument
	}
	return arg
}
