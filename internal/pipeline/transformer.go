// =============================================================================
// Survey Address Converter - Transformation Engine
// =============================================================================
//
// This module applies declarative field rules to table columns. A rule names
// a column and an ordered list of actions; every action takes the current
// value and returns the next one. The field normalizer is expressed as a set
// of such rules.
//
// SUPPORTED ACTIONS:
//   - trim                  : Remove leading and trailing whitespace
//   - uppercase             : Convert to uppercase
//   - remove_spaces         : Remove every space character
//   - replace               : Replace Find with Value
//   - extract_digits        : Keep only the characters 0-9
//   - truncate              : Keep at most Value characters
//   - pad_zeros_to_length   : Left-pad with zeros to Value characters;
//                             empty values stay empty
//   - if_empty_use_default  : Use Value when the value is empty
//
// =============================================================================

package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// =============================================================================
// RULE STRUCTURES
// =============================================================================

// Action is a single transformation step.
type Action struct {
	// Type is one of the supported action names.
	Type string

	// Value is the action parameter (length, default value, replacement).
	Value string

	// Find is the substring searched by "replace".
	Find string
}

// Rule applies a list of actions to one column.
type Rule struct {
	Field   string
	Actions []Action
}

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies rules to values and tables.
type Transformer struct {
	rules []Rule
}

// NewTransformer validates the rules and returns a Transformer.
func NewTransformer(rules []Rule) (*Transformer, error) {
	for _, rule := range rules {
		for _, action := range rule.Actions {
			if err := checkAction(action); err != nil {
				return nil, fmt.Errorf("rule for %s: %w", rule.Field, err)
			}
		}
	}
	return &Transformer{rules: rules}, nil
}

// MustTransformer is like NewTransformer but panics on invalid rules. It is
// meant for package-level rule sets.
func MustTransformer(rules []Rule) *Transformer {
	t, err := NewTransformer(rules)
	if err != nil {
		panic(err)
	}
	return t
}

// Transform applies every rule for fieldName to value.
func (t *Transformer) Transform(fieldName, value string) string {
	for _, rule := range t.rules {
		if rule.Field != fieldName {
			continue
		}
		for _, action := range rule.Actions {
			value = ApplyTransformation(value, action)
		}
	}
	return value
}

// Apply returns a copy of table with every rule applied to its column. Rules
// whose column is not in the table are skipped.
func (t *Transformer) Apply(table types.Table) types.Table {
	out := types.Table{Columns: table.Columns, Rows: make([]types.Record, len(table.Rows))}
	for i, row := range table.Rows {
		next := row.Clone()
		for _, rule := range t.rules {
			if !table.HasColumn(rule.Field) {
				continue
			}
			next[rule.Field] = t.Transform(rule.Field, next[rule.Field])
		}
		out.Rows[i] = next
	}
	return out
}

// =============================================================================
// ACTIONS
// =============================================================================

// checkAction rejects unknown action types and bad numeric parameters.
func checkAction(action Action) error {
	switch action.Type {
	case "trim", "uppercase", "remove_spaces", "replace", "extract_digits", "if_empty_use_default":
		return nil
	case "truncate", "pad_zeros_to_length":
		if n, err := strconv.Atoi(action.Value); err != nil || n < 0 {
			return fmt.Errorf("action %s needs a non-negative length, got %q", action.Type, action.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// ApplyTransformation applies a single action. Actions are validated by
// NewTransformer; an unknown type leaves the value unchanged.
func ApplyTransformation(value string, action Action) string {
	switch action.Type {
	case "trim":
		return strings.TrimSpace(value)

	case "uppercase":
		return strings.ToUpper(value)

	case "remove_spaces":
		return strings.ReplaceAll(value, " ", "")

	case "replace":
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "extract_digits":
		// "71.065-071" becomes "71065071".
		var b strings.Builder
		for _, r := range value {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()

	case "truncate":
		n, _ := strconv.Atoi(action.Value)
		runes := []rune(value)
		if len(runes) > n {
			return string(runes[:n])
		}
		return value

	case "pad_zeros_to_length":
		// "1065071" with length 8 becomes "01065071".
		if value == "" {
			return value
		}
		n, _ := strconv.Atoi(action.Value)
		return PadLeft(value, n, '0')

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value
		}
		return value

	default:
		return value
	}
}

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	runes := []rune(s)
	if len(runes) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(runes)) + s
}
