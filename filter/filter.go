// Package filter implements the fixed operator kernel used to evaluate
// `@filter` directives against property Values (spec §4.4): a closed set
// of comparison, membership, string, regex, and nullness operators, each
// with a declared operand arity and accepted operand Kinds, generalized
// from go.appointy.com/jaal's schemabuilder argument-coercion switch into
// a table-driven dispatch keyed by operator name.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quarryql/quarry/value"
)

// Op names the filter operators the engine recognizes (spec §4.4).
type Op string

const (
	Equals            Op = "="
	NotEquals         Op = "!="
	LessThan          Op = "<"
	LessOrEqual       Op = "<="
	GreaterThan       Op = ">"
	GreaterOrEqual    Op = ">="
	Contains          Op = "contains"
	NotContains       Op = "not_contains"
	OneOf             Op = "one_of"
	NotOneOf          Op = "not_one_of"
	HasPrefix         Op = "has_prefix"
	HasSuffix         Op = "has_suffix"
	HasSubstring      Op = "has_substring"
	NotHasPrefix      Op = "not_has_prefix"
	NotHasSuffix      Op = "not_has_suffix"
	NotHasSubstring   Op = "not_has_substring"
	Regex             Op = "regex"
	NotRegex          Op = "not_regex"
	IsNull            Op = "is_null"
	IsNotNull         Op = "is_not_null"
)

// Arity describes how many right-hand operands an operator expects.
type Arity int

const (
	ArityZero Arity = iota // is_null, is_not_null: no right-hand operand
	ArityOne               // a single right-hand operand
	ArityList              // one_of, not_one_of: a non-empty list of operands
)

// OperandClass names what kind of property value an operator accepts on
// its left (subject) operand.
type OperandClass int

const (
	ClassAny OperandClass = iota
	ClassComparable          // numeric kinds or string, cross-kind numeric allowed
	ClassString
	ClassEquatable // anything Equal can compare: used by =, != , one_of
)

// Rule is one operator's static signature, checked at IR-lowering time
// (spec §4.3 check 5).
type Rule struct {
	Op     Op
	Arity  Arity
	Class  OperandClass
}

// Rules is the fixed, closed table of recognized operators (spec §4.4).
var Rules = map[Op]Rule{
	Equals:          {Equals, ArityOne, ClassEquatable},
	NotEquals:       {NotEquals, ArityOne, ClassEquatable},
	LessThan:        {LessThan, ArityOne, ClassComparable},
	LessOrEqual:     {LessOrEqual, ArityOne, ClassComparable},
	GreaterThan:     {GreaterThan, ArityOne, ClassComparable},
	GreaterOrEqual:  {GreaterOrEqual, ArityOne, ClassComparable},
	Contains:        {Contains, ArityOne, ClassAny},
	NotContains:     {NotContains, ArityOne, ClassAny},
	OneOf:           {OneOf, ArityList, ClassEquatable},
	NotOneOf:        {NotOneOf, ArityList, ClassEquatable},
	HasPrefix:       {HasPrefix, ArityOne, ClassString},
	HasSuffix:       {HasSuffix, ArityOne, ClassString},
	HasSubstring:    {HasSubstring, ArityOne, ClassString},
	NotHasPrefix:    {NotHasPrefix, ArityOne, ClassString},
	NotHasSuffix:    {NotHasSuffix, ArityOne, ClassString},
	NotHasSubstring: {NotHasSubstring, ArityOne, ClassString},
	Regex:           {Regex, ArityOne, ClassString},
	NotRegex:        {NotRegex, ArityOne, ClassString},
	IsNull:          {IsNull, ArityZero, ClassAny},
	IsNotNull:       {IsNotNull, ArityZero, ClassAny},
}

// UnknownOperatorError reports a filter naming an operator outside Rules.
type UnknownOperatorError struct{ Op string }

func (e *UnknownOperatorError) Error() string { return fmt.Sprintf("unknown filter operator %q", e.Op) }

// ArityError reports a right-hand operand list of the wrong length.
type ArityError struct {
	Op       Op
	Expected Arity
	Got      int
}

func (e *ArityError) Error() string {
	switch e.Expected {
	case ArityZero:
		return fmt.Sprintf("operator %q takes no operands, got %d", e.Op, e.Got)
	case ArityList:
		return fmt.Sprintf("operator %q requires a non-empty operand list", e.Op)
	default:
		return fmt.Sprintf("operator %q requires exactly one operand, got %d", e.Op, e.Got)
	}
}

// OperandTypeError reports a runtime mismatch between a property's Kind
// and what the operator accepts (spec §4.5, §7: runtime query error).
type OperandTypeError struct {
	Op   Op
	Kind value.Kind
}

func (e *OperandTypeError) Error() string {
	return fmt.Sprintf("operator %q does not accept operand of kind %s", e.Op, e.Kind)
}

// CheckArity validates a right-hand operand count against an operator's
// declared arity, at IR-lowering time.
func CheckArity(op Op, operands int) error {
	rule, ok := Rules[op]
	if !ok {
		return &UnknownOperatorError{Op: string(op)}
	}
	switch rule.Arity {
	case ArityZero:
		if operands != 0 {
			return &ArityError{Op: op, Expected: ArityZero, Got: operands}
		}
	case ArityList:
		if operands == 0 {
			return &ArityError{Op: op, Expected: ArityList, Got: operands}
		}
	case ArityOne:
		if operands != 1 {
			return &ArityError{Op: op, Expected: ArityOne, Got: operands}
		}
	}
	return nil
}

// Eval applies op to a subject Value and its right-hand operands,
// returning whether the subject passes the filter. It never returns an
// error for nulls: operator rules dictate null handling (spec §4.5)
// except where the operator's class genuinely cannot accept the kind it
// was given, which is a runtime fault.
func Eval(op Op, subject value.Value, operands []value.Value, compiled *regexp.Regexp) (bool, error) {
	rule, ok := Rules[op]
	if !ok {
		return false, &UnknownOperatorError{Op: string(op)}
	}

	switch op {
	case IsNull:
		return subject.Kind() == value.Null, nil
	case IsNotNull:
		return subject.Kind() != value.Null, nil
	}

	if rule.Class != ClassEquatable && subject.Kind() == value.Null {
		return false, nil
	}

	switch op {
	case Equals:
		return value.Equal(subject, operands[0]), nil
	case NotEquals:
		return !value.Equal(subject, operands[0]), nil
	case LessThan, LessOrEqual, GreaterThan, GreaterOrEqual:
		cmp, err := value.Compare(subject, operands[0])
		if err != nil {
			return false, err
		}
		switch op {
		case LessThan:
			return cmp < 0, nil
		case LessOrEqual:
			return cmp <= 0, nil
		case GreaterThan:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case OneOf:
		for _, o := range operands {
			if value.Equal(subject, o) {
				return true, nil
			}
		}
		return false, nil
	case NotOneOf:
		for _, o := range operands {
			if value.Equal(subject, o) {
				return false, nil
			}
		}
		return true, nil
	case Contains, NotContains:
		if subject.Kind() != value.List {
			return false, &OperandTypeError{Op: op, Kind: subject.Kind()}
		}
		found := false
		for _, el := range subject.List() {
			if value.Equal(el, operands[0]) {
				found = true
				break
			}
		}
		if op == Contains {
			return found, nil
		}
		return !found, nil
	case HasPrefix, NotHasPrefix, HasSuffix, NotHasSuffix, HasSubstring, NotHasSubstring:
		if subject.Kind() != value.String && subject.Kind() != value.Enum {
			return false, &OperandTypeError{Op: op, Kind: subject.Kind()}
		}
		if operands[0].Kind() != value.String && operands[0].Kind() != value.Enum {
			return false, &OperandTypeError{Op: op, Kind: operands[0].Kind()}
		}
		s := subject.Str()
		needle := operands[0].Str()
		var match bool
		switch op {
		case HasPrefix, NotHasPrefix:
			match = strings.HasPrefix(s, needle)
		case HasSuffix, NotHasSuffix:
			match = strings.HasSuffix(s, needle)
		default:
			match = strings.Contains(s, needle)
		}
		if op == HasPrefix || op == HasSuffix || op == HasSubstring {
			return match, nil
		}
		return !match, nil
	case Regex, NotRegex:
		if subject.Kind() != value.String && subject.Kind() != value.Enum {
			return false, &OperandTypeError{Op: op, Kind: subject.Kind()}
		}
		s := subject.Str()
		if compiled == nil {
			return false, fmt.Errorf("regex operator %q missing its compiled pattern", op)
		}
		match := compiled.MatchString(s)
		if op == Regex {
			return match, nil
		}
		return !match, nil
	default:
		return false, &UnknownOperatorError{Op: string(op)}
	}
}

// CompileRegex compiles a regex filter's pattern operand once, at
// IR-lowering time, so the interpreter never recompiles per-row (spec
// §4.4, §5 "Shared resources").
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}
