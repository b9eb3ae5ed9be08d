// Package queryerr implements the engine's error taxonomy and the greedy
// collection policy for query validation errors (spec §7): schema-load,
// parse, validation, and runtime faults are each represented as a typed
// Diagnostic, and validation diagnostics accumulate into a Bundle rather
// than aborting on the first one, generalized from go.appointy.com/jaal's
// http.go response-envelope pattern (a slice of jerrors.Error objects
// returned alongside a partial result) into a library-level error value
// with no HTTP framing.
package queryerr

import (
	"fmt"
	"strings"
)

// Stage names which phase of compilation or execution a Diagnostic
// originated from (spec §7).
type Stage string

const (
	StageSchemaLoad Stage = "schema_load"
	StageParse      Stage = "parse"
	StageValidation Stage = "validation"
	StageRuntime    Stage = "runtime"
)

// Code enumerates the specific error kinds within each stage's taxonomy
// (spec §7). It is not exhaustive of every possible message but names
// every kind the spec calls out explicitly, so callers can branch on it
// without string-matching Diagnostic.Message.
type Code string

const (
	CodeUnknownType              Code = "unknown_type"
	CodeEdgeVarianceViolation    Code = "edge_variance_violation"
	CodeDirectiveLocation        Code = "directive_location_violation"
	CodeDuplicateTypeOrField     Code = "duplicate_type_or_field"
	CodeSyntax                   Code = "syntax_error"
	CodeUnknownField             Code = "unknown_field"
	CodeScalarEdgeMismatch       Code = "scalar_edge_mismatch"
	CodeUnknownCoercionType      Code = "unknown_coercion_type"
	CodeNonSubtypeCoercion       Code = "non_subtype_coercion"
	CodeUnknownDirective         Code = "unknown_directive"
	CodeDirectiveWrongLocation   Code = "directive_wrong_location"
	CodeConflictingDirectives    Code = "conflicting_directives"
	CodeUnknownOperator          Code = "unknown_operator"
	CodeOperatorArityMismatch    Code = "operator_arity_mismatch"
	CodeOperandTypeMismatch      Code = "operand_type_mismatch"
	CodeUnknownTag               Code = "unknown_tag"
	CodeTagUsedBeforeDefined     Code = "tag_used_before_defined"
	CodeTagCrossesFoldBoundary   Code = "tag_crosses_fold_boundary"
	CodeMissingQueryArgument     Code = "missing_query_argument"
	CodeQueryArgumentTypeMismatch Code = "query_argument_type_mismatch"
	CodeDuplicateOutputName      Code = "duplicate_output_name"
	CodeAdapterError             Code = "adapter_error"
	CodeRuntimeOperandMismatch   Code = "runtime_operand_mismatch"
	CodeRegexFailure             Code = "regex_failure"
)

// Diagnostic is a single error at a known stage and position, with a
// machine-checkable Code alongside its human message.
type Diagnostic struct {
	Stage   Stage
	Code    Code
	Message string
	Offset  int // byte offset in the originating document; -1 if not applicable
}

func (d *Diagnostic) Error() string {
	if d.Offset >= 0 {
		return fmt.Sprintf("%s: %s (at byte %d)", d.Stage, d.Message, d.Offset)
	}
	return fmt.Sprintf("%s: %s", d.Stage, d.Message)
}

// New builds a Diagnostic with no associated source offset.
func New(stage Stage, code Code, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Stage: stage, Code: code, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// NewAt builds a Diagnostic anchored to a byte offset in the source text.
func NewAt(stage Stage, code Code, offset int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Stage: stage, Code: code, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Bundle collects validation Diagnostics greedily (spec §7: "validation
// errors are collected greedily where possible"). A Bundle with no
// diagnostics is not an error; callers check Len() or call AsError().
type Bundle struct {
	Diagnostics []*Diagnostic
}

// Add appends a diagnostic to the bundle.
func (b *Bundle) Add(d *Diagnostic) { b.Diagnostics = append(b.Diagnostics, d) }

// Len reports how many diagnostics have been collected.
func (b *Bundle) Len() int { return len(b.Diagnostics) }

// AsError returns the bundle as an error if non-empty, else nil. This is
// the conversion point between "accumulate while validating" and "return
// a single error" at a function boundary.
func (b *Bundle) AsError() error {
	if len(b.Diagnostics) == 0 {
		return nil
	}
	return b
}

func (b *Bundle) Error() string {
	if len(b.Diagnostics) == 1 {
		return b.Diagnostics[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(b.Diagnostics))
	for _, d := range b.Diagnostics {
		sb.WriteString("\n  - ")
		sb.WriteString(d.Error())
	}
	return sb.String()
}
