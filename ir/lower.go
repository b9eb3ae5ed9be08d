package ir

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/quarryql/quarry/ast"
	"github.com/quarryql/quarry/filter"
	"github.com/quarryql/quarry/queryerr"
	"github.com/quarryql/quarry/schema"
	"github.com/quarryql/quarry/value"
)

// builder carries the mutable state threaded through one Compile call:
// the schema being checked against, the bound query arguments, the
// globally-unique output names seen so far, the stack of tag scopes (one
// per component, innermost on top), and the collected validation
// diagnostics (spec §7 "collected greedily").
type builder struct {
	schema      *schema.Schema
	args        map[string]value.Value
	usedArgs    map[string]bool
	outputNames map[string]bool
	tagScopes   []map[string]bool
	bundle      *queryerr.Bundle
}

// Compile type-checks a parsed query document against sch and lowers it
// to a Query, substituting `$name` argument references with their bound
// Values (spec §4.3). Validation diagnostics are collected greedily; if
// any were recorded, Compile returns them as a single *queryerr.Bundle
// rather than the first one encountered.
func Compile(doc *ast.Document, sch *schema.Schema, args map[string]value.Value) (*Query, error) {
	b := &builder{
		schema:      sch,
		args:        args,
		usedArgs:    map[string]bool{},
		outputNames: map[string]bool{},
		bundle:      &queryerr.Bundle{},
	}
	b.pushScope()

	if len(doc.Root.Selections) != 1 {
		return nil, queryerr.New(queryerr.StageValidation, queryerr.CodeUnknownField,
			"a query's root selection set must name exactly one root edge")
	}
	rootField, ok := doc.Root.Selections[0].(*ast.Field)
	if !ok {
		return nil, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownField,
			doc.Root.Selections[0].Position(), "the root selection must be a field, not an inline type coercion")
	}

	isEdge, err := b.schema.IsEdgeField(schema.RootSchemaQuery, rootField.Name)
	if err != nil || !isEdge {
		return nil, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownField,
			rootField.Pos, "root field %q is not a defined edge of %s", rootField.Name, schema.RootSchemaQuery)
	}
	target, err := b.schema.FieldType(schema.RootSchemaQuery, rootField.Name)
	if err != nil {
		return nil, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownField, rootField.Pos, "%s", err)
	}
	targetName, _, _ := schema.Unwrap(target)

	if rootField.SelectionSet == nil {
		return nil, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeScalarEdgeMismatch,
			rootField.Pos, "root edge %q requires a nested selection", rootField.Name)
	}

	rootArgs, err := b.lowerEdgeArguments(rootField, schema.RootSchemaQuery)
	if err != nil {
		b.bundle.Add(err.(*queryerr.Diagnostic))
	}

	root := b.lowerVertex(rootField.SelectionSet, targetName.String())

	if b.bundle.Len() > 0 {
		return nil, b.bundle
	}
	return &Query{RootEdge: rootField.Name, RootArguments: rootArgs, Root: root, Arguments: b.usedArgs}, nil
}

func (b *builder) pushScope() { b.tagScopes = append(b.tagScopes, map[string]bool{}) }
func (b *builder) popScope()  { b.tagScopes = b.tagScopes[:len(b.tagScopes)-1] }

func (b *builder) defineTag(name string) { b.tagScopes[len(b.tagScopes)-1][name] = true }

func (b *builder) tagDefined(name string) bool {
	for i := len(b.tagScopes) - 1; i >= 0; i-- {
		if b.tagScopes[i][name] {
			return true
		}
	}
	return false
}

func (b *builder) addf(code queryerr.Code, pos int, format string, args ...interface{}) {
	b.bundle.Add(queryerr.NewAt(queryerr.StageValidation, code, pos, format, args...))
}

// lowerVertex lowers every selection in selSet against typeName into a
// Vertex. Errors on individual selections are recorded in the bundle and
// that selection is skipped, so validation can proceed greedily across
// the rest of the selection set (spec §7).
func (b *builder) lowerVertex(selSet *ast.SelectionSet, typeName string) *Vertex {
	v := &Vertex{TypeName: typeName}
	for _, sel := range selSet.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			b.lowerField(v, s, typeName)
		case *ast.InlineCoercion:
			b.lowerCoercion(v, s, typeName)
		}
	}
	return v
}

func (b *builder) lowerCoercion(v *Vertex, c *ast.InlineCoercion, typeName string) {
	if !b.schema.IsSubtype(c.TypeName, typeName) {
		if _, ok := b.schema.LookupType(c.TypeName); !ok {
			b.addf(queryerr.CodeUnknownCoercionType, c.Pos, "unknown type %q in inline coercion", c.TypeName)
			return
		}
		b.addf(queryerr.CodeNonSubtypeCoercion, c.Pos, "%q is not a subtype of %s", c.TypeName, typeName)
		return
	}
	inner := b.lowerVertex(c.SelectionSet, c.TypeName)
	v.Coercions = append(v.Coercions, &Coercion{TargetType: c.TypeName, Inner: inner})
}

func (b *builder) lowerField(v *Vertex, f *ast.Field, typeName string) {
	isEdge, err := b.schema.IsEdgeField(typeName, f.Name)
	if err != nil {
		b.addf(queryerr.CodeUnknownField, f.Pos, "%s", err)
		return
	}
	fieldType, err := b.schema.FieldType(typeName, f.Name)
	if err != nil {
		b.addf(queryerr.CodeUnknownField, f.Pos, "%s", err)
		return
	}

	if err := b.checkDirectiveLegality(f, isEdge); err != nil {
		b.bundle.Add(err.(*queryerr.Diagnostic))
		return
	}

	if isEdge {
		b.lowerEdge(v, f, fieldType)
		return
	}

	if f.SelectionSet != nil {
		b.addf(queryerr.CodeScalarEdgeMismatch, f.Pos, "field %q is a scalar property and cannot carry a nested selection", f.Name)
		return
	}
	b.lowerScalarDirectives(v, f, fieldType)
}

// checkDirectiveLegality enforces spec §4.3 check 4: known directive
// name, correct location, repeatability, and mutual-exclusion pairs.
func (b *builder) checkDirectiveLegality(f *ast.Field, isEdge bool) error {
	loc := schema.LocationScalarField
	if isEdge {
		loc = schema.LocationEdgeField
	}
	seen := map[schema.DirectiveName]int{}
	var present []schema.DirectiveName
	for _, d := range f.Directives {
		name := schema.DirectiveName(d.Name)
		rule, ok := schema.BuiltinDirectives[name]
		if !ok {
			return queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownDirective, d.Pos, "unknown directive @%s", d.Name)
		}
		locOK := false
		for _, l := range rule.Locations {
			if l == loc {
				locOK = true
			}
		}
		if !locOK {
			return queryerr.NewAt(queryerr.StageValidation, queryerr.CodeDirectiveWrongLocation, d.Pos,
				"directive @%s is not allowed on a %s", d.Name, loc)
		}
		seen[name]++
		if seen[name] > 1 && !rule.Repeatable {
			return queryerr.NewAt(queryerr.StageValidation, queryerr.CodeConflictingDirectives, d.Pos,
				"directive @%s may not repeat on one field", d.Name)
		}
		present = append(present, name)
	}
	for _, name := range present {
		rule := schema.BuiltinDirectives[name]
		for _, excluded := range rule.Excludes {
			for _, other := range present {
				if other == excluded {
					return queryerr.NewAt(queryerr.StageValidation, queryerr.CodeConflictingDirectives, f.Pos,
						"directive @%s may not combine with @%s on the same field", name, excluded)
				}
			}
		}
	}
	// @transform is only meaningful alongside @fold on an edge field.
	hasTransform, hasFold, hasOutput := false, false, false
	for _, name := range present {
		if name == schema.DirectiveTransform {
			hasTransform = true
		}
		if name == schema.DirectiveFold {
			hasFold = true
		}
		if name == schema.DirectiveOutput {
			hasOutput = true
		}
	}
	if hasTransform && !hasFold {
		return queryerr.NewAt(queryerr.StageValidation, queryerr.CodeConflictingDirectives, f.Pos,
			"@transform requires @fold on the same edge")
	}
	// @output on an edge field only ever names a fold's aggregate (spec §3
	// invariant iii, §4.3 check 2): a plain edge has no scalar value of
	// its own to output.
	if isEdge && hasOutput && !hasFold {
		return queryerr.NewAt(queryerr.StageValidation, queryerr.CodeScalarEdgeMismatch, f.Pos,
			"@output on an edge field requires @fold")
	}
	return nil
}

func (b *builder) lowerScalarDirectives(v *Vertex, f *ast.Field, fieldType schema.Type) {
	inner, _, _ := schema.Unwrap(fieldType)
	sc, _ := inner.(*schema.Scalar)
	scalarName := ""
	if sc != nil {
		scalarName = sc.Name
	}

	for _, d := range f.Directives {
		switch schema.DirectiveName(d.Name) {
		case schema.DirectiveTag:
			name := f.Name
			if nameArg, ok := d.Arg("name"); ok {
				name = nameArg.Value.S
			}
			b.defineTag(name)
			v.Tags = append(v.Tags, &Tag{Name: name, Property: f.Name})
		case schema.DirectiveOutput:
			name := f.OutputName()
			if nameArg, ok := d.Arg("name"); ok {
				name = nameArg.Value.S
			}
			if b.outputNames[name] {
				b.addf(queryerr.CodeDuplicateOutputName, d.Pos, "duplicate output name %q", name)
				continue
			}
			b.outputNames[name] = true
			v.Outputs = append(v.Outputs, &Output{Name: name, Property: f.Name})
		case schema.DirectiveFilter:
			if fl := b.buildFilter(d, f.Name, scalarName); fl != nil {
				v.Filters = append(v.Filters, fl)
			}
		}
	}
}

// buildFilter lowers one `@filter` directive application into a Filter,
// checking operator existence, arity (spec §4.3 check 5), and operand
// kind against scalarName. property names the IR field the filter's left
// operand reads ("" for a post-fold aggregate filter on an edge).
// Returns nil if a fatal error for this directive was recorded.
func (b *builder) buildFilter(d ast.Directive, property, scalarName string) *Filter {
	opArg, ok := d.Arg("op")
	if !ok || opArg.Value.Kind != ast.LitString {
		b.addf(queryerr.CodeUnknownOperator, d.Pos, "@filter requires a string \"op\" argument")
		return nil
	}
	op := filter.Op(opArg.Value.S)
	rule, ok := filter.Rules[op]
	if !ok {
		b.addf(queryerr.CodeUnknownOperator, d.Pos, "unknown filter operator %q", opArg.Value.S)
		return nil
	}

	var rawOperands []ast.Literal
	if valueArg, ok := d.Arg("value"); ok {
		if valueArg.Value.Kind == ast.LitList {
			rawOperands = valueArg.Value.List
		} else {
			rawOperands = []ast.Literal{valueArg.Value}
		}
	}
	if err := filter.CheckArity(op, len(rawOperands)); err != nil {
		b.addf(queryerr.CodeOperatorArityMismatch, d.Pos, "%s", err)
		return nil
	}

	if !classAllowsScalar(rule.Class, scalarName) {
		b.addf(queryerr.CodeOperandTypeMismatch, d.Pos, "operator %q does not accept a value of type %s", op, scalarName)
		return nil
	}

	operands := make([]Operand, 0, len(rawOperands))
	for _, lit := range rawOperands {
		o, err := b.resolveOperand(lit)
		if err != nil {
			b.bundle.Add(err.(*queryerr.Diagnostic))
			continue
		}
		operands = append(operands, o)
	}

	var compiled *regexp.Regexp
	if op == filter.Regex || op == filter.NotRegex {
		if len(operands) == 1 && operands[0].Kind == OperandLiteral {
			re, err := filter.CompileRegex(operands[0].Literal.Str())
			if err != nil {
				b.addf(queryerr.CodeRegexFailure, d.Pos, "invalid regex: %s", err)
				return nil
			}
			compiled = re
		}
	}

	return &Filter{Op: op, Property: property, Operands: operands, Compiled: compiled}
}

func classAllowsScalar(class filter.OperandClass, scalarName string) bool {
	switch class {
	case filter.ClassString:
		return scalarName == "String" || scalarName == "ID"
	case filter.ClassComparable:
		return scalarName == "Int" || scalarName == "Float" || scalarName == "String" || scalarName == "ID"
	default:
		return true
	}
}

// resolveOperand turns a parsed argument literal into an Operand: `$name`
// is substituted with its bound Value (spec §4.3 check 7); `%name` stays
// a symbolic tag reference, checked against the visible tag scopes (spec
// §4.3 check 6); anything else is converted directly.
func (b *builder) resolveOperand(lit ast.Literal) (Operand, error) {
	switch lit.Kind {
	case ast.LitVar:
		v, ok := b.args[lit.S]
		if !ok {
			return Operand{}, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeMissingQueryArgument,
				lit.Pos, "query argument $%s was not supplied", lit.S)
		}
		b.usedArgs[lit.S] = true
		return Operand{Kind: OperandLiteral, Literal: v}, nil
	case ast.LitTagRef:
		if !b.tagDefined(lit.S) {
			return Operand{}, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownTag,
				lit.Pos, "tag %%%s is not defined earlier in this component", lit.S)
		}
		return Operand{Kind: OperandTagRef, TagName: lit.S}, nil
	default:
		return Operand{Kind: OperandLiteral, Literal: astLiteralToValue(lit)}, nil
	}
}

func astLiteralToValue(lit ast.Literal) value.Value {
	switch lit.Kind {
	case ast.LitInt:
		return value.FromInt64(lit.I)
	case ast.LitFloat:
		return value.FromFloat64(lit.F)
	case ast.LitString:
		return value.FromString(lit.S)
	case ast.LitBool:
		return value.FromBool(lit.B)
	case ast.LitEnum:
		return value.FromEnum(lit.S)
	case ast.LitList:
		out := make([]value.Value, len(lit.List))
		for i, e := range lit.List {
			out[i] = astLiteralToValue(e)
		}
		return value.FromList(out)
	default:
		return value.NullValue()
	}
}

func (b *builder) lowerEdge(v *Vertex, f *ast.Field, fieldType schema.Type) {
	if f.SelectionSet == nil {
		b.addf(queryerr.CodeScalarEdgeMismatch, f.Pos, "edge field %q requires a nested selection", f.Name)
		return
	}

	kind := EdgeMandatory
	depth := 0
	transformOp := ""
	outputName := ""
	var edgeFilterDirectives []ast.Directive
	for _, d := range f.Directives {
		switch schema.DirectiveName(d.Name) {
		case schema.DirectiveFilter:
			edgeFilterDirectives = append(edgeFilterDirectives, d)
		case schema.DirectiveOptional:
			kind = EdgeOptional
		case schema.DirectiveFold:
			kind = EdgeFold
		case schema.DirectiveRecurse:
			kind = EdgeRecurse
			depthArg, ok := d.Arg("depth")
			if !ok || depthArg.Value.Kind != ast.LitInt || depthArg.Value.I < 1 {
				b.addf(queryerr.CodeOperandTypeMismatch, d.Pos, "@recurse requires an integer \"depth\" argument >= 1")
				continue
			}
			depth = int(depthArg.Value.I)
		case schema.DirectiveTransform:
			opArg, ok := d.Arg("op")
			if !ok || opArg.Value.Kind != ast.LitString || !schema.KnownTransforms[opArg.Value.S] {
				b.addf(queryerr.CodeUnknownOperator, d.Pos, "unknown transform %v", opArg.Value.S)
				continue
			}
			transformOp = opArg.Value.S
		case schema.DirectiveOutput:
			outputName = f.OutputName()
			if nameArg, ok := d.Arg("name"); ok {
				outputName = nameArg.Value.S
			}
			if b.outputNames[outputName] {
				b.addf(queryerr.CodeDuplicateOutputName, d.Pos, "duplicate output name %q", outputName)
			} else {
				b.outputNames[outputName] = true
			}
		}
	}

	targetName, _, _ := schema.Unwrap(fieldType)

	if kind == EdgeRecurse {
		if !b.schema.IsSubtype(targetName.String(), v.TypeName) && !b.schema.IsSubtype(v.TypeName, targetName.String()) {
			b.addf(queryerr.CodeEdgeVarianceViolation, f.Pos,
				"@recurse edge %q target %s is not type-compatible with %s", f.Name, targetName, v.TypeName)
		}
	}

	args, err := b.lowerEdgeArguments(f, v.TypeName)
	if err != nil {
		b.bundle.Add(err.(*queryerr.Diagnostic))
	}

	if kind == EdgeFold {
		b.pushScope()
	}
	target := b.lowerVertex(f.SelectionSet, targetName.String())
	if kind == EdgeFold {
		b.popScope()
	}

	aggregateScalar := ""
	if transformOp == "count" {
		aggregateScalar = "Int"
	}
	var filters []*Filter
	for _, d := range edgeFilterDirectives {
		if fl := b.buildFilter(d, "", aggregateScalar); fl != nil {
			filters = append(filters, fl)
		}
	}

	e := &Edge{
		Name:         f.Name,
		Kind:         kind,
		RecurseDepth: depth,
		Arguments:    args,
		Target:       target,
		TransformOp:  transformOp,
		OutputName:   outputName,
		Filters:      filters,
	}
	if kind == EdgeFold {
		e.FoldID = uuid.New()
	}
	v.Edges = append(v.Edges, e)
}

func (b *builder) lowerEdgeArguments(f *ast.Field, typeName string) (map[string]Operand, error) {
	params, err := b.schema.EdgeParameters(typeName, f.Name)
	if err != nil {
		return nil, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownField, f.Pos, "%s", err)
	}
	out := map[string]Operand{}
	for _, p := range params {
		if p.HasDefault {
			out[p.Name] = Operand{Kind: OperandLiteral, Literal: p.Default.(value.Value)}
		}
	}
	for _, a := range f.Arguments {
		found := false
		for _, p := range params {
			if p.Name == a.Name {
				found = true
			}
		}
		if !found {
			return nil, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownField, a.Pos,
				"edge %q has no parameter %q", f.Name, a.Name)
		}
		if a.Value.Kind == ast.LitTagRef {
			return nil, queryerr.NewAt(queryerr.StageValidation, queryerr.CodeUnknownTag, a.Pos,
				"tag references are not allowed in edge arguments")
		}
		o, err := b.resolveOperand(a.Value)
		if err != nil {
			return nil, err
		}
		out[a.Name] = o
	}
	return out, nil
}
