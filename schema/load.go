package schema

import (
	"fmt"
	"sort"
)

// Schema is the loaded, validated type registry a compiled query is
// checked against. It is immutable after Load returns and may be shared
// across concurrently executing queries (spec §5 "Shared resources").
type Schema struct {
	objects    map[string]*Object
	interfaces map[string]*Interface
	unions     map[string]*Union
}

// LoadError is a schema-load error: an unknown type reference, an edge
// variance violation, a duplicate definition, or a malformed directive
// declaration (spec §7).
type LoadError struct {
	Offset  int
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema: %s (at byte %d)", e.Message, e.Offset)
}

// Load parses and validates a schema document, returning the Schema the
// compiler checks queries against.
func Load(src string) (*Schema, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		objects:    map[string]*Object{},
		interfaces: map[string]*Interface{},
		unions:     map[string]*Union{},
	}

	for _, o := range doc.objects {
		if _, dup := s.objects[o.name]; dup {
			return nil, &LoadError{Offset: o.pos, Message: "duplicate type " + o.name}
		}
		if _, dup := builtinScalars[o.name]; dup {
			return nil, &LoadError{Offset: o.pos, Message: "type " + o.name + " collides with a built-in scalar"}
		}
		s.objects[o.name] = &Object{Name: o.name, Implements: append([]string(nil), o.implements...)}
	}
	for _, i := range doc.interfaces {
		if _, dup := s.interfaces[i.name]; dup {
			return nil, &LoadError{Offset: i.pos, Message: "duplicate type " + i.name}
		}
		s.interfaces[i.name] = &Interface{Name: i.name}
	}
	for _, u := range doc.unions {
		if _, dup := s.unions[u.name]; dup {
			return nil, &LoadError{Offset: u.pos, Message: "duplicate type " + u.name}
		}
		s.unions[u.name] = &Union{Name: u.name, Members: append([]string(nil), u.members...)}
	}

	if _, ok := s.objects[RootSchemaQuery]; !ok {
		return nil, &LoadError{Message: "schema document must define a " + RootSchemaQuery + " type"}
	}

	for _, u := range s.unions {
		for _, m := range u.Members {
			if _, ok := s.objects[m]; !ok {
				return nil, &LoadError{Message: "union " + u.Name + " references unknown member type " + m}
			}
		}
	}
	for _, o := range s.objects {
		for _, ifaceName := range o.Implements {
			if _, ok := s.interfaces[ifaceName]; !ok {
				return nil, &LoadError{Message: "type " + o.Name + " implements unknown interface " + ifaceName}
			}
		}
	}

	// Fields are resolved after every type name is known, so forward
	// references (a field whose type is declared later in the document)
	// work without a second document pass over the source text.
	for _, o := range doc.objects {
		fields, err := s.resolveFields(o.fields)
		if err != nil {
			return nil, err
		}
		obj := s.objects[o.name]
		obj.Properties, obj.Edges = fields.properties, fields.edges
	}
	for _, i := range doc.interfaces {
		fields, err := s.resolveFields(i.fields)
		if err != nil {
			return nil, err
		}
		iface := s.interfaces[i.name]
		iface.Properties, iface.Edges = fields.properties, fields.edges
	}

	if err := s.checkInterfaceConformance(); err != nil {
		return nil, err
	}
	if err := s.checkEdgeVariance(); err != nil {
		return nil, err
	}

	return s, nil
}

type resolvedFields struct {
	properties map[string]*Property
	edges      map[string]*Edge
}

func (s *Schema) resolveFields(fields []fieldDefNode) (*resolvedFields, error) {
	rf := &resolvedFields{properties: map[string]*Property{}, edges: map[string]*Edge{}}
	for _, f := range fields {
		if _, dup := rf.properties[f.name]; dup {
			return nil, &LoadError{Offset: f.pos, Message: "duplicate field " + f.name}
		}
		if _, dup := rf.edges[f.name]; dup {
			return nil, &LoadError{Offset: f.pos, Message: "duplicate field " + f.name}
		}
		t, err := s.resolveTypeRef(f.typ)
		if err != nil {
			return nil, err
		}
		if isScalarField(t) {
			rf.properties[f.name] = &Property{Name: f.name, Type: t}
			continue
		}
		params, err := s.resolveParams(f.args)
		if err != nil {
			return nil, err
		}
		rf.edges[f.name] = &Edge{Name: f.name, Target: t, Parameters: params}
	}
	return rf, nil
}

// isScalarField reports whether a resolved field type is (possibly
// wrapped) a Scalar, i.e. a property field rather than an edge.
func isScalarField(t Type) bool {
	inner, _, _ := Unwrap(t)
	_, ok := inner.(*Scalar)
	return ok
}

func (s *Schema) resolveParams(args []argDefNode) ([]Parameter, error) {
	var params []Parameter
	seen := map[string]bool{}
	for _, a := range args {
		if seen[a.name] {
			return nil, &LoadError{Offset: a.pos, Message: "duplicate parameter " + a.name}
		}
		seen[a.name] = true
		t, err := s.resolveTypeRef(a.typ)
		if err != nil {
			return nil, err
		}
		p := Parameter{Name: a.name, Type: t}
		if a.hasDefault {
			v, err := coerceLiteral(a.def, t)
			if err != nil {
				return nil, &LoadError{Offset: a.pos, Message: "parameter " + a.name + ": " + err.Error()}
			}
			p.HasDefault = true
			p.Default = v
		}
		params = append(params, p)
	}
	return params, nil
}

func (s *Schema) resolveTypeRef(t *typeRefNode) (Type, error) {
	switch {
	case t.list:
		inner, err := s.resolveTypeRef(t.of)
		if err != nil {
			return nil, err
		}
		return &List{Of: inner}, nil
	case t.nonNull:
		inner, err := s.resolveTypeRef(t.of)
		if err != nil {
			return nil, err
		}
		return &NonNull{Of: inner}, nil
	default:
		if sc, ok := builtinScalars[t.name]; ok {
			return sc, nil
		}
		if o, ok := s.objects[t.name]; ok {
			return o, nil
		}
		if i, ok := s.interfaces[t.name]; ok {
			return i, nil
		}
		if u, ok := s.unions[t.name]; ok {
			return u, nil
		}
		return nil, &LoadError{Message: "unknown type " + t.name}
	}
}

// checkInterfaceConformance enforces that every object implementing an
// interface actually carries every property/edge the interface declares
// (by name; exact type match is enforced transitively by checkEdgeVariance
// for edges, and properties must match exactly since spec has no property
// covariance rule).
func (s *Schema) checkInterfaceConformance() error {
	for _, o := range s.objects {
		for _, ifaceName := range o.Implements {
			iface := s.interfaces[ifaceName]
			for name, p := range iface.Properties {
				op, ok := o.Properties[name]
				if !ok {
					return &LoadError{Message: fmt.Sprintf("type %s implements %s but is missing property %s", o.Name, ifaceName, name)}
				}
				if op.Type.String() != p.Type.String() {
					return &LoadError{Message: fmt.Sprintf("type %s.%s (%s) does not match interface %s.%s (%s)", o.Name, name, op.Type, ifaceName, name, p.Type)}
				}
			}
			for name := range iface.Edges {
				if _, ok := o.Edges[name]; !ok {
					return &LoadError{Message: fmt.Sprintf("type %s implements %s but is missing edge %s", o.Name, ifaceName, name)}
				}
			}
		}
	}
	return nil
}

// checkEdgeVariance enforces spec §3's invariant: an object's edge may not
// widen the nullability or list-ness its interface declares for the same
// edge name.
func (s *Schema) checkEdgeVariance() error {
	for _, o := range s.objects {
		for _, ifaceName := range o.Implements {
			iface := s.interfaces[ifaceName]
			for name, ifaceEdge := range iface.Edges {
				objEdge, ok := o.Edges[name]
				if !ok {
					continue // reported by checkInterfaceConformance already
				}
				if err := checkVariance(o.Name, name, ifaceEdge.Target, objEdge.Target); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkVariance(typeName, edgeName string, ifaceTarget, objTarget Type) error {
	_, ifaceNonNull, ifaceList := Unwrap(ifaceTarget)
	_, objNonNull, objList := Unwrap(objTarget)
	if ifaceNonNull && !objNonNull {
		return &LoadError{Message: fmt.Sprintf("%s.%s widens nullability of a non-null interface edge", typeName, edgeName)}
	}
	if !ifaceList && objList {
		return &LoadError{Message: fmt.Sprintf("%s.%s widens a scalar edge to a list", typeName, edgeName)}
	}
	return nil
}

// IsSubtype reports whether sub is (reflexively) a subtype of super: the
// same type, an object implementing the interface super, or an object
// member of the union super.
func (s *Schema) IsSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	if o, ok := s.objects[sub]; ok {
		for _, ifaceName := range o.Implements {
			if ifaceName == super {
				return true
			}
		}
	}
	if u, ok := s.unions[super]; ok {
		for _, m := range u.Members {
			if m == sub {
				return true
			}
		}
	}
	return false
}

// LookupType resolves a type name to its Type value (Scalar, *Object,
// *Interface, or *Union).
func (s *Schema) LookupType(name string) (Type, bool) {
	if sc, ok := builtinScalars[name]; ok {
		return sc, true
	}
	if o, ok := s.objects[name]; ok {
		return o, true
	}
	if i, ok := s.interfaces[name]; ok {
		return i, true
	}
	if u, ok := s.unions[name]; ok {
		return u, true
	}
	return nil, false
}

// FieldType returns the declared type of a property or edge field on the
// named type, taking interface inheritance into account (spec §4.1).
func (s *Schema) FieldType(typeName, field string) (Type, error) {
	props, edges, err := s.fieldsOf(typeName)
	if err != nil {
		return nil, err
	}
	if p, ok := props[field]; ok {
		return p.Type, nil
	}
	if e, ok := edges[field]; ok {
		return e.Target, nil
	}
	return nil, fmt.Errorf("schema: type %s has no field %s", typeName, field)
}

// IsEdgeField reports whether field on typeName is an edge (object-typed)
// field rather than a scalar property.
func (s *Schema) IsEdgeField(typeName, field string) (bool, error) {
	_, edges, err := s.fieldsOf(typeName)
	if err != nil {
		return false, err
	}
	_, ok := edges[field]
	return ok, nil
}

// EdgeParameters returns the parameter signature for an edge field.
func (s *Schema) EdgeParameters(typeName, field string) ([]Parameter, error) {
	_, edges, err := s.fieldsOf(typeName)
	if err != nil {
		return nil, err
	}
	e, ok := edges[field]
	if !ok {
		return nil, fmt.Errorf("schema: %s.%s is not an edge field", typeName, field)
	}
	return e.Parameters, nil
}

func (s *Schema) fieldsOf(typeName string) (map[string]*Property, map[string]*Edge, error) {
	if o, ok := s.objects[typeName]; ok {
		return o.Properties, o.Edges, nil
	}
	if i, ok := s.interfaces[typeName]; ok {
		return i.Properties, i.Edges, nil
	}
	if _, ok := s.unions[typeName]; ok {
		return nil, nil, nil // unions carry no fields; only inline coercions select fields
	}
	return nil, nil, fmt.Errorf("schema: unknown type %s", typeName)
}

// Implementers returns the names of every object implementing the named
// interface, sorted for deterministic iteration.
func (s *Schema) Implementers(ifaceName string) []string {
	var out []string
	for _, o := range s.objects {
		for _, i := range o.Implements {
			if i == ifaceName {
				out = append(out, o.Name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// UnionMembers returns the member object names of the named union.
func (s *Schema) UnionMembers(unionName string) []string {
	if u, ok := s.unions[unionName]; ok {
		return append([]string(nil), u.Members...)
	}
	return nil
}
