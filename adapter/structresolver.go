package adapter

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"

	"github.com/quarryql/quarry/value"
)

// fieldInfo is the resolved mapping of one exported struct field to a
// schema property name: the direct generalization of
// schemabuilder/reflect.go's graphQLFieldInfo/parseGraphQLFieldInfo, with
// makeGraphql's hand-rolled first-letter lowercasing replaced by
// strcase.ToLowerCamel (the teacher declares iancoleman/strcase in its
// go.mod without exercising it; this is where it earns its keep) and the
// `graphql`/`json` tag convention replaced by a single `quarry` tag.
type fieldInfo struct {
	structField int // index into reflect.Type.Field
	skipped     bool
}

// StructResolver resolves schema property names against plain Go struct
// values by reflection, caching each struct type's field map the first
// time it is seen. It is a helper combinator for adapters backed by
// native Go structs (spec §4.6 "helper combinators for common
// patterns"), not a requirement: any Adapter implementation may resolve
// properties however it likes.
type StructResolver struct {
	mu    sync.RWMutex
	cache map[reflect.Type]map[string]fieldInfo
}

// NewStructResolver returns a StructResolver with an empty type cache.
func NewStructResolver() *StructResolver {
	return &StructResolver{cache: map[reflect.Type]map[string]fieldInfo{}}
}

func (r *StructResolver) fieldsOf(t reflect.Type) map[string]fieldInfo {
	r.mu.RLock()
	fields, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return fields
	}

	fields = map[string]fieldInfo{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		info := parseFieldInfo(f)
		if info.skipped {
			continue
		}
		name := tagName(f)
		if name == "" {
			name = strcase.ToLowerCamel(f.Name)
		}
		fields[name] = fieldInfo{structField: i}
	}

	r.mu.Lock()
	r.cache[t] = fields
	r.mu.Unlock()
	return fields
}

func parseFieldInfo(f reflect.StructField) fieldInfo {
	if f.PkgPath != "" { // unexported
		return fieldInfo{skipped: true}
	}
	tag := f.Tag.Get("quarry")
	if tag == "-" {
		return fieldInfo{skipped: true}
	}
	return fieldInfo{}
}

func tagName(f reflect.StructField) string {
	tag := f.Tag.Get("quarry")
	if tag == "" {
		return ""
	}
	name := strings.SplitN(tag, ",", 2)[0]
	return strings.TrimSpace(name)
}

// Property reads the named property off obj (a struct or pointer to
// struct) and converts it with value.FromGo. It returns an error if obj
// has no field mapped to that name, so an adapter author sees a
// configuration mistake immediately rather than a silent null.
func (r *StructResolver) Property(obj interface{}, property string) (value.Value, error) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return value.NullValue(), nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return value.Value{}, fmt.Errorf("adapter: Property requires a struct, got %T", obj)
	}
	fields := r.fieldsOf(rv.Type())
	info, ok := fields[property]
	if !ok {
		return value.Value{}, fmt.Errorf("adapter: type %s has no field mapped to property %q", rv.Type(), property)
	}
	return value.FromGo(rv.Field(info.structField).Interface())
}
