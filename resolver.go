package xltrack

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Resolver resolves a dotted path against a data object.
// Missing members and nil values fail with an error wrapping ErrNotFound.
type Resolver interface {
	Resolve(path string, root any) (any, error)
}

// LookupFunc returns the member of obj called name, and whether it exists.
type LookupFunc func(obj any, name string) (any, bool)

// LookupResolver walks a dotted path one segment at a time through a LookupFunc.
type LookupResolver struct {
	lookup LookupFunc
}

// NewLookupResolver creates a resolver over fn. A nil fn uses FieldLookup.
func NewLookupResolver(fn LookupFunc) *LookupResolver {
	if fn == nil {
		fn = FieldLookup
	}
	return &LookupResolver{lookup: fn}
}

func (r *LookupResolver) Resolve(path string, root any) (any, error) {
	segments := strings.Split(path, ".")
	cur := root
	for _, seg := range segments {
		if isNil(cur) {
			return nil, notFound(path, seg)
		}
		v, ok := r.lookup(cur, seg)
		if !ok {
			return nil, notFound(path, seg)
		}
		cur = v
	}
	if isNil(cur) {
		return nil, notFound(path, segments[len(segments)-1])
	}
	return cur, nil
}

// FieldLookup finds an exported struct field, an exported niladic method with
// one result, or a string map key named exactly name. Pointers and interfaces
// are followed.
func FieldLookup(obj any, name string) (any, bool) {
	if obj == nil || name == "" {
		return nil, false
	}
	v := reflect.ValueOf(obj)

	if m, ok := methodValue(v, name); ok {
		return m, true
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
		if m, ok := methodValue(v, name); ok {
			return m, true
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		sf, ok := v.Type().FieldByName(name)
		if !ok || !sf.IsExported() {
			return nil, false
		}
		f, err := v.FieldByIndexErr(sf.Index)
		if err != nil {
			return nil, false
		}
		return f.Interface(), true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	}
	return nil, false
}

func methodValue(v reflect.Value, name string) (any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	m := v.MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}
	if m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
		return nil, false
	}
	return m.Call(nil)[0].Interface(), true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Accessor reads one registered path from a root object.
type Accessor func(root any) (any, bool)

// AccessorResolver resolves only pre-registered paths.
type AccessorResolver struct {
	accessors map[string]Accessor
}

// NewAccessorResolver creates a resolver from a path → accessor table.
func NewAccessorResolver(accessors map[string]Accessor) *AccessorResolver {
	m := make(map[string]Accessor, len(accessors))
	for k, v := range accessors {
		m[k] = v
	}
	return &AccessorResolver{accessors: m}
}

// Register adds or replaces the accessor for path.
func (r *AccessorResolver) Register(path string, fn Accessor) {
	r.accessors[path] = fn
}

func (r *AccessorResolver) Resolve(path string, root any) (any, error) {
	fn, ok := r.accessors[path]
	if !ok {
		return nil, notFound(path, "")
	}
	v, ok := fn(root)
	if !ok || isNil(v) {
		return nil, notFound(path, "")
	}
	return v, nil
}

// ExprResolver evaluates paths with expr-lang/expr, compiled against the
// root's type so that unknown members fail at compile time.
type ExprResolver struct {
	cache sync.Map // "type|path" → *vm.Program, struct envs only
}

// NewExprResolver creates an expression-backed resolver.
func NewExprResolver() *ExprResolver {
	return &ExprResolver{}
}

func (r *ExprResolver) Resolve(path string, root any) (any, error) {
	if isNil(root) {
		return nil, notFound(path, "")
	}
	program, err := r.compile(path, root)
	if err != nil {
		return nil, &BindingError{Path: path, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
	}
	result, err := expr.Run(program, root)
	if err != nil {
		return nil, &BindingError{Path: path, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
	}
	if isNil(result) {
		return nil, notFound(path, "")
	}
	return result, nil
}

func (r *ExprResolver) compile(path string, env any) (*vm.Program, error) {
	// A map env's value types vary per store, so only struct envs are cached.
	cacheable := reflect.Indirect(reflect.ValueOf(env)).Kind() != reflect.Map
	key := fmt.Sprintf("%T|%s", env, path)
	if cacheable {
		if cached, ok := r.cache.Load(key); ok {
			return cached.(*vm.Program), nil
		}
	}
	program, err := expr.Compile(path, expr.Env(env))
	if err != nil {
		return nil, err
	}
	if cacheable {
		r.cache.Store(key, program)
	}
	return program, nil
}
