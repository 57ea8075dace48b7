package container

import (
	"context"
	"fmt"
	"reflect"

	"github.com/junioryono/digbridge"
	"go.uber.org/dig"
)

var (
	errorType = reflect.TypeFor[error]()
	inType    = reflect.TypeFor[dig.In]()

	// Provided by the container to every scope.
	reservedTypes = []reflect.Type{
		reflect.TypeFor[context.Context](),
		reflect.TypeFor[digbridge.Scope](),
	}
)

// serviceTypeOf validates constructor and returns the type it builds.
func serviceTypeOf(constructor any) (reflect.Type, error) {
	if constructor == nil {
		return nil, ErrConstructorNil
	}

	fnType := reflect.TypeOf(constructor)
	if fnType.Kind() != reflect.Func {
		return nil, ErrConstructorNotFunc
	}

	if fnType.IsVariadic() {
		return nil, ErrConstructorVariadic
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, ErrConstructorResults
		}
	default:
		return nil, ErrConstructorResults
	}

	out := fnType.Out(0)
	if out == errorType {
		return nil, ErrConstructorResults
	}

	if dig.IsOut(out) {
		return out, ErrConstructorOut
	}

	for _, reserved := range reservedTypes {
		if out == reserved {
			return out, ErrConstructorReserved
		}
	}

	return out, nil
}

// trackingConstructor wraps constructor so that every instance it builds is
// handed to track before dig caches it.
func trackingConstructor(constructor any, track func(any)) any {
	fnType := reflect.TypeOf(constructor)
	fnValue := reflect.ValueOf(constructor)

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		results := fnValue.Call(args)

		if len(results) == 2 && !results[1].IsNil() {
			return results
		}

		if !isNil(results[0]) {
			track(results[0].Interface())
		}

		return results
	}).Interface()
}

// forwarder returns func(struct{ dig.In; Value T `name:"name"` }) T, which
// exposes the named registration as the unnamed T other constructors depend on.
func forwarder(serviceType reflect.Type, name string) any {
	paramType := namedParams(serviceType, []string{name})
	fnType := reflect.FuncOf([]reflect.Type{paramType}, []reflect.Type{serviceType}, false)

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		return []reflect.Value{args[0].Field(1)}
	}).Interface()
}

// bridge returns func() (T, error) that builds T elsewhere through fetch.
// fetch hands the built value to its sink.
func bridge(serviceType reflect.Type, fetch func(sink func([]reflect.Value)) error) any {
	fnType := reflect.FuncOf(nil, []reflect.Type{serviceType, errorType}, false)

	return reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		value := reflect.Zero(serviceType)
		err := fetch(func(values []reflect.Value) {
			value = values[0]
		})

		errValue := reflect.Zero(errorType)
		if err != nil {
			errValue = reflect.ValueOf(&err).Elem()
		}

		return []reflect.Value{value, errValue}
	}).Interface()
}

// extractor returns func(T) that stores its argument in sink.
func extractor(serviceType reflect.Type, sink func(reflect.Value)) any {
	fnType := reflect.FuncOf([]reflect.Type{serviceType}, nil, false)

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		sink(args[0])
		return nil
	}).Interface()
}

// namedExtractor returns func(struct{ dig.In; V0 T `name:"n0"`; ... }) that
// stores every field, in order, in sink.
func namedExtractor(serviceType reflect.Type, names []string, sink func([]reflect.Value)) any {
	paramType := namedParams(serviceType, names)
	fnType := reflect.FuncOf([]reflect.Type{paramType}, nil, false)

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		values := make([]reflect.Value, 0, len(names))
		for i := range names {
			values = append(values, args[0].Field(i+1))
		}
		sink(values)
		return nil
	}).Interface()
}

// namedParams builds a dig parameter object with one field of serviceType
// per name. Field 0 is the embedded dig.In.
func namedParams(serviceType reflect.Type, names []string) reflect.Type {
	fields := make([]reflect.StructField, 0, len(names)+1)
	fields = append(fields, reflect.StructField{
		Name:      "In",
		Type:      inType,
		Anonymous: true,
	})

	for i, name := range names {
		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("Value%d", i),
			Type: serviceType,
			Tag:  reflect.StructTag(fmt.Sprintf(`name:"%s"`, name)),
		})
	}

	return reflect.StructOf(fields)
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// dependencies lists the unnamed types constructor asks dig for. Fields of
// dig.In parameter objects count; named and group fields do not.
func dependencies(constructor any) []reflect.Type {
	fnType := reflect.TypeOf(constructor)

	deps := make([]reflect.Type, 0, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		in := fnType.In(i)
		if !dig.IsIn(in) {
			deps = append(deps, in)
			continue
		}

		for j := 0; j < in.NumField(); j++ {
			field := in.Field(j)
			if field.Type == inType || field.Tag.Get("name") != "" || field.Tag.Get("group") != "" {
				continue
			}
			deps = append(deps, field.Type)
		}
	}

	return deps
}

// checkCycle reports ErrConstructorCycle when constructor, registered as the
// primary serviceType, would depend on serviceType again. primaryOf returns
// the primary constructor of a type, or nil.
func checkCycle(serviceType reflect.Type, constructor any, primaryOf func(reflect.Type) any) error {
	seen := make(map[reflect.Type]bool)
	pending := dependencies(constructor)

	for len(pending) > 0 {
		t := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if t == serviceType {
			return fmt.Errorf("%w: %s", ErrConstructorCycle, serviceType)
		}
		if seen[t] {
			continue
		}
		seen[t] = true

		if next := primaryOf(t); next != nil {
			pending = append(pending, dependencies(next)...)
		}
	}

	return nil
}
