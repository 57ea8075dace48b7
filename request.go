package digbridge

import (
	"fmt"
	"reflect"
)

// RequestKind tags a Request.
type RequestKind int

const (
	// SingleRequest asks for one instance of a type.
	SingleRequest RequestKind = iota

	// AllOfRequest asks for every registered instance of an element type.
	AllOfRequest
)

// String returns the string representation of the RequestKind.
func (k RequestKind) String() string {
	switch k {
	case SingleRequest:
		return "Single"
	case AllOfRequest:
		return "AllOf"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Request describes what a caller wants resolved.
// It is either Single(type) or AllOf(elementType), decided once at the call
// boundary.
type Request struct {
	kind RequestKind
	typ  reflect.Type
	elem reflect.Type
}

// Single returns a request for one instance of t.
func Single(t reflect.Type) Request {
	return Request{kind: SingleRequest, typ: t}
}

// AllOf returns a request for every registered instance of elem.
// The resolved value is a []elem.
func AllOf(elem reflect.Type) Request {
	r := Request{kind: AllOfRequest, elem: elem}
	if elem != nil {
		r.typ = reflect.SliceOf(elem)
	}
	return r
}

// RequestFor classifies t: a slice type []E is AllOf(E), anything else is
// Single(t).
func RequestFor(t reflect.Type) Request {
	if t != nil && t.Kind() == reflect.Slice {
		return AllOf(t.Elem())
	}

	return Single(t)
}

// Kind returns the request variant.
func (r Request) Kind() RequestKind {
	return r.kind
}

// Type returns the type the caller receives: t for Single(t), []E for AllOf(E).
func (r Request) Type() reflect.Type {
	return r.typ
}

// Elem returns the element type of an AllOf request, or nil.
func (r Request) Elem() reflect.Type {
	return r.elem
}

// IsAll reports whether r is an AllOf request.
func (r Request) IsAll() bool {
	return r.kind == AllOfRequest
}

func (r Request) String() string {
	if r.IsAll() {
		return fmt.Sprintf("AllOf(%s)", formatType(r.elem))
	}
	return fmt.Sprintf("Single(%s)", formatType(r.typ))
}
