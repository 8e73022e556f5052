// Package types implements the Ursa structural/nominal type model described
// in : primitive constants, type variables, struct/enum/trait
// types, function types, and unions, together with the equality and union
// construction rules the type checker relies on.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the common interface implemented by every member of the type sum.
type Type interface {
	// String renders the type for error messages and debug dumps.
	String() string
	// kind returns a small discriminant used by Equals' fast paths.
	kind() kindTag
}

type kindTag uint8

const (
	kindUndefined kindTag = iota
	kindUnknown
	kindNonterminating
	kindAny
	kindSelf
	kindVar
	kindConst
	kindStruct
	kindEnum
	kindTrait
	kindFn
	kindUnion
)

// Primitive constants.
type primitive struct {
	name string
	k    kindTag
}

func (p *primitive) String() string  { return p.name }
func (p *primitive) kind() kindTag   { return p.k }

var (
	// Undefined denotes the type of a statically-known-invalid member access.
	Undefined Type = &primitive{"Undefined", kindUndefined}
	// Unknown matches only itself; no other type, not even Any, is
	// assignable to or from it.
	Unknown Type = &primitive{"Unknown", kindUnknown}
	// Nonterminating is the type of an expression that never returns a value
	// (e.g. the body of an infinite loop with no reachable break).
	Nonterminating Type = &primitive{"Nonterminating", kindNonterminating}
	// Any matches anything, and anything matches Any.
	Any Type = &primitive{"Any", kindAny}
	// Self resolves to the enclosing type context; using it outside one is a
	// compile error (the compiler, not this package, enforces that).
	Self Type = &primitive{"Self", kindSelf}
)

// TypeVariable names an unbound generic parameter.
type TypeVariable struct {
	Name string
}

func (t *TypeVariable) String() string { return t.Name }
func (t *TypeVariable) kind() kindTag  { return kindVar }

// TypeConstant names a concrete, opaque nominal type with no structure of
// its own (used for host-provided opaque types).
type TypeConstant struct {
	Name string
}

func (t *TypeConstant) String() string { return t.Name }
func (t *TypeConstant) kind() kindTag  { return kindConst }

// StructType describes a user-defined struct's shape.
type StructType struct {
	Name       string
	Members    map[string]Type
	MemberOrd  []string // insertion order, for stable iteration/printing
	TypeParams []string
}

func (t *StructType) String() string {
	if len(t.TypeParams) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(t.TypeParams, ","))
}
func (t *StructType) kind() kindTag { return kindStruct }

// EnumType describes a user-defined enum's variant set.
type EnumType struct {
	Name       string
	Variants   []string
	TypeParams []string
}

func (t *EnumType) String() string { return t.Name }
func (t *EnumType) kind() kindTag  { return kindEnum }

// MethodType is the signature of a single trait method.
type MethodType struct {
	Params     []Type
	ReturnType Type
}

// TraitType describes a named set of method signatures a struct/enum may
// implement, optionally extending other traits.
type TraitType struct {
	Name        string
	Methods     map[string]*MethodType
	SuperTraits []*TraitType
	TypeParams  []string
}

func (t *TraitType) String() string { return t.Name }
func (t *TraitType) kind() kindTag  { return kindTrait }

// FnType is the type of a closure or generator. Structural equality
// compares params element-wise and the return type.
type FnType struct {
	IsGenerator bool
	// Params is nil when arity/param types are not statically known
	// (e.g. a function value arriving through Any).
	Params     []NamedType
	ReturnType Type
	TypeParams []string
}

// NamedType pairs a parameter name with its declared type; the name does
// not participate in type equality.
type NamedType struct {
	Name string
	Type Type
}

func (t *FnType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	prefix := "fn"
	if t.IsGenerator {
		prefix = "gen"
	}
	ret := "Undefined"
	if t.ReturnType != nil {
		ret = t.ReturnType.String()
	}
	return fmt.Sprintf("%s(%s): %s", prefix, strings.Join(parts, ", "), ret)
}
func (t *FnType) kind() kindTag { return kindFn }

// UnionType is a deduplicated, structurally-compared set of member types.
type UnionType struct {
	Members []Type
}

func (t *UnionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " | ")
}
func (t *UnionType) kind() kindTag { return kindUnion }

// Impl associates a struct or enum's concrete method bodies with the
// trait(s) it implements. The method table is populated by the compiler.
type Impl struct {
	Trait   *TraitType
	Methods map[string]Type // method name -> FnType
}

// Equals implements the type equality rules: structural for
// function and union types, nominal (by name) for structs and traits,
// reflexive (identity/kind match) otherwise. Any matches anything;
// Unknown matches only itself.
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind() == kindUnknown || b.kind() == kindUnknown {
		return a.kind() == b.kind()
	}
	if a.kind() == kindAny || b.kind() == kindAny {
		return true
	}
	if a.kind() != b.kind() {
		return false
	}
	switch av := a.(type) {
	case *primitive:
		return av == b.(*primitive)
	case *TypeVariable:
		return av.Name == b.(*TypeVariable).Name
	case *TypeConstant:
		return av.Name == b.(*TypeConstant).Name
	case *StructType:
		return av.Name == b.(*StructType).Name
	case *EnumType:
		return av.Name == b.(*EnumType).Name
	case *TraitType:
		return av.Name == b.(*TraitType).Name
	case *FnType:
		return fnEquals(av, b.(*FnType))
	case *UnionType:
		return unionEquals(av, b.(*UnionType))
	default:
		return a == b
	}
}

func fnEquals(a, b *FnType) bool {
	if a.IsGenerator != b.IsGenerator {
		return false
	}
	if a.Params == nil || b.Params == nil {
		return a.Params == nil && b.Params == nil
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !Equals(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return Equals(a.ReturnType, b.ReturnType)
}

func unionEquals(a, b *UnionType) bool {
	if len(a.Members) != len(b.Members) {
		return false
	}
	used := make([]bool, len(b.Members))
	for _, am := range a.Members {
		found := false
		for i, bm := range b.Members {
			if !used[i] && Equals(am, bm) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Union builds the union of two types per : T∪T=T;
// Any∪T=Any; Unknown∪T=T; otherwise flatten into a deduplicated
// set-of-types union.
func Union(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if Equals(a, b) && a.kind() != kindUnion {
		return a
	}
	if a.kind() == kindAny || b.kind() == kindAny {
		return Any
	}
	if a.kind() == kindUnknown {
		return b
	}
	if b.kind() == kindUnknown {
		return a
	}

	var members []Type
	members = append(members, flattenUnion(a)...)
	members = append(members, flattenUnion(b)...)
	members = dedupeTypes(members)
	if len(members) == 1 {
		return members[0]
	}
	return &UnionType{Members: members}
}

func flattenUnion(t Type) []Type {
	if u, ok := t.(*UnionType); ok {
		return u.Members
	}
	return []Type{t}
}

func dedupeTypes(ts []Type) []Type {
	out := make([]Type, 0, len(ts))
	for _, t := range ts {
		dup := false
		for _, o := range out {
			if Equals(t, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// IsAssignable reports whether a value of type src may be used where dst is
// expected, per the Call/Set rules (which require type equality,
// with Any matching anything).
func IsAssignable(dst, src Type) bool {
	return Equals(dst, src)
}
