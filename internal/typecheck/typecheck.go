// Package typecheck walks a compiled expression tree (internal/ast),
// deriving and recording each node's types.Type and collecting every
// violation it finds rather than aborting at the first one, so a single
// run reports all of a program's type errors together.
package typecheck

import (
	"fmt"

	"github.com/ursalang/ursa/internal/ast"
	"github.com/ursalang/ursa/internal/errsrc"
	"github.com/ursalang/ursa/internal/types"
	"github.com/ursalang/ursa/internal/value"
)

// Checker accumulates errors across one Check call.
type Checker struct {
	file   string
	source string
	errs   []error
}

// New returns a Checker attributing errors to file/source for rendering.
func New(file, source string) *Checker {
	return &Checker{file: file, source: source}
}

// Check derives root's type (and every descendant's) and returns the
// errors found; the tree's nodes have SetType called regardless of
// whether errors occurred, so a partially-typed tree is still usable by
// the flattener for forms that did check out.
func (c *Checker) Check(root ast.Node) []error {
	c.visit(root)
	return c.errs
}

func (c *Checker) errorf(n ast.Node, format string, args ...interface{}) {
	c.errs = append(c.errs, &errsrc.TypeError{
		Message:  fmt.Sprintf(format, args...),
		Interval: n.Interval(),
		Source:   c.source,
		File:     c.file,
	})
}

func (c *Checker) visit(n ast.Node) types.Type {
	t := c.visitInner(n)
	n.SetType(t)
	return t
}

func (c *Checker) visitInner(n ast.Node) types.Type {
	switch node := n.(type) {
	case *ast.Literal:
		return valueType(node.Value)
	case *ast.Global:
		return types.Any
	case *ast.Local:
		if node.Location.Type != nil {
			return node.Location.Type
		}
		return types.Any
	case *ast.Capture:
		if node.Location.Type != nil {
			return node.Location.Type
		}
		return types.Any
	case *ast.Property:
		c.visit(node.Obj)
		return types.Any
	case *ast.Set:
		lvalType := c.visit(node.LValue)
		expType := c.visit(node.Exp)
		if lvalType != nil && lvalType != types.Any && !types.IsAssignable(lvalType, expType) {
			c.errorf(node, "Cannot assign a value of type %s to a binding of type %s", expType, lvalType)
		}
		return expType
	case *ast.ObjectLiteral:
		members := make(map[string]types.Type, len(node.Members))
		order := make([]string, len(node.Members))
		for i, m := range node.Members {
			members[m.Name] = c.visit(m.Exp)
			order[i] = m.Name
		}
		return &types.StructType{Name: node.Name, Members: members, MemberOrd: order}
	case *ast.ListLiteral:
		// Element types are visited (and recorded on their own nodes) but
		// not unified into a parameterized List<T>: Ursa's lists are
		// heterogeneous at the type level, checked per-access at runtime.
		for _, e := range node.Elems {
			c.visit(e)
		}
		return types.Any
	case *ast.MapLiteral:
		for _, p := range node.Pairs {
			c.visit(p.Key)
			c.visit(p.Val)
		}
		return types.Any
	case *ast.Sequence:
		var last types.Type = types.Any
		for _, e := range node.Exprs {
			last = c.visit(e)
		}
		if len(node.Exprs) == 0 {
			return &types.TypeConstant{Name: "Null"}
		}
		return last
	case *ast.If:
		c.visit(node.Cond)
		thenType := c.visit(node.Then)
		if node.Else == nil {
			return types.Any
		}
		elseType := c.visit(node.Else)
		return types.Union(thenType, elseType)
	case *ast.And:
		c.visit(node.L)
		return c.visit(node.R)
	case *ast.Or:
		lt := c.visit(node.L)
		rt := c.visit(node.R)
		return types.Union(lt, rt)
	case *ast.Loop:
		c.visit(node.Body)
		return types.Any
	case *ast.Break:
		if node.Exp != nil {
			c.visit(node.Exp)
		}
		return types.Any
	case *ast.Continue:
		return types.Any
	case *ast.Return:
		if node.Exp != nil {
			return c.visit(node.Exp)
		}
		return &types.TypeConstant{Name: "Null"}
	case *ast.Yield:
		if node.Exp != nil {
			return c.visit(node.Exp)
		}
		return &types.TypeConstant{Name: "Null"}
	case *ast.Fn:
		return c.visitCallable(node.Params, node.ReturnType, node.Body)
	case *ast.Generator:
		c.visitCallable(node.Params, node.ReturnType, node.Body)
		return &types.TypeConstant{Name: "Generator"}
	case *ast.Call:
		c.visit(node.Fn)
		for _, a := range node.Args {
			c.visit(a)
		}
		return types.Any
	case *ast.Invoke:
		c.visit(node.Obj)
		for _, a := range node.Args {
			c.visit(a)
		}
		return types.Any
	case *ast.Await:
		c.visit(node.Exp)
		return types.Any
	case *ast.Launch:
		c.visit(node.Exp)
		return &types.TypeConstant{Name: "Promise"}
	case *ast.Let:
		for i := range node.Bindings {
			b := &node.Bindings[i]
			initType := c.visit(b.Init)
			if b.Type != nil && b.Type != types.Any && !types.IsAssignable(b.Type, initType) {
				c.errorf(b.Init, "Cannot initialize %q of type %s with a value of type %s", b.Name, b.Type, initType)
			}
		}
		return c.visit(node.Body)
	default:
		return types.Any
	}
}

func (c *Checker) visitCallable(params []ast.Param, declaredReturn types.Type, body ast.Node) types.Type {
	bodyType := c.visit(body)
	ret := declaredReturn
	if ret == nil {
		ret = bodyType
	} else if ret != types.Any && !types.IsAssignable(ret, bodyType) {
		c.errorf(body, "Function body type %s does not match declared return type %s", bodyType, ret)
	}
	paramTypes := make([]types.NamedType, len(params))
	for i, p := range params {
		pt := p.Type
		if pt == nil {
			pt = types.Any
		}
		paramTypes[i] = types.NamedType{Name: p.Name, Type: pt}
	}
	return &types.FnType{Params: paramTypes, ReturnType: ret}
}

// valueType derives a Literal's static type from its runtime value's
// concrete Go type, so Set/Let assignability checks have something to
// compare declared types against even for constants baked in at compile
// time.
func valueType(v value.Value) types.Type {
	switch v.(type) {
	case value.Null:
		return &types.TypeConstant{Name: "Null"}
	case value.Boolean:
		return &types.TypeConstant{Name: "Bool"}
	case value.Number:
		return &types.TypeConstant{Name: "Num"}
	case value.String:
		return &types.TypeConstant{Name: "Str"}
	default:
		return types.Any
	}
}
