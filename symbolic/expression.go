// Package symbolic implements a small computer-algebra engine: expression
// parsing, algebraic simplification, and symbolic differentiation and
// integration over a limited repertoire of operators and functions. It has
// no dependency on any other package in this module.
package symbolic

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Expression is any node in the algebraic expression tree: a Constant, a
// Variable, an Operator, or a Function.
type Expression interface {
	// Simplify rewrites the expression to an equivalent, reduced form.
	Simplify() Expression
	// Differentiate returns d/d(v) of the expression, already simplified.
	Differentiate(v string) (Expression, error)
	// Integrate returns an antiderivative with respect to v. Not every
	// expression this engine can differentiate can also be integrated;
	// unsupported forms return an error.
	Integrate(v string) (Expression, error)
	// String renders the expression using infix notation.
	String() string
}

// Equal reports whether a and b are structurally identical expressions.
func Equal(a, b Expression) bool {
	return reflect.DeepEqual(a, b)
}

// Constant is a literal numeric value.
type Constant struct {
	Value float64
}

// NewConstant returns a Constant wrapping value.
func NewConstant(value float64) *Constant { return &Constant{Value: value} }

// formatFloat renders v the way the reference engine's Python float repr
// does: whole numbers keep a trailing ".0" (e.g. "1.0", "2.0") instead of
// Go's default "%g", which would print bare "1".
func formatFloat(v float64) string {
	if !math.IsInf(v, 0) && v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (c *Constant) String() string { return formatFloat(c.Value) }

// Differentiate returns 0 for any variable.
func (c *Constant) Differentiate(v string) (Expression, error) {
	return NewConstant(0), nil
}

// Integrate returns c*v, the antiderivative of a constant.
func (c *Constant) Integrate(v string) (Expression, error) {
	return Mul(c, NewVariable(v)), nil
}

// Simplify returns the constant unchanged; constants are already minimal.
func (c *Constant) Simplify() Expression { return c }

// Variable is a named symbolic unknown.
type Variable struct {
	Name string
}

// NewVariable returns a Variable named name.
func NewVariable(name string) *Variable { return &Variable{Name: name} }

func (x *Variable) String() string { return x.Name }

// Differentiate returns 1 if v names this variable, else 0.
func (x *Variable) Differentiate(v string) (Expression, error) {
	if x.Name == v {
		return NewConstant(1), nil
	}
	return NewConstant(0), nil
}

// Integrate returns x^2/2 when v names this variable, else x*v.
func (x *Variable) Integrate(v string) (Expression, error) {
	if x.Name == v {
		return Div(Pow(x, NewConstant(2)), NewConstant(2)), nil
	}
	return Mul(x, NewVariable(v)), nil
}

// Simplify returns the variable unchanged.
func (x *Variable) Simplify() Expression { return x }

// Operator is a binary arithmetic node: +, -, *, /, or ^.
type Operator struct {
	Op    string
	Left  Expression
	Right Expression
}

// NewOperator returns an Operator node. It does not simplify its operands.
func NewOperator(op string, left, right Expression) *Operator {
	return &Operator{Op: op, Left: left, Right: right}
}

// Add, Sub, Mul, Div and Pow build unsimplified Operator nodes.
func Add(a, b Expression) Expression { return NewOperator("+", a, b) }
func Sub(a, b Expression) Expression { return NewOperator("-", a, b) }
func Mul(a, b Expression) Expression { return NewOperator("*", a, b) }
func Div(a, b Expression) Expression { return NewOperator("/", a, b) }
func Pow(a, b Expression) Expression { return NewOperator("^", a, b) }

func (o *Operator) String() string {
	return fmt.Sprintf("(%s %s %s)", o.Left, o.Op, o.Right)
}

// Function is a named unary function application: sin, cos, tan, ln, log,
// exp or sqrt.
type Function struct {
	Func string
	Arg  Expression
}

// NewFunction returns a Function node applying name to arg.
func NewFunction(name string, arg Expression) *Function {
	return &Function{Func: name, Arg: arg}
}

func (f *Function) String() string { return fmt.Sprintf("%s(%s)", f.Func, f.Arg) }

func asConstant(e Expression) (*Constant, bool) {
	c, ok := e.(*Constant)
	return c, ok
}

func isConstantValue(e Expression, want float64) bool {
	c, ok := asConstant(e)
	return ok && c.Value == want
}
