package symbolic

import "fmt"

// Differentiate applies the standard sum, difference, product, quotient and
// power rules, always returning a simplified result. The power rule branches
// on whether the exponent is a constant (n*x^(n-1)*x') or itself symbolic
// (the general f^g logarithmic-differentiation case).
func (o *Operator) Differentiate(v string) (Expression, error) {
	leftDeriv, err := o.Left.Differentiate(v)
	if err != nil {
		return nil, err
	}
	rightDeriv, err := o.Right.Differentiate(v)
	if err != nil {
		return nil, err
	}

	switch o.Op {
	case "+":
		return Add(leftDeriv, rightDeriv).Simplify(), nil
	case "-":
		return Sub(leftDeriv, rightDeriv).Simplify(), nil
	case "*":
		return Add(Mul(o.Left, rightDeriv), Mul(leftDeriv, o.Right)).Simplify(), nil
	case "/":
		return Div(Sub(Mul(leftDeriv, o.Right), Mul(o.Left, rightDeriv)), Pow(o.Right, NewConstant(2))).Simplify(), nil
	case "^":
		if n, ok := asConstant(o.Right); ok {
			return Mul(Mul(n, Pow(o.Left, NewConstant(n.Value-1))), leftDeriv).Simplify(), nil
		}
		f, g := o.Left, o.Right
		gDeriv, err := g.Differentiate(v)
		if err != nil {
			return nil, err
		}
		fDeriv, err := f.Differentiate(v)
		if err != nil {
			return nil, err
		}
		return Mul(Pow(f, g), Add(Mul(gDeriv, NewFunction("ln", f)), Div(Mul(g, fDeriv), f))).Simplify(), nil
	}
	return nil, fmt.Errorf("symbolic: differentiation of operator %q not implemented", o.Op)
}

// Integrate supports sum, difference, constant-factor pullout, x^n and the
// (ax+b)^n special case, both for constant n other than -1. Anything else is
// reported as unsupported.
func (o *Operator) Integrate(v string) (Expression, error) {
	switch o.Op {
	case "+":
		l, err := o.Left.Integrate(v)
		if err != nil {
			return nil, err
		}
		r, err := o.Right.Integrate(v)
		if err != nil {
			return nil, err
		}
		return Add(l, r).Simplify(), nil
	case "-":
		l, err := o.Left.Integrate(v)
		if err != nil {
			return nil, err
		}
		r, err := o.Right.Integrate(v)
		if err != nil {
			return nil, err
		}
		return Sub(l, r).Simplify(), nil
	case "*":
		if c, ok := asConstant(o.Left); ok {
			r, err := o.Right.Integrate(v)
			if err != nil {
				return nil, err
			}
			return Mul(c, r).Simplify(), nil
		}
		if c, ok := asConstant(o.Right); ok {
			l, err := o.Left.Integrate(v)
			if err != nil {
				return nil, err
			}
			return Mul(c, l).Simplify(), nil
		}
	case "^":
		if x, ok := o.Left.(*Variable); ok && x.Name == v {
			if n, ok := asConstant(o.Right); ok && n.Value != -1 {
				return Div(Pow(o.Left, NewConstant(n.Value+1)), NewConstant(n.Value+1)), nil
			}
		}
		if inner, ok := o.Left.(*Operator); ok && inner.Op == "+" {
			if n, ok := asConstant(o.Right); ok && n.Value != -1 {
				a, b := inner.Left, inner.Right
				if ao, ok := a.(*Operator); ok && ao.Op == "*" {
					if ac, ok := asConstant(ao.Left); ok {
						if ax, ok := ao.Right.(*Variable); ok && ax.Name == v {
							if _, ok := asConstant(b); ok {
								return Div(Pow(o.Left, NewConstant(n.Value+1)), Mul(NewConstant(n.Value+1), ac)).Simplify(), nil
							}
						}
					}
				}
			}
		}
	}
	return nil, fmt.Errorf("symbolic: integration of operator %q not implemented", o.Op)
}

// Differentiate applies the chain rule for each supported function.
func (f *Function) Differentiate(v string) (Expression, error) {
	argDeriv, err := f.Arg.Differentiate(v)
	if err != nil {
		return nil, err
	}
	switch f.Func {
	case "sin":
		return Mul(NewFunction("cos", f.Arg), argDeriv).Simplify(), nil
	case "cos":
		return Mul(Mul(NewConstant(-1), NewFunction("sin", f.Arg)), argDeriv).Simplify(), nil
	case "tan":
		return Div(argDeriv, Pow(NewFunction("cos", f.Arg), NewConstant(2))).Simplify(), nil
	case "ln", "log":
		return Div(argDeriv, f.Arg).Simplify(), nil
	case "exp":
		return Mul(NewFunction("exp", f.Arg), argDeriv).Simplify(), nil
	case "sqrt":
		return Div(argDeriv, Mul(NewConstant(2), NewFunction("sqrt", f.Arg))).Simplify(), nil
	}
	return nil, fmt.Errorf("symbolic: derivative of %q not implemented", f.Func)
}

// Integrate supports sin, cos, exp, ln and log, but only when the function's
// argument is exactly the integration variable.
func (f *Function) Integrate(v string) (Expression, error) {
	if x, ok := f.Arg.(*Variable); ok && x.Name == v {
		switch f.Func {
		case "sin":
			return Mul(NewConstant(-1), NewFunction("cos", f.Arg)), nil
		case "cos":
			return NewFunction("sin", f.Arg), nil
		case "exp":
			return NewFunction("exp", f.Arg), nil
		case "ln", "log":
			return Sub(Mul(f.Arg, NewFunction("ln", f.Arg)), f.Arg), nil
		}
	}
	return nil, fmt.Errorf("symbolic: integration of %q not implemented", f.Func)
}
