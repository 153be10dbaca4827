package symbolic

import "math"

// Simplify rewrites an Operator bottom-up, applying rules in this fixed
// order: constant folding, identity/dominant-element rules, cancellation,
// constant re-association, the Pythagorean identity, like-term combination,
// and a handful of factoring/expansion special cases. The first matching
// rule wins.
func (o *Operator) Simplify() Expression {
	left := o.Left.Simplify()
	right := o.Right.Simplify()
	op := o.Op

	// Constant folding.
	if lc, ok := asConstant(left); ok {
		if rc, ok := asConstant(right); ok {
			switch op {
			case "+":
				return NewConstant(lc.Value + rc.Value)
			case "-":
				return NewConstant(lc.Value - rc.Value)
			case "*":
				return NewConstant(lc.Value * rc.Value)
			case "/":
				if rc.Value != 0 {
					return NewConstant(lc.Value / rc.Value)
				}
			case "^":
				return NewConstant(math.Pow(lc.Value, rc.Value))
			}
		}
	}

	// Identity and dominant rules.
	if op == "+" && isConstantValue(right, 0) {
		return left
	}
	if op == "+" && isConstantValue(left, 0) {
		return right
	}
	if op == "-" && isConstantValue(right, 0) {
		return left
	}
	if op == "*" && isConstantValue(right, 1) {
		return left
	}
	if op == "*" && isConstantValue(left, 1) {
		return right
	}
	if op == "*" && (isConstantValue(right, 0) || isConstantValue(left, 0)) {
		return NewConstant(0)
	}
	if op == "/" && isConstantValue(right, 1) {
		return left
	}
	if op == "^" && isConstantValue(right, 1) {
		return left
	}
	if op == "^" && isConstantValue(right, 0) {
		return NewConstant(1)
	}
	if op == "^" && isConstantValue(left, 1) {
		return NewConstant(1)
	}

	// Cancellation rules.
	if op == "-" && Equal(left, right) {
		return NewConstant(0)
	}
	if op == "/" && Equal(left, right) && !isConstantValue(left, 0) {
		return NewConstant(1)
	}

	// Re-association for constants: (a + c1) + c2 -> a + (c1 + c2).
	if op == "+" {
		if lo, ok := left.(*Operator); ok && lo.Op == "+" {
			if lc, ok := asConstant(lo.Right); ok {
				if rc, ok := asConstant(right); ok {
					return Add(lo.Left, NewConstant(lc.Value+rc.Value)).Simplify()
				}
			}
		}
	}
	// (a * c1) * c2 -> a * (c1 * c2).
	if op == "*" {
		if lo, ok := left.(*Operator); ok && lo.Op == "*" {
			if lc, ok := asConstant(lo.Right); ok {
				if rc, ok := asConstant(right); ok {
					return Mul(lo.Left, NewConstant(lc.Value*rc.Value)).Simplify()
				}
			}
			// (c1 * a) * c2 -> (c1 * c2) * a
			if lc, ok := asConstant(lo.Left); ok {
				if rc, ok := asConstant(right); ok {
					return Mul(NewConstant(lc.Value*rc.Value), lo.Right).Simplify()
				}
			}
		}
	}
	// (a + c1) - c2 -> a + (c1 - c2).
	if op == "-" {
		if lo, ok := left.(*Operator); ok && lo.Op == "+" {
			if lc, ok := asConstant(lo.Right); ok {
				if rc, ok := asConstant(right); ok {
					return Add(lo.Left, NewConstant(lc.Value-rc.Value)).Simplify()
				}
			}
		}
	}
	// (c1 * a) / c2 -> (c1 / c2) * a.
	if op == "/" {
		if lo, ok := left.(*Operator); ok && lo.Op == "*" {
			if lc, ok := asConstant(lo.Left); ok {
				if rc, ok := asConstant(right); ok && rc.Value != 0 {
					return Mul(NewConstant(lc.Value/rc.Value), lo.Right).Simplify()
				}
			}
		}
	}

	// sin(u)^2 + cos(u)^2 = 1.
	if op == "+" {
		lo, lok := left.(*Operator)
		ro, rok := right.(*Operator)
		if lok && rok && lo.Op == "^" && ro.Op == "^" {
			lf, lfok := lo.Left.(*Function)
			rf, rfok := ro.Left.(*Function)
			if lfok && rfok && lf.Func == "sin" && rf.Func == "cos" {
				if Equal(lf.Arg, rf.Arg) && isConstantValue(lo.Right, 2) && isConstantValue(ro.Right, 2) {
					return NewConstant(1)
				}
			}
		}
	}

	// Combining like terms: c1*x + c2*x -> (c1+c2)*x.
	if op == "+" {
		lo, lok := left.(*Operator)
		ro, rok := right.(*Operator)
		if lok && rok && lo.Op == "*" && ro.Op == "*" {
			if lc, ok := asConstant(lo.Left); ok && Equal(lo.Right, ro.Right) {
				if rc, ok := asConstant(ro.Left); ok {
					return Mul(NewConstant(lc.Value+rc.Value), lo.Right).Simplify()
				}
			}
			if lc, ok := asConstant(lo.Right); ok && Equal(lo.Left, ro.Left) {
				if rc, ok := asConstant(ro.Right); ok {
					return Mul(NewConstant(lc.Value+rc.Value), lo.Left).Simplify()
				}
			}
		}
	}

	// x + x -> 2*x.
	if op == "+" && Equal(left, right) {
		return Mul(NewConstant(2), left).Simplify()
	}

	// c * (x / c) -> x.
	if op == "*" {
		if ro, ok := right.(*Operator); ok && ro.Op == "/" {
			if lc, ok := asConstant(left); ok {
				if rc, ok := asConstant(ro.Right); ok && lc.Value == rc.Value {
					return ro.Left.Simplify()
				}
			}
		}
	}

	// Expansion of powers: (a+b)^2 -> a^2 + 2ab + b^2.
	if op == "^" {
		if lo, ok := left.(*Operator); ok && lo.Op == "+" && isConstantValue(right, 2) {
			a, b := lo.Left, lo.Right
			return Add(Add(Pow(a, NewConstant(2)), Mul(NewConstant(2), Mul(a, b))), Pow(b, NewConstant(2))).Simplify()
		}
	}

	// Factoring: a^2 - b^2 -> (a-b)*(a+b); a^2 - 1 -> (a-1)*(a+1).
	if op == "-" {
		if lo, ok := left.(*Operator); ok && lo.Op == "^" && isConstantValue(lo.Right, 2) {
			a := lo.Left
			if isConstantValue(right, 1) {
				b := Expression(NewConstant(1))
				return Mul(Sub(a, b).Simplify(), Add(a, b).Simplify()).Simplify()
			}
			if ro, ok := right.(*Operator); ok && ro.Op == "^" && isConstantValue(ro.Right, 2) {
				b := ro.Left
				return Mul(Sub(a, b).Simplify(), Add(a, b).Simplify()).Simplify()
			}
		}
	}

	// Canceling common factors in fractions: (a*b)/a -> b; (a*b)/b -> a.
	if op == "/" {
		if lo, ok := left.(*Operator); ok && lo.Op == "*" {
			if Equal(lo.Left, right) {
				return lo.Right.Simplify()
			}
			if Equal(lo.Right, right) {
				return lo.Left.Simplify()
			}
		}
	}

	return NewOperator(op, left, right)
}

// Simplify rewrites a Function application. The only structural rewrite
// rule is ln(exp(x)) -> x; all other functions simplify only their argument.
func (f *Function) Simplify() Expression {
	arg := f.Arg.Simplify()
	if f.Func == "ln" {
		if inner, ok := arg.(*Function); ok && inner.Func == "exp" {
			return inner.Arg
		}
	}
	return NewFunction(f.Func, arg)
}
