package symbolic

import "testing"

func TestSimplifyIdentityRules(t *testing.T) {
	x := NewVariable("x")
	cases := []struct {
		name string
		expr Expression
		want Expression
	}{
		{"x+0", Add(x, NewConstant(0)), x},
		{"0+x", Add(NewConstant(0), x), x},
		{"x-0", Sub(x, NewConstant(0)), x},
		{"x*1", Mul(x, NewConstant(1)), x},
		{"1*x", Mul(NewConstant(1), x), x},
		{"x*0", Mul(x, NewConstant(0)), NewConstant(0)},
		{"x/1", Div(x, NewConstant(1)), x},
		{"x^1", Pow(x, NewConstant(1)), x},
		{"x^0", Pow(x, NewConstant(0)), NewConstant(1)},
		{"1^x", Pow(NewConstant(1), x), NewConstant(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.expr.Simplify()
			if !Equal(got, c.want) {
				t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
			}
		})
	}
}

func TestSimplifyCancellation(t *testing.T) {
	x := NewVariable("x")
	if got := Sub(x, x).Simplify(); !Equal(got, NewConstant(0)) {
		t.Fatalf("x-x: expected 0, got %v", got)
	}
	if got := Div(x, x).Simplify(); !Equal(got, NewConstant(1)) {
		t.Fatalf("x/x: expected 1, got %v", got)
	}
	zero := NewConstant(0)
	if got := Div(zero, zero).Simplify(); Equal(got, NewConstant(1)) {
		t.Fatalf("0/0 must not simplify to 1")
	}
}

func TestSimplifyLikeTermCombination(t *testing.T) {
	x := NewVariable("x")
	expr := Add(Mul(NewConstant(2), x), Mul(NewConstant(3), x))
	want := Mul(NewConstant(5), x)
	if got := expr.Simplify(); !Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSimplifyXPlusXIsTwoX(t *testing.T) {
	x := NewVariable("x")
	want := Mul(NewConstant(2), x)
	if got := Add(x, x).Simplify(); !Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSimplifyPythagoreanIdentity(t *testing.T) {
	x := NewVariable("x")
	expr := Add(Pow(NewFunction("sin", x), NewConstant(2)), Pow(NewFunction("cos", x), NewConstant(2)))
	if got := expr.Simplify(); !Equal(got, NewConstant(1)) {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestSimplifyDifferenceOfSquares(t *testing.T) {
	a, b := NewVariable("a"), NewVariable("b")
	expr := Sub(Pow(a, NewConstant(2)), Pow(b, NewConstant(2)))
	want := Mul(Sub(a, b), Add(a, b))
	if got := expr.Simplify(); !Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSimplifyBinomialExpansion(t *testing.T) {
	a, b := NewVariable("a"), NewVariable("b")
	expr := Pow(Add(a, b), NewConstant(2))
	want := Add(Add(Pow(a, NewConstant(2)), Mul(NewConstant(2), Mul(a, b))), Pow(b, NewConstant(2)))
	if got := expr.Simplify(); !Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSimplifyFractionCancellation(t *testing.T) {
	a, b := NewVariable("a"), NewVariable("b")
	if got := Div(Mul(a, b), a).Simplify(); !Equal(got, b) {
		t.Fatalf("(a*b)/a: expected b, got %v", got)
	}
	if got := Div(Mul(a, b), b).Simplify(); !Equal(got, a) {
		t.Fatalf("(a*b)/b: expected a, got %v", got)
	}
}

func TestSimplifyLnOfExp(t *testing.T) {
	x := NewVariable("x")
	expr := NewFunction("ln", NewFunction("exp", x))
	if got := expr.Simplify(); !Equal(got, x) {
		t.Fatalf("ln(exp(x)): expected x, got %v", got)
	}
}
