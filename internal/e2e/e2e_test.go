// Package e2e exercises the full pipeline — lexer, parser, semantic
// analysis, code generation, and the virtual machine — against whole
// programs, mirroring the reference implementation's test_runner.py
// scenarios end to end rather than unit-testing any one stage.
package e2e

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accvm/internal/codegen"
	"accvm/internal/parser"
	"accvm/internal/semantic"
	"accvm/internal/vm"
)

func run(t *testing.T, source, input string) (*vm.VM, string) {
	t.Helper()
	prog, err := parser.ParseSource("e2e", source)
	require.NoError(t, err)

	sem := semantic.Analyze(prog)
	require.Empty(t, sem.Errors)

	program, err := codegen.Generate(prog, sem)
	require.NoError(t, err)

	var out strings.Builder
	machine := vm.New(program.Code, vm.NewConsoleIO(strings.NewReader(input), &out))
	require.NoError(t, machine.Run())
	return machine, out.String()
}

func TestArithmeticScenario(t *testing.T) {
	const src = `
CONST
  ten := 10
VAR
  a b c d e
BEGIN
  a := ten + 5;
  b := ten / 2;
  c := ten * 5;
  d := ten % 4;
  e := 3 - ten;
  WRITE a;
  WRITE b;
  WRITE c;
  WRITE d;
  WRITE e;
END
`
	_, out := run(t, src, "")
	assert.Equal(t, "15\n5\n50\n2\n0\n", out)
}

func TestConditionsScenario(t *testing.T) {
	const src = `
VAR a b eq neq lt
BEGIN
  a := 4;
  b := 4;
  IF a == b THEN
    eq := 1;
  ELSE
    eq := 0;
  END
  IF a != b THEN
    neq := 1;
  ELSE
    neq := 0;
  END
  IF a < b THEN
    lt := 1;
  ELSE
    lt := 0;
  END
  WRITE eq;
  WRITE neq;
  WRITE lt;
END
`
	_, out := run(t, src, "")
	assert.Equal(t, "1\n0\n0\n", out)
}

// TestRelopsAgainstBothOrderings compiles and runs every relop against both
// a<b and a>b operand pairs, the property spec.md's design notes call out
// as the one a single-subtraction lowering is easy to get backwards on
// (particularly `>` and `>=`, which no other test here exercises through a
// real compile+VM run rather than just a parse).
func TestRelopsAgainstBothOrderings(t *testing.T) {
	relops := []struct {
		op   string
		holds func(a, b int) bool
	}{
		{"==", func(a, b int) bool { return a == b }},
		{"!=", func(a, b int) bool { return a != b }},
		{"<", func(a, b int) bool { return a < b }},
		{">", func(a, b int) bool { return a > b }},
		{"<=", func(a, b int) bool { return a <= b }},
		{">=", func(a, b int) bool { return a >= b }},
	}
	pairs := [][2]int{{3, 7}, {7, 3}, {5, 5}}

	for _, rel := range relops {
		for _, p := range pairs {
			a, b := p[0], p[1]
			src := `
VAR a b r
BEGIN
  a := ` + itoa(a) + `;
  b := ` + itoa(b) + `;
  IF a ` + rel.op + ` b THEN
    r := 1;
  ELSE
    r := 0;
  END
  WRITE r;
END
`
			want := "0\n"
			if rel.holds(a, b) {
				want = "1\n"
			}
			_, out := run(t, src, "")
			assert.Equal(t, want, out, "a=%d %s b=%d", a, rel.op, b)
		}
	}
}

func TestLoopsScenario(t *testing.T) {
	const src = `
VAR i total
BEGIN
  i := 0;
  total := 0;
  WHILE i < 5 DO
    total := total + 3;
    i := i + 1;
  END
  WRITE total;
END
`
	_, out := run(t, src, "")
	assert.Equal(t, "15\n", out)
}

func TestIOScenario(t *testing.T) {
	const src = `
VAR a b sum
BEGIN
  READ a;
  READ b;
  sum := a + b;
  WRITE a;
  WRITE b;
  WRITE sum;
END
`
	_, out := run(t, src, "42\n58\n")
	assert.Equal(t, "42\n58\n100\n", out)
}

// TestRoundTripLaw checks a/b*b + a%b == a for a spread of operand pairs,
// the arithmetic identity that ties the division and modulo subroutines
// together; both are built from the same shift-and-subtract routine and a
// bug in either would usually break this for some pair.
func TestRoundTripLaw(t *testing.T) {
	pairs := [][2]int{{97, 7}, {100, 10}, {13, 13}, {1, 9}, {0, 5}, {255, 16}}
	for _, p := range pairs {
		src := `
VAR a b q r check
BEGIN
  a := ` + itoa(p[0]) + `;
  b := ` + itoa(p[1]) + `;
  q := a / b;
  r := a % b;
  check := q * b;
  check := check + r;
  WRITE check;
END
`
		_, out := run(t, src, "")
		assert.Equal(t, itoa(p[0])+"\n", out, "pair %v", p)
	}
}

// TestDeterminism checks that compiling and running the same source twice
// produces byte-identical output and step counts.
func TestDeterminism(t *testing.T) {
	const src = `
VAR i total
BEGIN
  i := 0;
  total := 0;
  WHILE i < 50 DO
    total := total + i;
    i := i + 1;
  END
  WRITE total;
END
`
	m1, out1 := run(t, src, "")
	m2, out2 := run(t, src, "")
	assert.Equal(t, out1, out2)
	assert.Equal(t, m1.Steps, m2.Steps)
}

// TestMultiplyDivideStayLogarithmic checks that multiplying and dividing
// reasonably large operands stays well under a step budget a linear
// (repeated addition / repeated subtraction) implementation would blow
// through, the same property the reference implementation's
// PerformanceTests guarded.
func TestMultiplyDivideStayLogarithmic(t *testing.T) {
	const src = `
CONST
  big := 60000
VAR
  a b product quotient
BEGIN
  a := big;
  b := 59999;
  product := a * b;
  quotient := a / b;
  WRITE quotient;
END
`
	machine, out := run(t, src, "")
	assert.Equal(t, "1\n", out)
	assert.Less(t, machine.Steps, 100000)
}

func TestLargeMultiplicationScenario(t *testing.T) {
	const src = `
VAR x y z
BEGIN
  x := 12345;
  y := 67890;
  z := x * y;
  WRITE z;
END
`
	machine, out := run(t, src, "")
	assert.Equal(t, "838102050\n", out)
	assert.Less(t, machine.Steps, 100000)
}

func TestLargeDivisionScenario(t *testing.T) {
	const src = `
VAR x y z
BEGIN
  x := 1234567;
  y := 89;
  z := x / y;
  WRITE z;
END
`
	machine, out := run(t, src, "")
	assert.Equal(t, "13871\n", out)
	assert.Less(t, machine.Steps, 100000)
}

func TestDivisionByZeroScenario(t *testing.T) {
	const src = `
VAR a b c
BEGIN
  a := 7;
  b := 0;
  c := a / b;
  WRITE c;
END
`
	_, out := run(t, src, "")
	assert.Equal(t, "0\n", out)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
