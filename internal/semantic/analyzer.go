// Package semantic validates a parsed program and builds the declaration
// tables the code generator relies on. Grounded on the reference
// implementation's semantic.py: one pass over constants and variables,
// then a recursive walk over commands collecting one error string per
// invalid reference. Declaration order is preserved explicitly because the
// generator's memory layout depends on it.
package semantic

import (
	"fmt"

	"accvm/internal/ast"
)

// Table pairs a name->value map with the order names were declared in, so
// callers can iterate declaration order instead of Go's unordered map
// range order.
type Table struct {
	values map[string]int
	order  []string
}

func newTable() *Table {
	return &Table{values: make(map[string]int)}
}

// Has reports whether name is declared in the table.
func (t *Table) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

// Get returns the value (a constant's literal, or a variable's ordinal)
// associated with name.
func (t *Table) Get(name string) (int, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns declared names in declaration order.
func (t *Table) Names() []string {
	return t.order
}

func (t *Table) declare(name string, value int) {
	t.values[name] = value
	t.order = append(t.order, name)
}

// Result is the output contract consumed by the code generator: the
// constant and variable tables plus any validation errors. A valid
// compilation requires Errors to be empty.
type Result struct {
	Consts *Table
	Vars   *Table
	Errors []string
}

// Analyze validates prog and builds its declaration tables. It never stops
// early on the first error — like the reference semantic.py, it collects
// every error it finds in one pass so the caller can report them all.
func Analyze(prog *ast.Program) Result {
	res := Result{Consts: newTable(), Vars: newTable()}

	for _, c := range prog.Consts {
		if res.Consts.Has(c.Name) || res.Vars.Has(c.Name) {
			res.Errors = append(res.Errors, fmt.Sprintf("duplicate declaration of identifier %q", c.Name))
			continue
		}
		res.Consts.declare(c.Name, c.Value)
	}

	for _, v := range prog.Vars {
		if res.Consts.Has(v.Name) || res.Vars.Has(v.Name) {
			res.Errors = append(res.Errors, fmt.Sprintf("duplicate declaration of identifier %q", v.Name))
			continue
		}
		res.Vars.declare(v.Name, len(res.Vars.order))
	}

	res.checkCommands(prog.Cmds)
	return res
}

func (res *Result) declared(name string) bool {
	return res.Consts.Has(name) || res.Vars.Has(name)
}

func (res *Result) errorf(format string, args ...any) {
	res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
}

func (res *Result) checkCommands(cmds []*ast.Command) {
	for _, cmd := range cmds {
		res.checkCommand(cmd)
	}
}

func (res *Result) checkCommand(cmd *ast.Command) {
	switch {
	case cmd.Assignment != nil:
		a := cmd.Assignment
		if !res.Vars.Has(a.Name) {
			res.errorf("assignment to undeclared variable %q", a.Name)
		}
		res.checkExpression(a.Expr)

	case cmd.IfElse != nil:
		res.checkCondition(cmd.IfElse.Cond)
		res.checkCommands(cmd.IfElse.ThenCmds)
		res.checkCommands(cmd.IfElse.ElseCmds)

	case cmd.While != nil:
		res.checkCondition(cmd.While.Cond)
		res.checkCommands(cmd.While.Cmds)

	case cmd.Read != nil:
		if !res.Vars.Has(cmd.Read.Name) {
			res.errorf("read into undeclared variable %q", cmd.Read.Name)
		}

	case cmd.Write != nil:
		if !res.declared(cmd.Write.Name) {
			res.errorf("write of undeclared identifier %q", cmd.Write.Name)
		}
	}
}

func (res *Result) checkExpression(expr *ast.Expression) {
	switch {
	case expr.Number != nil:
		// Numbers are always valid.
	case expr.Identifier != nil:
		if !res.declared(*expr.Identifier) {
			res.errorf("reference to undeclared identifier %q", *expr.Identifier)
		}
	case expr.BinOp != nil:
		if !res.declared(expr.BinOp.Left) {
			res.errorf("reference to undeclared identifier %q", expr.BinOp.Left)
		}
		if !res.declared(expr.BinOp.Right) {
			res.errorf("reference to undeclared identifier %q", expr.BinOp.Right)
		}
	}
}

func (res *Result) checkCondition(cond *ast.Condition) {
	if !res.declared(cond.Left) {
		res.errorf("reference to undeclared identifier %q", cond.Left)
	}
	if !res.declared(cond.Right) {
		res.errorf("reference to undeclared identifier %q", cond.Right)
	}
}
