// Package codegen lowers a validated program into an isa.Program: a flat
// instruction stream for the accumulator machine. Grounded on the reference
// implementation's codegen.py, with one structural change the original's own
// design notes call for: every piece of mutable emission state (the growing
// instruction slice, the label table, the label counter) lives on a single
// Context value threaded explicitly through the lowering functions, instead
// of being held on a long-lived object with implicit shared state.
package codegen

import (
	"fmt"

	"accvm/internal/ast"
	"accvm/internal/isa"
	"accvm/internal/semantic"
)

// Five scratch cells are reserved above the user's variables for the
// multiplication and division subroutines. Multiplication uses three of
// them and division's shift-and-subtract algorithm uses four; the fifth is
// currently unused.
const scratchCells = 5

// Context owns every piece of state a code generation pass mutates. It is
// created once per compilation and passed by pointer through the lowering
// functions; nothing here is global or reused across compilations.
type Context struct {
	code       []isa.Instruction
	labels     map[string]int
	labelSeq   int
	memoryMap  map[string]int
	constAddr  map[string]int
	varAddr    map[string]int
	scratch    int // address of the first scratch cell
}

func newContext(consts, vars *semantic.Table) *Context {
	ctx := &Context{
		labels:    make(map[string]int),
		memoryMap: make(map[string]int),
		constAddr: make(map[string]int),
		varAddr:   make(map[string]int),
	}

	addr := 0
	for _, name := range consts.Names() {
		ctx.constAddr[name] = addr
		ctx.memoryMap[name] = addr
		addr++
	}
	for _, name := range vars.Names() {
		ctx.varAddr[name] = addr
		ctx.memoryMap[name] = addr
		addr++
	}
	ctx.scratch = addr
	return ctx
}

func (ctx *Context) emit(op isa.Opcode, arg int) int {
	ctx.code = append(ctx.code, isa.Instruction{Op: op, Arg: arg})
	return len(ctx.code) - 1
}

func (ctx *Context) emitBranch(op isa.Opcode, label string) int {
	ctx.code = append(ctx.code, isa.Instruction{Op: op, Label: label})
	return len(ctx.code) - 1
}

func (ctx *Context) newLabel(hint string) string {
	ctx.labelSeq++
	return fmt.Sprintf("%s_%d", hint, ctx.labelSeq)
}

func (ctx *Context) placeLabel(name string) {
	ctx.labels[name] = len(ctx.code)
}

func (ctx *Context) backpatch() error {
	for i, instr := range ctx.code {
		if instr.Label == "" {
			continue
		}
		target, ok := ctx.labels[instr.Label]
		if !ok {
			return fmt.Errorf("instruction %d references undefined label %q", i, instr.Label)
		}
		ctx.code[i].Arg = target
		ctx.code[i].Label = ""
	}
	return nil
}

func (ctx *Context) addrOf(name string) int {
	if a, ok := ctx.constAddr[name]; ok {
		return a
	}
	return ctx.varAddr[name]
}

// Generate runs the full code generation pass: constant initialization,
// then the command tree, then HALT, then a single backpatch pass over every
// branch instruction emitted along the way.
func Generate(prog *ast.Program, sem semantic.Result) (isa.Program, error) {
	ctx := newContext(sem.Consts, sem.Vars)

	for _, c := range prog.Consts {
		ctx.generateConstantInit(ctx.constAddr[c.Name], c.Value)
	}

	for _, cmd := range prog.Cmds {
		ctx.generateCommand(cmd)
	}

	ctx.emit(isa.HALT, 0)

	if err := ctx.backpatch(); err != nil {
		return isa.Program{}, err
	}
	if u := (isa.Program{Code: ctx.code}).Unresolved(); u != -1 {
		return isa.Program{}, fmt.Errorf("instruction %d still carries an unresolved label after backpatching", u)
	}

	return isa.Program{Code: ctx.code, MemoryMap: ctx.memoryMap}, nil
}

// generateConstantInit writes value into address addr by synthesizing it
// into the accumulator and storing it down.
func (ctx *Context) generateConstantInit(addr, value int) {
	ctx.generateLiteral(value)
	ctx.emit(isa.STORE, addr)
}

// bitsOf returns n's binary digits, most significant first.
func bitsOf(n int) []int {
	if n == 0 {
		return []int{0}
	}
	var bits []int
	for n > 0 {
		bits = append([]int{n & 1}, bits...)
		n >>= 1
	}
	return bits
}

func (ctx *Context) generateCommand(cmd *ast.Command) {
	switch {
	case cmd.Assignment != nil:
		ctx.generateAssignment(cmd.Assignment)
	case cmd.IfElse != nil:
		ctx.generateIfElse(cmd.IfElse)
	case cmd.While != nil:
		ctx.generateWhile(cmd.While)
	case cmd.Read != nil:
		ctx.emit(isa.SCAN, ctx.varAddr[cmd.Read.Name])
	case cmd.Write != nil:
		ctx.emit(isa.PRINT, ctx.addrOf(cmd.Write.Name))
	}
}

func (ctx *Context) generateAssignment(a *ast.Assignment) {
	ctx.generateExpression(a.Expr)
	ctx.emit(isa.STORE, ctx.varAddr[a.Name])
}

// generateIfElse lowers to:
//
//	<condition, negated, branch to ELSE>
//	<then commands>
//	JUMP END
//	ELSE:
//	<else commands>
//	END:
func (ctx *Context) generateIfElse(ie *ast.IfElse) {
	elseLabel := ctx.newLabel("else")
	endLabel := ctx.newLabel("endif")

	ctx.generateConditionJumpIfFalse(ie.Cond, elseLabel)
	for _, cmd := range ie.ThenCmds {
		ctx.generateCommand(cmd)
	}
	ctx.emitBranch(isa.JUMP, endLabel)
	ctx.placeLabel(elseLabel)
	for _, cmd := range ie.ElseCmds {
		ctx.generateCommand(cmd)
	}
	ctx.placeLabel(endLabel)
}

// generateWhile lowers to:
//
//	START:
//	<condition, negated, branch to END>
//	<body commands>
//	JUMP START
//	END:
func (ctx *Context) generateWhile(w *ast.While) {
	startLabel := ctx.newLabel("while")
	endLabel := ctx.newLabel("endwhile")

	ctx.placeLabel(startLabel)
	ctx.generateConditionJumpIfFalse(w.Cond, endLabel)
	for _, cmd := range w.Cmds {
		ctx.generateCommand(cmd)
	}
	ctx.emitBranch(isa.JUMP, startLabel)
	ctx.placeLabel(endLabel)
}

func (ctx *Context) generateExpression(expr *ast.Expression) {
	switch {
	case expr.Number != nil:
		ctx.generateLiteral(*expr.Number)
	case expr.Identifier != nil:
		ctx.emit(isa.LOAD, ctx.addrOf(*expr.Identifier))
	case expr.BinOp != nil:
		ctx.generateBinOp(expr.BinOp)
	}
}

// generateLiteral synthesizes an inline numeric literal the same way a
// constant's initializer is synthesized, leaving the value in the
// accumulator rather than storing it to memory.
func (ctx *Context) generateLiteral(value int) {
	ctx.emit(isa.ZERO, 0)
	for i, bit := range bitsOf(value) {
		if i > 0 {
			ctx.emit(isa.SHL, 0)
		}
		if bit == 1 {
			ctx.emit(isa.INC, 0)
		}
	}
}

func (ctx *Context) generateBinOp(b *ast.BinOp) {
	left := ctx.addrOf(b.Left)
	right := ctx.addrOf(b.Right)

	switch b.Op {
	case "+":
		ctx.emit(isa.LOAD, left)
		ctx.emit(isa.ADD, right)
	case "-":
		ctx.emit(isa.LOAD, left)
		ctx.emit(isa.SUB, right)
	case "*":
		ctx.generateMultiply(left, right)
	case "/":
		ctx.generateDivMod(left, right, false)
	case "%":
		ctx.generateDivMod(left, right, true)
	}
}
