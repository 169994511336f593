// Package ast defines the node shapes the parser must deliver to the
// semantic analyzer and code generator: a tree of declarations and
// commands over a grammar deliberately too small to nest expressions.
package ast

import "github.com/alecthomas/participle/v2/lexer"

// Program is the root node: [CONST cdecls] VAR vdecls BEGIN cmds END. The
// CONST section may be omitted entirely.
type Program struct {
	Pos lexer.Position

	Consts []*ConstDecl `("CONST" @@*)?`
	Vars   []*VarDecl   `"VAR" @@*`
	_      string       `"BEGIN"`
	Cmds   []*Command   `@@*`
	_      string       `"END"`
}

// ConstDecl is one `name := number` constant declaration.
type ConstDecl struct {
	Pos lexer.Position

	Name  string `@Ident ":="`
	Value int    `@Int`
}

// VarDecl is one declared variable name.
type VarDecl struct {
	Pos lexer.Position

	Name string `@Ident`
}

// Command is a disjunction over the five command shapes. Exactly one
// alternative is set after a successful parse.
type Command struct {
	Pos lexer.Position

	IfElse     *IfElse     `  @@`
	While      *While      `| @@`
	Read       *Read       `| @@`
	Write      *Write      `| @@`
	Assignment *Assignment `| @@`
}

// Assignment is `name := expr ;`.
type Assignment struct {
	Pos lexer.Position

	Name string      `@Ident ":="`
	Expr *Expression `@@ ";"`
}

// IfElse is `IF cond THEN cmds ELSE cmds END` (no trailing `;`).
type IfElse struct {
	Pos lexer.Position

	Cond     *Condition `"IF" @@ "THEN"`
	ThenCmds []*Command `@@*`
	ElseCmds []*Command `"ELSE" @@*`
	_        string     `"END"`
}

// While is `WHILE cond DO cmds END` (no trailing `;`).
type While struct {
	Pos lexer.Position

	Cond *Condition `"WHILE" @@ "DO"`
	Cmds []*Command `@@* "END"`
}

// Read is `READ name ;`.
type Read struct {
	Pos lexer.Position

	Name string `"READ" @Ident ";"`
}

// Write is `WRITE name ;`.
type Write struct {
	Pos lexer.Position

	Name string `"WRITE" @Ident ";"`
}

// Expression is strictly `lit`, `id`, or `id op id` — the grammar never
// nests expressions.
type Expression struct {
	Pos lexer.Position

	BinOp      *BinOp  `  @@`
	Number     *int    `| @Int`
	Identifier *string `| @Ident`
}

// BinOp is `leftName op rightName` with op in {+ - * / %}.
type BinOp struct {
	Pos lexer.Position

	Left  string `@Ident`
	Op    string `@("+" | "-" | "*" | "/" | "%")`
	Right string `@Ident`
}

// Condition is `leftName relop rightName` with relop in
// {== != < > <= >=}. Operands are always leaf identifiers.
type Condition struct {
	Pos lexer.Position

	Left  string `@Ident`
	Op    string `@("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right string `@Ident`
}
