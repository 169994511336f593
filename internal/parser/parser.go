// Package parser builds an *ast.Program from source text, reporting the
// first syntax error with a caret-style source snippet. Per spec, there is
// no error recovery: the first error aborts compilation.
package parser

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"accvm/internal/ast"
	"accvm/internal/lexer"
)

var buildOnce = sync.OnceValues(func() (*participle.Parser[ast.Program], error) {
	return participle.Build[ast.Program](
		participle.Lexer(lexer.Rules),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
})

// ParseFile reads path and parses it into a Program.
func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses source text, using name only for error messages.
func ParseSource(name, source string) (*ast.Program, error) {
	p, err := buildOnce()
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	program, err := p.ParseString(name, source)
	if err != nil {
		reportParseError(source, err)
		return nil, err
	}
	return program, nil
}

// reportParseError prints a caret-style syntax error to stderr.
func reportParseError(source string, err error) {
	red := color.New(color.FgRed).SprintFunc()

	pe, ok := err.(participle.Error)
	if !ok {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("unexpected error: %s", err)))
		return
	}

	pos := pe.Position()
	lines := strings.Split(source, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("syntax error at unknown location: %s", err)))
		return
	}

	line := lines[pos.Line-1]
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	caret := strings.Repeat(" ", col) + "^"

	fmt.Fprintln(os.Stderr, red(fmt.Sprintf("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)))
	fmt.Fprintln(os.Stderr, line)
	fmt.Fprintln(os.Stderr, red(caret))
	fmt.Fprintln(os.Stderr, red(fmt.Sprintf("-> %s", pe.Message())))
}
