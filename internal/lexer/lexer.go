// Package lexer tokenizes the tiny imperative language: keywords, simple
// identifiers, decimal numerals, the fixed operator set, and `(* ... *)`
// comments.
package lexer

import "github.com/alecthomas/participle/v2/lexer"

// Rules is the stateful token scanner shared by the parser. Reserved words
// are given their own token type and listed ahead of Ident so the lexer
// commits to the keyword reading at the point of the match; without that,
// a bare repetition like "a list of declared names" would happily keep
// consuming a following keyword (BEGIN, END, ...) as just another
// identifier, since it is lexically indistinguishable from one.
var Rules = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `\(\*[\s\S]*?\*\)`, nil},
		{"Keyword", `\b(CONST|VAR|BEGIN|END|IF|THEN|ELSE|WHILE|DO|READ|WRITE)\b`, nil},
		{"Ident", `[A-Za-z_][A-Za-z0-9_]*`, nil},
		{"Int", `[0-9]+`, nil},
		{"Operator", `(:=|==|!=|<=|>=|[-+*/%<>;:])`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
