package st

import "fmt"

// TokenType tags a leaf of the syntax tree. Keywords use their upper-case
// spelling and punctuation uses its literal text.
type TokenType string

const (
	Identifier   TokenType = "IDENTIFIER"
	Integer      TokenType = "INTEGER"
	RealNumber   TokenType = "REAL_NUMBER"
	StringLit    TokenType = "STRING_LITERAL"
	TypedLiteral TokenType = "TYPED_LITERAL"
	HWAddress    TokenType = "HW_ADDRESS"
	EOF          TokenType = "EOF"

	// RefAssign and "?=" are the reference and attempt assignments.
	RefAssign TokenType = "REF="
)

var keywordList = []string{
	"PROGRAM", "END_PROGRAM", "FUNCTION", "END_FUNCTION",
	"FUNCTION_BLOCK", "END_FUNCTION_BLOCK", "METHOD", "END_METHOD",
	"PROPERTY", "END_PROPERTY", "INTERFACE", "END_INTERFACE",
	"ACTION", "END_ACTION", "EXTENDS", "IMPLEMENTS",
	"VAR", "VAR_INPUT", "VAR_OUTPUT", "VAR_IN_OUT", "VAR_GLOBAL",
	"VAR_EXTERNAL", "VAR_TEMP", "VAR_STAT", "VAR_INST", "VAR_CONFIG",
	"END_VAR", "RETAIN", "NON_RETAIN", "PERSISTENT", "CONSTANT", "AT",
	"ARRAY", "OF", "POINTER", "REFERENCE", "TO", "STRING", "WSTRING",
	"IF", "THEN", "ELSIF", "ELSE", "END_IF", "CASE", "END_CASE",
	"FOR", "BY", "DO", "END_FOR", "WHILE", "END_WHILE",
	"REPEAT", "UNTIL", "END_REPEAT", "EXIT", "CONTINUE", "RETURN",
	"AND", "AND_THEN", "OR", "OR_ELSE", "XOR", "NOT", "MOD",
	"TRUE", "FALSE", "THIS", "SUPER",
}

var primitiveList = []string{
	"BOOL", "BYTE", "WORD", "DWORD", "LWORD",
	"SINT", "USINT", "INT", "UINT", "DINT", "UDINT", "LINT", "ULINT",
	"REAL", "LREAL", "TIME", "LTIME", "DATE", "TOD", "TIME_OF_DAY",
	"DT", "DATE_AND_TIME", "CHAR", "WCHAR", "BIT", "ANY",
}

var varBlockStarts = map[TokenType]bool{
	"VAR": true, "VAR_INPUT": true, "VAR_OUTPUT": true, "VAR_IN_OUT": true,
	"VAR_GLOBAL": true, "VAR_EXTERNAL": true, "VAR_TEMP": true,
	"VAR_STAT": true, "VAR_INST": true, "VAR_CONFIG": true,
}

var varQualifiers = map[TokenType]bool{
	"RETAIN": true, "NON_RETAIN": true, "PERSISTENT": true, "CONSTANT": true,
}

// GrammarError is a lexical or syntax error inside one Structured Text body.
type GrammarError struct {
	Msg    string
	Line   int
	Column int
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Line, e.Column)
}
