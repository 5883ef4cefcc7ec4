package jackc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()

	l := NewLexerFromReader(strings.NewReader(src), "test")
	toks, err := l.Run()
	require.NoError(t, err)
	return toks
}

func TestLexer_Keywords(t *testing.T) {
	toks := lexAll(t, "class method void")
	require.Len(t, toks, 3)
	for _, tok := range toks {
		assert.Equal(t, TokenKeyword, tok.Kind)
	}
	assert.Equal(t, "class", toks[0].Value)
	assert.Equal(t, "method", toks[1].Value)
	assert.Equal(t, "void", toks[2].Value)
}

func TestLexer_IdentifierVsKeyword(t *testing.T) {
	toks := lexAll(t, "classify")
	require.Len(t, toks, 1)
	assert.Equal(t, TokenIdentifier, toks[0].Kind)
	assert.Equal(t, "classify", toks[0].Value)
}

func TestLexer_IdentifierNoMidUnderscore(t *testing.T) {
	// Continuation characters are letters or digits only; an underscore ends the current
	// identifier and starts a fresh one (underscore is still a valid leading character),
	// matching the documented lexer quirk.
	toks := lexAll(t, "my_var")
	require.Len(t, toks, 2)
	assert.Equal(t, Token{Kind: TokenIdentifier, Value: "my", Line: 1}, toks[0])
	assert.Equal(t, Token{Kind: TokenIdentifier, Value: "_var", Line: 1}, toks[1])
}

func TestLexer_IntConst(t *testing.T) {
	toks := lexAll(t, "12345")
	require.Len(t, toks, 1)
	assert.Equal(t, TokenIntConst, toks[0].Kind)
	assert.Equal(t, "12345", toks[0].Value)
}

func TestLexer_StringLiteral(t *testing.T) {
	toks := lexAll(t, `"hello, world"`)
	require.Len(t, toks, 1)
	assert.Equal(t, TokenStringLiteral, toks[0].Kind)
	assert.Equal(t, "hello, world", toks[0].Value)
}

func TestLexer_Symbols(t *testing.T) {
	toks := lexAll(t, "(){}.,;+-*/&|~<>=")
	var got strings.Builder
	for _, tok := range toks {
		require.Equal(t, TokenSymbol, tok.Kind)
		got.WriteString(tok.Value)
	}
	assert.Equal(t, "(){}.,;+-*/&|~<>=", got.String())
}

func TestLexer_LineComment(t *testing.T) {
	toks := lexAll(t, "let x = 1; // trailing comment\nlet y = 2;")
	// No comment text leaks into the token stream.
	for _, tok := range toks {
		assert.NotContains(t, tok.Value, "comment")
	}
}

func TestLexer_BlockComment(t *testing.T) {
	toks := lexAll(t, "/* a block\n comment spanning lines */ let x = 1;")
	require.Len(t, toks, 5)
	assert.Equal(t, "let", toks[0].Value)
}

func TestLexer_BlockCommentAsteriskInBody(t *testing.T) {
	// The simplified termination rule (current == '/' and previous == '*') must not end the
	// comment early on an interior '*' that isn't immediately followed by '/'.
	toks := lexAll(t, "/* a * b * / still inside */ let")
	require.Len(t, toks, 1)
	assert.Equal(t, "let", toks[0].Value)
}

func TestLexer_UnterminatedStringIsFatal(t *testing.T) {
	l := NewLexerFromReader(strings.NewReader(`"unterminated`), "test")
	_, err := l.Run()
	assert.Error(t, err)
}

func TestLexer_UnterminatedBlockCommentIsFatal(t *testing.T) {
	l := NewLexerFromReader(strings.NewReader("/* never closed"), "test")
	_, err := l.Run()
	assert.Error(t, err)
}

func TestLexer_LineTracking(t *testing.T) {
	toks := lexAll(t, "let x = 1;\nlet y = 2;")
	// "y" is the 7th token and sits on line 2.
	var y Token
	for _, tok := range toks {
		if tok.Kind == TokenIdentifier && tok.Value == "y" {
			y = tok
		}
	}
	assert.Equal(t, 2, y.Line)
}
