package jackc

import "fmt"

// CompileError is a fatal diagnostic: malformed lexical input, a syntactic mismatch, a
// redeclared identifier, use of an undeclared variable, unreachable code, a subroutine
// missing a return on some path, or a resolver-level unknown type/subroutine/constructor,
// incompatible operand, or non-numeric array index. A CompileError aborts compilation once
// raised.
type CompileError struct {
	File    string
	Line    int
	Lexeme  string // set only for parse-time errors; empty for resolver diagnostics
	Message string
}

func (e *CompileError) Error() string {
	if e.Lexeme != "" {
		return fmt.Sprintf("%s.jack: Error, line %d, at or near '%s', %s", e.File, e.Line, e.Lexeme, e.Message)
	}

	return fmt.Sprintf("%s.jack: Error, line %d, %s", e.File, e.Line, e.Message)
}

// CompileWarning is a non-fatal diagnostic: an uninitialised variable use, a call
// argument-count/type mismatch, an incompatible assignment, or a return expression
// incompatible with the declared subroutine type. Warnings do not abort compilation.
type CompileWarning struct {
	File    string
	Line    int
	Lexeme  string
	Message string
}

func (w *CompileWarning) Error() string {
	if w.Lexeme != "" {
		return fmt.Sprintf("%s.jack: Warning, line %d, at or near '%s', %s", w.File, w.Line, w.Lexeme, w.Message)
	}

	return fmt.Sprintf("%s.jack: Warning, line %d, %s", w.File, w.Line, w.Message)
}

// fatal is panicked with to unwind a parse or resolve on the first [CompileError], mirroring
// the source compiler's unconditional abort without making the library itself call os.Exit.
// It is recovered at the one entry point each phase exposes (ParseClass, (*Resolver).Resolve).
type fatal struct {
	err *CompileError
}

func abort(err *CompileError) {
	panic(fatal{err})
}

// recoverFatal turns a panic(fatal{...}) into a returned error. Any other panic propagates
// unchanged — only the documented fatal-abort path is ever meant to unwind through here.
func recoverFatal(errp *error) {
	if r := recover(); r != nil {
		if f, ok := r.(fatal); ok {
			*errp = f.err
			return
		}

		panic(r)
	}
}
