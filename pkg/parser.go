package jackc

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Parser is a recursive-descent parser for one Jack class that emits VM IR directly as it
// recognizes each production — there is no separate AST. Obligations it cannot resolve
// on the spot (an identifier type, a call's arity, an assignment's compatibility) are
// recorded on the shared [WorkList] for the program-wide [Resolver] to settle once every
// class has been parsed. One Parser handles exactly one translation unit; scope and
// work-list state are shared with the rest of the program via the pointers it's built with.
type Parser struct {
	tok   Tokenizer
	file  string // class file name, without the .jack extension
	scope *ScopeStack
	work  *WorkList
	buf   *IRBuffer
	diag  *Diagnostics // nil is fine; logging is skipped

	lookahead *Token
	ended     bool
	endTok    Token

	labels int

	class          string
	subroutine     string
	subroutineType string
	subroutineKind string // "constructor" | "method" | "function"

	foundReturn     bool
	foundIfReturn   bool
	foundElseReturn bool

	warnings []*CompileWarning
}

// Warnings returns every non-fatal diagnostic the parser itself raised (as opposed to ones
// the [Resolver] raises later), in the order encountered.
func (p *Parser) Warnings() []*CompileWarning {
	return p.warnings
}

// NewParser returns a Parser for one translation unit, sharing scope and work-list state
// with the rest of the program. diag may be nil, in which case verbose symbol-table logging
// is simply skipped.
func NewParser(tok Tokenizer, scope *ScopeStack, work *WorkList, diag *Diagnostics) *Parser {
	name := filepath.Base(tok.Filename())
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &Parser{tok: tok, file: name, scope: scope, work: work, diag: diag}
}

// ParseClass parses and code-generates one whole class, returning its accumulated IR. The
// first [CompileError] encountered aborts the parse and is returned as err; buf is nil in
// that case.
func (p *Parser) ParseClass() (buf *IRBuffer, err error) {
	defer recoverFatal(&err)

	go p.tok.Do()

	classScope := p.scope.Push()
	defer func() {
		if p.diag != nil {
			p.diag.SymbolTable(p.class, "class", classScope.DebugString())
		}
		p.scope.Pop()
	}()

	p.expectKeyword("class")
	nameTok := p.expectIdentifier()

	if _, exists := p.scope.Program().Lookup(nameTok.Value); exists {
		p.errorf(nameTok, "Redeclaration of identifier.")
	}

	p.class = nameTok.Value
	p.scope.Program().Insert(Symbol{Name: p.class, Type: "class", Kind: KindClass})
	p.buf = NewIRBuffer(p.class)

	p.expectSymbol("{")
	for !p.atSymbol("}") {
		if p.peek().Kind == TokenEOF {
			p.errorf(p.peek(), "unexpected end of file, expected '}'.")
		}

		p.classMember(classScope)
	}
	p.expectSymbol("}")

	return p.buf, nil
}

// classMember parses one classVarDec or subroutineDec.
func (p *Parser) classMember(classScope *SymbolTable) {
	t := p.peek()
	switch {
	case t.Kind == TokenKeyword && (t.Value == "static" || t.Value == "field"):
		p.classVarDec(classScope)
	case t.Kind == TokenKeyword && (t.Value == "constructor" || t.Value == "function" || t.Value == "method"):
		p.subroutineDec(classScope)
	default:
		p.errorf(t, "expected a class variable or subroutine declaration.")
	}
}

func (p *Parser) classVarDec(classScope *SymbolTable) {
	kwTok := p.next()

	kind := KindField
	if kwTok.Value == "static" {
		kind = KindStatic
	}

	typ := p.parseType()

	for {
		idTok := p.expectIdentifier()
		if _, exists := classScope.Lookup(idTok.Value); exists {
			p.errorf(idTok, "Redeclaration of identifier.")
		}

		sym := Symbol{Name: idTok.Value, Type: typ, Kind: kind, Initialised: true}
		classScope.Insert(sym)
		p.scope.Program().Insert(sym)

		if !p.atSymbol(",") {
			break
		}
		p.next()
	}

	p.expectSymbol(";")
}

func (p *Parser) subroutineDec(classScope *SymbolTable) {
	subScope := p.scope.Push()
	defer func() {
		if p.diag != nil {
			p.diag.SymbolTable(p.class+"."+p.subroutine, "subroutine", subScope.DebugString())
		}
		p.scope.Pop()
	}()

	kwTok := p.next()
	p.subroutineKind = kwTok.Value

	if p.subroutineKind == "method" {
		subScope.Insert(Symbol{Name: "this", Type: p.class, Kind: KindArgument, Initialised: true})
	}

	var retType string
	if p.atKeyword("void") {
		p.next()
		retType = "void"
	} else {
		retType = p.parseType()
	}
	p.subroutineType = retType

	nameTok := p.expectIdentifier()
	if _, exists := p.scope.Program().Lookup(nameTok.Value); exists {
		p.errorf(nameTok, "Redeclaration of identifier.")
	}
	p.subroutine = nameTok.Value

	p.scope.Program().Insert(Symbol{Name: p.subroutine, Type: retType, Kind: KindSubroutine})

	p.expectSymbol("(")
	p.paramList(subScope)
	p.expectSymbol(")")

	p.expectSymbol("{")
	for p.atKeyword("var") {
		p.varDec(subScope)
	}

	p.emitf("function %s.%s %d", p.class, p.subroutine, subScope.Count(KindLocal))

	switch p.subroutineKind {
	case "constructor":
		p.emitf("push constant %d", classScope.Count(KindField))
		p.emit("call Memory.alloc 1")
		p.emit("pop pointer 0")
	case "method":
		p.emit("push argument 0")
		p.emit("pop pointer 0")
	}

	p.foundReturn = false
	p.foundIfReturn = false
	p.foundElseReturn = false

	p.statementBlock(func() { p.foundReturn = true })
	closeTok := p.next()

	if p.subroutineType == "void" && !p.foundReturn {
		p.foundReturn = true
		p.emit("push constant 0")
		p.emit("return")
	}

	if !p.foundReturn && !(p.foundIfReturn && p.foundElseReturn) {
		p.errorf(closeTok, "Subroutine '%s' does not return a value on every path.", p.subroutine)
	}
}

func (p *Parser) paramList(subScope *SymbolTable) {
	if p.atSymbol(")") {
		return
	}

	for {
		typ := p.parseType()
		p.scope.Program().AppendParamType(p.subroutine, typ)

		idTok := p.expectIdentifier()
		subScope.Insert(Symbol{Name: idTok.Value, Type: typ, Kind: KindArgument, Initialised: true})

		if !p.atSymbol(",") {
			return
		}
		p.next()
	}
}

func (p *Parser) varDec(subScope *SymbolTable) {
	p.expectKeyword("var")
	typ := p.parseType()

	for {
		idTok := p.expectIdentifier()
		if _, exists := subScope.Lookup(idTok.Value); exists {
			p.errorf(idTok, "Redeclaration of identifier.")
		}

		subScope.Insert(Symbol{Name: idTok.Value, Type: typ, Kind: KindLocal})

		if !p.atSymbol(",") {
			break
		}
		p.next()
	}

	p.expectSymbol(";")
}

// parseType consumes int/char/boolean or a class-name identifier. Identifier types are
// recorded as an obligation for the resolver to confirm a matching class was declared
// somewhere in the program.
func (p *Parser) parseType() string {
	t := p.next()
	switch {
	case t.Kind == TokenKeyword && (t.Value == "int" || t.Value == "char" || t.Value == "boolean"):
		return t.Value
	case t.Kind == TokenIdentifier:
		p.work.Add(Obligation{Kind: ObligationType, File: p.file, Line: t.Line, Name: t.Value})
		return t.Value
	default:
		p.errorf(t, "expected a type.")
		return ""
	}
}

// statementBlock parses statements up to (but not including) the closing '}', enforcing the
// unreachable-code check: once a `return` has been parsed, any further statement in the same
// block is a hard error rather than being silently parsed and emitted. onReturn, if non-nil,
// runs when a top-level `return` in this block is seen, so callers can track per-branch
// all-paths-return state.
func (p *Parser) statementBlock(onReturn func()) {
	returned := false

	for !p.atSymbol("}") {
		if p.peek().Kind == TokenEOF {
			p.errorf(p.peek(), "unexpected end of file, expected '}'.")
		}

		if returned {
			p.errorf(p.peek(), "Unreachable code.")
		}

		if p.atKeyword("return") {
			returned = true
			if onReturn != nil {
				onReturn()
			}
		}
		p.statement()
	}
}

func (p *Parser) statement() {
	t := p.peek()
	if t.Kind != TokenKeyword {
		p.errorf(t, "expected a statement.")
		return
	}

	switch t.Value {
	case "let":
		p.letStatement()
	case "if":
		p.ifStatement()
	case "while":
		p.whileStatement()
	case "do":
		p.doStatement()
	case "return":
		p.returnStatement()
	default:
		p.errorf(t, "expected a statement.")
	}
}

func (p *Parser) letStatement() {
	letTok := p.expectKeyword("let")
	idTok := p.expectIdentifier()
	name := idTok.Value

	sym, _, ok := p.scope.LookupLocal(name)
	if !ok {
		p.errorf(idTok, "Variable must be declared before being used.")
	}
	p.markInitialisedLocal(name)

	obl := Obligation{Kind: ObligationAssignment, File: p.file, Line: letTok.Line, LHS: sym.Type}

	isArray := false
	if p.atSymbol("[") {
		isArray = true
		obl.LHS = "ArrayEntry"
		p.next()

		p.pushVar(name)
		idxLine := p.peek().Line
		idxExpr := p.expression()
		p.work.Add(Obligation{Kind: ObligationArrayIndex, File: p.file, Line: idxLine, Expr: idxExpr})
		p.expectSymbol("]")
		p.emit("add")
	}

	p.expectSymbol("=")
	obl.Expr = p.expression()
	p.work.Add(obl)
	p.expectSymbol(";")

	if isArray {
		p.emit("pop temp 0")
		p.emit("pop pointer 1")
		p.emit("push temp 0")
		p.emit("pop that 0")
	} else {
		p.popVar(name)
	}
}

func (p *Parser) ifStatement() {
	p.expectKeyword("if")
	p.expectSymbol("(")
	p.expression()
	p.expectSymbol(")")

	lFalse := p.newLabel()
	p.emit("not")
	p.emit("if-goto " + lFalse)

	p.expectSymbol("{")
	p.statementBlock(func() { p.foundIfReturn = true })
	p.next()

	lEnd := p.newLabel()
	p.emit("goto " + lEnd)
	p.emit("label " + lFalse)

	if p.atKeyword("else") {
		p.next()
		p.expectSymbol("{")
		p.statementBlock(func() { p.foundElseReturn = true })
		p.next()
	}

	p.emit("label " + lEnd)
}

func (p *Parser) whileStatement() {
	p.expectKeyword("while")

	lTop := p.newLabel()
	p.emit("label " + lTop)

	p.expectSymbol("(")
	p.expression()
	p.expectSymbol(")")

	lEnd := p.newLabel()
	p.emit("not")
	p.emit("if-goto " + lEnd)

	p.expectSymbol("{")
	p.statementBlock(nil)
	p.next()

	p.emit("goto " + lTop)
	p.emit("label " + lEnd)
}

func (p *Parser) doStatement() {
	p.expectKeyword("do")

	firstTok := p.expectIdentifier()
	receiver := firstTok.Value
	member := ""

	if p.atSymbol(".") {
		p.next()
		member = p.expectIdentifier().Value
	}

	p.expectSymbol("(")
	args := p.expressionList()
	p.expectSymbol(")")
	p.expectSymbol(";")

	p.emitCall(receiver, member, args, firstTok.Line, true)
}

func (p *Parser) returnStatement() {
	retTok := p.expectKeyword("return")

	var args []string
	if !p.atSymbol(";") {
		args = p.expression()
	} else {
		p.emit("push constant 0")
	}

	p.work.Add(Obligation{
		Kind: ObligationReturn, File: p.file, Line: retTok.Line,
		Name: p.subroutine, Type: p.subroutineType, Expr: args,
	})

	p.expectSymbol(";")
	p.emit("return")
}

// expressionList parses a comma-separated, possibly-empty argument list, returning one flat
// type/operator record per argument. Its length is the call's true argument count.
func (p *Parser) expressionList() [][]string {
	if p.atSymbol(")") {
		return nil
	}

	var groups [][]string
	for {
		groups = append(groups, p.expression())
		if !p.atSymbol(",") {
			return groups
		}
		p.next()
	}
}

// expression parses the "&"/"|" precedence level. Unlike every level below it, the operator
// lexeme itself is never appended to the returned record — only arithmetic and relational
// operators participate in the resolver's type-folding pass.
func (p *Parser) expression() []string {
	out := p.relational()

	for p.atSymbol("&") || p.atSymbol("|") {
		op := p.next()
		if op.Value == "&" {
			rhs := p.relational()
			p.emit("and")
			out = append(out, rhs...)
		} else {
			rhs := p.relational()
			p.emit("or")
			out = append(out, rhs...)
		}
	}

	return out
}

func (p *Parser) relational() []string {
	out := p.arithmetic()

	for p.atSymbol("=") || p.atSymbol("<") || p.atSymbol(">") {
		op := p.next()
		rhs := p.arithmetic()

		switch op.Value {
		case "=":
			p.emit("eq")
		case "<":
			p.emit("lt")
		case ">":
			p.emit("gt")
		}

		out = append(out, op.Value)
		out = append(out, rhs...)
	}

	return out
}

func (p *Parser) arithmetic() []string {
	out := p.term()

	for p.atSymbol("+") || p.atSymbol("-") {
		op := p.next()
		rhs := p.term()

		if op.Value == "+" {
			p.emit("add")
		} else {
			p.emit("sub")
		}

		out = append(out, op.Value)
		out = append(out, rhs...)
	}

	return out
}

func (p *Parser) term() []string {
	out := p.unary()

	for p.atSymbol("*") || p.atSymbol("/") {
		op := p.next()
		rhs := p.unary()

		if op.Value == "*" {
			p.emit("call Math.multiply 2")
		} else {
			p.emit("call Math.divide 2")
		}

		out = append(out, op.Value)
		out = append(out, rhs...)
	}

	return out
}

func (p *Parser) unary() []string {
	if p.atSymbol("-") {
		p.next()
		out := p.unary()
		p.emit("neg")
		return out
	}

	if p.atSymbol("~") {
		p.next()
		out := p.unary()
		p.emit("not")
		return out
	}

	return p.operand()
}

// operand parses one operand: a literal, a parenthesized expression, or an identifier with
// its optional qualifier and optional trailing array-index or call.
func (p *Parser) operand() []string {
	t := p.peek()

	switch {
	case t.Kind == TokenIntConst:
		p.next()
		p.emitf("push constant %s", t.Value)
		return []string{"int"}

	case t.Kind == TokenStringLiteral:
		p.next()
		return p.stringLiteral(t.Value)

	case t.Kind == TokenKeyword && t.Value == "true":
		p.next()
		p.emit("push constant 1")
		p.emit("neg")
		return []string{"boolean"}

	case t.Kind == TokenKeyword && t.Value == "false":
		p.next()
		p.emit("push constant 0")
		return []string{"boolean"}

	case t.Kind == TokenKeyword && t.Value == "null":
		p.next()
		p.emit("push constant 0")
		return []string{"null"} // null folds as its own case in compatibility rules

	case t.Kind == TokenKeyword && t.Value == "this":
		p.next()
		p.emit("push pointer 0")
		return []string{p.class}

	case t.Kind == TokenSymbol && t.Value == "(":
		p.next()
		out := p.expression()
		p.expectSymbol(")")
		return out

	case t.Kind == TokenIdentifier:
		p.next()
		return p.identifierOperand(t)

	default:
		p.errorf(t, "expected an expression.")
		return nil
	}
}

// stringLiteral pushes a freshly-constructed String object, one String.appendChar call per
// character, mirroring the standard Jack string-construction idiom.
func (p *Parser) stringLiteral(s string) []string {
	p.emitf("push constant %d", len(s))
	p.emit("call String.new 1")
	for _, r := range s {
		p.emitf("push constant %d", r)
		p.emit("call String.appendChar 2")
	}

	return []string{"String"}
}

// identifierOperand handles every shape an operand starting with an identifier can take:
// a plain variable, an array element, a bare call (method on `this`), or a qualified call
// (a method on a variable, or a class-level function/constructor call).
func (p *Parser) identifierOperand(idTok Token) []string {
	name := idTok.Value

	if p.atSymbol(".") {
		p.next()
		memberTok := p.expectIdentifier()
		member := memberTok.Value

		if p.atSymbol("(") {
			p.next()
			args := p.expressionList()
			p.expectSymbol(")")
			p.emitCall(name, member, args, idTok.Line, false)

			if member == "new" {
				return []string{name}
			}
			return []string{member} // substituted for member's return type by the resolver
		}

		if p.atSymbol("[") {
			// Grammar allows a qualified identifier followed directly by an index; treated
			// as an array access on the qualified name rather than a call.
			p.next()
			idxExpr := p.expression()
			p.work.Add(Obligation{Kind: ObligationArrayIndex, File: p.file, Line: idTok.Line, Expr: idxExpr})
			p.expectSymbol("]")

			p.pushVar(name)
			p.emit("add")
			p.emit("pop pointer 1")
			p.emit("push that 0")
			return []string{"ArrayEntry"}
		}

		p.errorf(p.peek(), "expected '(' or '[' after qualified identifier.")
		return nil
	}

	if p.atSymbol("(") {
		p.next()
		args := p.expressionList()
		p.expectSymbol(")")
		p.emitCall(name, "", args, idTok.Line, false)
		return []string{name} // substituted for name's return type by the resolver
	}

	sym, _, ok := p.scope.LookupLocal(name)
	if !ok {
		p.errorf(idTok, "Variable must be declared before being used.")
	}

	if !sym.Initialised {
		p.warn(idTok, "Variable '%s' may not have been initialised.", name)
	}

	if p.atSymbol("[") {
		p.next()
		idxExpr := p.expression()
		p.work.Add(Obligation{Kind: ObligationArrayIndex, File: p.file, Line: idTok.Line, Expr: idxExpr})
		p.expectSymbol("]")

		p.pushVar(name)
		p.emit("add")
		p.emit("pop pointer 1")
		p.emit("push that 0")
		return []string{"ArrayEntry"}
	}

	p.pushVar(name)
	return []string{sym.Type}
}

// -- doc note --
// identifierOperand, stringLiteral, unary/term/arithmetic/relational/expression above all
// return a single expression's flat record (operand types interleaved with the arithmetic/
// relational operator lexemes "+","-","*","/","<",">","="). "&" and "|" never appear in the
// record — only arithmetic and relational operators participate in the resolver's folding.

// -- token cursor --

func (p *Parser) peek() Token {
	if p.lookahead != nil {
		return *p.lookahead
	}
	if p.ended {
		return p.endTok
	}

	t := p.tok.Get()
	if !t.isValid() {
		p.ended = true
		p.endTok = t
	}
	p.lookahead = &t
	return t
}

func (p *Parser) next() Token {
	t := p.peek()
	if p.ended {
		return t
	}
	p.lookahead = nil
	return t
}

func (p *Parser) atSymbol(sym string) bool {
	t := p.peek()
	return t.Kind == TokenSymbol && t.Value == sym
}

func (p *Parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.Kind == TokenKeyword && t.Value == kw
}

func (p *Parser) expectKeyword(kw string) Token {
	t := p.next()
	if t.Kind != TokenKeyword || t.Value != kw {
		p.errorf(t, "expected keyword '%s'.", kw)
	}
	return t
}

func (p *Parser) expectSymbol(sym string) Token {
	t := p.next()
	if t.Kind != TokenSymbol || t.Value != sym {
		p.errorf(t, "expected '%s'.", sym)
	}
	return t
}

func (p *Parser) expectIdentifier() Token {
	t := p.next()
	if t.Kind != TokenIdentifier {
		p.errorf(t, "expected an identifier.")
	}
	return t
}

func (p *Parser) errorf(t Token, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if t.Kind == TokenError {
		msg = t.Value
	}

	abort(&CompileError{File: p.file, Line: t.Line, Lexeme: t.Value, Message: msg})
}

// warn records a non-fatal diagnostic directly, for the cases the parser itself can already
// tell are wrong (use of a possibly-uninitialised variable) without waiting on the resolver.
func (p *Parser) warn(t Token, format string, args ...interface{}) {
	p.warnings = append(p.warnings, &CompileWarning{
		File: p.file, Line: t.Line, Lexeme: t.Value, Message: fmt.Sprintf(format, args...),
	})
}
