package jackc

import "fmt"

// arithOrRelOps is the fixed set of operator lexemes the resolver's expression-typing pass
// folds on. Logical "&"/"|" are deliberately excluded — they are codegen'd (and/or) but never
// recorded into an obligation's flat type list, mirroring the source compiler's distinction
// between arithmetic/relational operators (which participate in type checking) and the purely
// boolean "&"/"|" (which do not).
var arithOrRelOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "<": true, ">": true, "=": true,
}

// segmentFor maps a storage kind to its VM segment name.
func segmentFor(k SymbolKind) string {
	switch k {
	case KindStatic:
		return "static"
	case KindField:
		return "this"
	case KindArgument:
		return "argument"
	case KindLocal:
		return "local"
	default:
		return ""
	}
}

// emit appends one IR line to the class currently being parsed.
func (p *Parser) emit(line string) {
	p.buf.Emit(line)
}

func (p *Parser) emitf(format string, args ...interface{}) {
	p.emit(fmt.Sprintf(format, args...))
}

// newLabel returns the next label in this class's l0, l1, ... sequence. The counter resets
// to zero at the start of every class, so labels only need to be unique within one class;
// collisions across files are harmless since each class's IR lives in its own .vm file.
func (p *Parser) newLabel() string {
	l := fmt.Sprintf("l%d", p.labels)
	p.labels++
	return l
}

// pushVar looks a variable up in subroutine scope then class scope and, if found, emits the
// matching "push <segment> <offset>" line.
func (p *Parser) pushVar(name string) (Symbol, bool) {
	sym, _, ok := p.scope.LookupLocal(name)
	if !ok {
		return sym, false
	}

	p.emitf("push %s %d", segmentFor(sym.Kind), sym.Offset)
	return sym, true
}

// popVar looks a variable up in subroutine scope then class scope and, if found, emits the
// matching "pop <segment> <offset>" line.
func (p *Parser) popVar(name string) (Symbol, bool) {
	sym, _, ok := p.scope.LookupLocal(name)
	if !ok {
		return sym, false
	}

	p.emitf("pop %s %d", segmentFor(sym.Kind), sym.Offset)
	return sym, true
}

// markInitialisedLocal flips a variable's initialised flag in whichever of subroutine/class
// scope it belongs to.
func (p *Parser) markInitialisedLocal(name string) {
	if _, tab, ok := p.scope.LookupLocal(name); ok {
		tab.MarkInitialised(name)
	}
}

// emitCall emits the call classified per the source's rule set, used by both `do` statements
// (whose return value is always discarded) and expression-embedded calls (whose return value
// feeds the surrounding expression). discard controls whether the post-call "pop temp 0" and
// its patch-marker line are emitted — only a `do` call's value is ever unused. argGroups holds
// one flat type/operator record per actual argument, so its length is exactly the argument
// count as written in source — no inference needed.
//
//  1. No receiver ('.'): a method call on `this`.
//  2. Receiver found as a variable in scope: a method call on that object.
//  3. Receiver not found as a variable: a call to a class-level function, or a constructor.
func (p *Parser) emitCall(receiver string, member string, argGroups [][]string, line int, discard bool) {
	n := len(argGroups)

	if member == "" {
		// No '.' — method call on `this`.
		p.emit("push pointer 0")
		p.emitf("call %s.%s %d", p.class, receiver, n+1)
		p.recordCall(Obligation{Kind: ObligationCall, File: p.file, Line: line, Name: receiver, CallArgs: argGroups})

		if discard {
			p.emit(receiver) // patch-marker
			p.emit("pop temp 0")
		}

		return
	}

	if member == "new" {
		// Constructor call: receiver is a class name, never a variable.
		p.emitf("call %s.new %d", receiver, n)
		p.recordCall(Obligation{Kind: ObligationCall, File: p.file, Line: line, Name: "new", Type: receiver, CallArgs: argGroups})

		if discard {
			p.emit("new") // patch-marker
			p.emit("pop temp 0")
		}

		return
	}

	if sym, ok := p.lookupLocalSym(receiver); ok {
		p.pushVar(receiver)
		p.emitf("call %s.%s %d", sym.Type, member, n+1)
	} else {
		p.emitf("call %s.%s %d", receiver, member, n)
	}

	p.recordCall(Obligation{Kind: ObligationCall, File: p.file, Line: line, Name: member, CallArgs: argGroups})

	if discard {
		p.emit(member) // patch-marker
		p.emit("pop temp 0")
	}
}

// lookupLocalSym is a small adapter so emitCall can use LookupLocal without the table the
// symbol was found in.
func (p *Parser) lookupLocalSym(name string) (Symbol, bool) {
	sym, _, ok := p.scope.LookupLocal(name)
	return sym, ok
}

// recordCall appends a call obligation to the shared work-list.
func (p *Parser) recordCall(o Obligation) *Obligation {
	return p.work.Add(o)
}
