package jackc

import "fmt"

// Resolver performs the whole-program pass that runs once every translation unit has been
// parsed: it settles every deferred [Obligation] against the program-scope symbol table built
// up across all those parses, and patches each class's IR in place to remove the call-site
// markers the parser left behind. It generalizes the source compiler's five separate
// resolution passes (one per declaration vector) into a single walk dispatching on
// Obligation.Kind.
type Resolver struct {
	scope       *ScopeStack
	work        *WorkList
	buffers     []*IRBuffer
	warnAsError bool
	warnings    []*CompileWarning
}

// NewResolver returns a Resolver over the program scope and work-list built while parsing,
// and the set of IR buffers to patch once every obligation is settled.
func NewResolver(scope *ScopeStack, work *WorkList, buffers []*IRBuffer, warnAsError bool) *Resolver {
	return &Resolver{scope: scope, work: work, buffers: buffers, warnAsError: warnAsError}
}

// Resolve runs the full pass: type obligations, then calls, then assignments, returns, and
// array indices, then the patch-marker cleanup over every buffer. The first incompatibility
// that the source compiler treats as fatal aborts resolution and is returned as err; every
// other incompatibility is accumulated as a warning (or, if warnAsError, converted to a fatal
// error at the point it's raised).
func (r *Resolver) Resolve() (warnings []*CompileWarning, err error) {
	defer recoverFatal(&err)

	r.resolveTypes()
	r.resolveCalls()
	r.resolveAssignments()
	r.resolveReturns()
	r.resolveArrayIndices()
	r.patchCalls()

	return r.warnings, nil
}

// resolveTypes confirms every identifier used as a type names a declared class.
func (r *Resolver) resolveTypes() {
	for _, o := range r.work.Of(ObligationType) {
		if _, ok := r.lookupClass(o.Name); !ok {
			r.fatal(o.File, o.Line, "Unknown type '%s'.", o.Name)
		}
		o.Resolved = true
	}
}

// resolveCalls confirms every call site names a declared subroutine or constructor, and warns
// on an arity or argument-type mismatch against its declaration. Subroutine names are resolved
// program-wide by bare name, not qualified by receiver class — the same simplification the
// source compiler makes, since Jack programs in practice never collide on subroutine name
// across classes.
func (r *Resolver) resolveCalls() {
	for _, o := range r.work.Of(ObligationCall) {
		if o.Type != "" {
			if _, ok := r.lookupClass(o.Type); !ok {
				r.fatal(o.File, o.Line, "Unknown class '%s' in constructor call.", o.Type)
				continue
			}
		}

		decl, ok := r.scope.Program().Lookup(o.Name)
		if !ok || decl.Kind != KindSubroutine {
			r.fatal(o.File, o.Line, "Unknown subroutine or constructor '%s'.", o.Name)
			continue
		}

		o.Resolved = true
		o.ArgsMatch = len(o.CallArgs) == len(decl.ParamTypes)

		if !o.ArgsMatch {
			r.warn(o.File, o.Line, "'%s' expects %d argument(s), got %d.", o.Name, len(decl.ParamTypes), len(o.CallArgs))
			continue
		}

		for i, arg := range o.CallArgs {
			argType := r.fold(r.substituteReturnTypes(arg))
			if argType == "" {
				continue
			}

			if !r.compatible(decl.ParamTypes[i], argType) {
				r.warn(o.File, o.Line, "Argument %d to '%s' has incompatible type '%s', expected '%s'.",
					i+1, o.Name, argType, decl.ParamTypes[i])
			}
		}
	}
}

// resolveAssignments checks every `let` against its LHS's declared type, substituting bare
// subroutine names for their declared return type before folding.
func (r *Resolver) resolveAssignments() {
	for _, o := range r.work.Of(ObligationAssignment) {
		rhs := r.fold(r.substituteReturnTypes(o.Expr))
		if rhs == "" {
			continue
		}

		o.Resolved = true
		if !r.compatible(o.LHS, rhs) {
			r.warn(o.File, o.Line, "Cannot assign value of type '%s' to variable of type '%s'.", rhs, o.LHS)
		}
	}
}

// resolveReturns checks every `return` expression against its enclosing subroutine's declared
// type.
func (r *Resolver) resolveReturns() {
	for _, o := range r.work.Of(ObligationReturn) {
		if len(o.Expr) == 0 {
			continue
		}

		rhs := r.fold(r.substituteReturnTypes(o.Expr))
		if rhs == "" {
			continue
		}

		o.Resolved = true
		if !r.compatible(o.Type, rhs) {
			r.warn(o.File, o.Line, "Subroutine '%s' declared to return '%s' but returns '%s'.", o.Name, o.Type, rhs)
		}
	}
}

// resolveArrayIndices checks every array-subscript expression folds to a numeric-compatible
// type; one that does not is fatal.
func (r *Resolver) resolveArrayIndices() {
	for _, o := range r.work.Of(ObligationArrayIndex) {
		idx := r.fold(r.substituteReturnTypes(o.Expr))
		if idx == "" {
			continue
		}

		o.Resolved = true
		if !r.compatible("int", idx) {
			r.fatal(o.File, o.Line, "Array index must be an integer, got '%s'.", idx)
		}
	}
}

// substituteReturnTypes replaces every bare subroutine name appearing in expr with that
// subroutine's declared return type, per the source compiler's return-type back-patching
// pass: the parser cannot know a call's type at the point it emits the call (the callee may
// not have been parsed yet), so it records the callee's own name as a placeholder and leaves
// this substitution to the resolver, once every subroutine in the program is known.
func (r *Resolver) substituteReturnTypes(expr []string) []string {
	out := make([]string, len(expr))
	for i, e := range expr {
		if sym, ok := r.scope.Program().Lookup(e); ok && sym.Kind == KindSubroutine {
			out[i] = sym.Type
			continue
		}

		out[i] = e
	}

	return out
}

// fold collapses a flat, alternating operand-type/operator record left-to-right: whenever it
// finds one of the arithmetic/relational operator lexemes between two operand types, it checks
// their compatibility and collapses the triple into the one type that wins (or raises a fatal
// incompatibility). Logical "&"/"|" never appear in the record, so segments straddling where
// one was used are never compared against each other — the final type is whatever ends up
// first in the list, matching the source compiler's own simplification.
func (r *Resolver) fold(expr []string) string {
	if len(expr) == 0 {
		return ""
	}

	a := append([]string(nil), expr...)
	for i := 0; i < len(a); i++ {
		if !arithOrRelOps[a[i]] || i == 0 || i+1 >= len(a) {
			continue
		}

		left, right := a[i-1], a[i+1]
		if !r.compatible(left, right) {
			r.fatal("", 0, "Incompatible operand types '%s' and '%s'.", left, right)
		}

		result := right
		if left == "Array" {
			result = left
		}

		a = append(a[:i-1], append([]string{result}, a[i+2:]...)...)
		i -= 2
	}

	return a[0]
}

// compatible implements the source compiler's type-compatibility table: numeric types mix
// freely with each other, booleans only with booleans, anything with null, ArrayEntry with
// anything, Array on the left is one-sidedly compatible with anything on the right, void matches an empty
// type, and otherwise names must match exactly.
func (r *Resolver) compatible(a, b string) bool {
	isNumeric := func(t string) bool { return t == "int" || t == "char" }

	switch {
	case isNumeric(a) && isNumeric(b):
		return true
	case a == "boolean" && b == "boolean":
		return true
	case a == "null" || b == "null":
		return true
	case a == "ArrayEntry" || b == "ArrayEntry":
		return true
	case a == "Array":
		return true
	case (a == "void" && b == "") || (a == "" && b == "void"):
		return true
	default:
		return a == b
	}
}

// patchCalls strips every call-site marker the parser left behind for a discarded call: the
// marker names the called subroutine (or "new" for a constructor), recorded because the
// parser cannot yet know, at the call site, whether that subroutine turned out to be void —
// only the resolver, once every subroutine in the program is known, can decide what follows.
// For a void subroutine, the marker is deleted and the following "pop temp 0" stays (it
// discards the void return value). For a non-void subroutine, both the marker and the
// following "pop temp 0" are deleted, leaving the returned value on the stack.
func (r *Resolver) patchCalls() {
	for _, b := range r.buffers {
		b.Lines = r.patchBuffer(b.Lines)
	}
}

func (r *Resolver) patchBuffer(lines []string) []string {
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if r.isCalleeMarker(line) && i+1 < len(lines) && lines[i+1] == "pop temp 0" {
			if !r.calleeIsVoid(line) {
				i++ // also drop the following "pop temp 0"
			}
			continue
		}

		out = append(out, line)
	}

	return out
}

// calleeIsVoid reports whether the subroutine named by a patch marker is declared void. A
// constructor call's marker is always "new"; a constructor always returns its class type, so
// it is never void.
func (r *Resolver) calleeIsVoid(marker string) bool {
	if marker == "new" {
		return false
	}

	sym, ok := r.scope.Program().Lookup(marker)
	if !ok || sym.Kind != KindSubroutine {
		return false
	}

	return sym.Type == "void"
}

var vmOpcodesWithOperands = []string{"push ", "pop ", "call ", "function ", "label ", "goto ", "if-goto "}
var vmOpcodesBare = map[string]bool{
	"add": true, "sub": true, "neg": true, "eq": true, "gt": true, "lt": true,
	"and": true, "or": true, "not": true, "return": true,
}

// isCalleeMarker reports whether line is a patch-marker rather than real IR: a bare
// identifier or "new", never a recognized VM opcode.
func (r *Resolver) isCalleeMarker(line string) bool {
	if line == "" || vmOpcodesBare[line] {
		return false
	}

	for _, kw := range vmOpcodesWithOperands {
		if len(line) >= len(kw) && line[:len(kw)] == kw {
			return false
		}
	}

	return true
}

func (r *Resolver) lookupClass(name string) (Symbol, bool) {
	sym, ok := r.scope.Program().Lookup(name)
	if !ok || sym.Kind != KindClass {
		return Symbol{}, false
	}

	return sym, true
}

func (r *Resolver) fatal(file string, line int, format string, args ...interface{}) {
	abort(&CompileError{File: file, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (r *Resolver) warn(file string, line int, format string, args ...interface{}) {
	w := &CompileWarning{File: file, Line: line, Message: fmt.Sprintf(format, args...)}
	if r.warnAsError {
		abort(&CompileError{File: file, Line: line, Message: w.Message})
	}

	r.warnings = append(r.warnings, w)
}
