package jackc

// ObligationKind tags what an [Obligation] defers to the whole-program resolver.
type ObligationKind uint8

const (
	// ObligationType records a variable declared with an identifier type, to be checked
	// against the set of declared classes once every translation unit is parsed.
	ObligationType ObligationKind = iota
	// ObligationCall records a subroutine (or constructor) call site, to be matched against
	// its declaration's arity and argument types.
	ObligationCall
	// ObligationAssignment records a `let` statement's LHS/RHS for compatibility checking.
	ObligationAssignment
	// ObligationReturn records a `return` statement's expression for compatibility checking
	// against the enclosing subroutine's declared type.
	ObligationReturn
	// ObligationArrayIndex records an array-subscript expression, which must fold to a
	// numeric-compatible type.
	ObligationArrayIndex
)

// Obligation is one deferred cross-translation-unit check, recorded while parsing and
// consumed exactly once by the [Resolver] after every file has been parsed. It generalizes
// the five parallel declaration vectors of the source compiler into one tagged variant,
// carrying only the fields each kind actually uses.
type Obligation struct {
	Kind ObligationKind

	File string
	Line int

	// Name is the declared type name (ObligationType), the called subroutine's bare name
	// (ObligationCall), or the enclosing subroutine's name (ObligationReturn, informational).
	Name string
	// Type is empty for a plain call, the receiver class name for a constructor call
	// (ObligationCall), or the enclosing subroutine's declared return type (ObligationReturn).
	Type string

	// LHS is the assigned-to variable's declared type, or "ArrayEntry" for an indexed store
	// (ObligationAssignment only; ObligationReturn carries its declared type in Type).
	LHS string

	// Expr is the flat, alternating operand-type/operator-lexeme record of a single
	// expression, for ObligationAssignment, ObligationReturn and ObligationArrayIndex.
	// [Resolver] folds it left-to-right down to one operand type.
	Expr []string

	// CallArgs holds one Expr-shaped record per actual call argument (ObligationCall only),
	// so the resolver can fold each argument independently and compare it against the
	// matching declared parameter type. The argument count is simply len(CallArgs).
	CallArgs [][]string

	Resolved  bool
	ArgsMatch bool
}

// WorkList partitions the obligations recorded across every translation unit. It is one
// flat slice dispatched on Obligation.Kind by the resolver, rather than five separate slices,
// per the "fold a single pass over a tagged variant" redesign.
type WorkList struct {
	items []Obligation
}

// NewWorkList returns an empty work-list.
func NewWorkList() *WorkList {
	return &WorkList{}
}

// Add appends an obligation.
func (w *WorkList) Add(o Obligation) *Obligation {
	w.items = append(w.items, o)
	return &w.items[len(w.items)-1]
}

// Of returns every obligation of the given kind, as pointers into the backing slice so the
// resolver's in-place patches (Resolved, ArgsMatch) stick.
func (w *WorkList) Of(kind ObligationKind) []*Obligation {
	var out []*Obligation
	for i := range w.items {
		if w.items[i].Kind == kind {
			out = append(out, &w.items[i])
		}
	}

	return out
}

// All returns every recorded obligation, in recording order.
func (w *WorkList) All() []*Obligation {
	out := make([]*Obligation, len(w.items))
	for i := range w.items {
		out[i] = &w.items[i]
	}

	return out
}

// Reset discards every recorded obligation. Used after the JackOS standard library has been
// ingested: its declarations remain in program scope, but any obligations it recorded (it is
// assumed to type-check on its own) are discarded rather than checked against user code.
func (w *WorkList) Reset() {
	w.items = nil
}
