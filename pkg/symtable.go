package jackc

import "fmt"

// SymbolKind classifies what storage (if any) a [Symbol] occupies.
type SymbolKind uint8

const (
	// KindStatic is a class-level static variable, backed by the VM's static segment.
	KindStatic SymbolKind = iota
	// KindField is a per-instance field, backed by the VM's this segment.
	KindField
	// KindArgument is a subroutine argument, backed by the VM's argument segment.
	KindArgument
	// KindLocal is a subroutine-local variable, backed by the VM's local segment.
	KindLocal
	// KindSubroutine is a declared constructor, function, or method.
	KindSubroutine
	// KindClass is a declared class name, entered into program scope.
	KindClass
)

func (k SymbolKind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindField:
		return "field"
	case KindArgument:
		return "argument"
	case KindLocal:
		return "local"
	case KindSubroutine:
		return "subroutine"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// hasOffset reports whether this kind is backed by a counted storage segment.
func (k SymbolKind) hasOffset() bool {
	return k == KindStatic || k == KindField || k == KindArgument || k == KindLocal
}

// Symbol is one entry of a [SymbolTable]: a name, its source type, its storage kind, the
// offset assigned to it within that kind's segment, and whether it has been initialised.
// ParamTypes is only populated for KindSubroutine entries. Symbols are value-typed; copying
// one is safe and routine.
type Symbol struct {
	Name        string
	Type        string
	Kind        SymbolKind
	Offset      int
	Initialised bool
	ParamTypes  []string
}

// SymbolTable is a flat, insertion-ordered table of symbols, with one offset counter per
// storage kind. Lookup is linear by name; the first match by insertion order wins.
type SymbolTable struct {
	entries  []Symbol
	counters [4]int // indexed by SymbolKind for the four kinds that hasOffset()
}

// NewSymbolTable returns an empty symbol table with all counters at zero.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Insert appends sym to the table. If sym's kind is backed by a counted segment, its Offset
// is set to that segment's current counter, which is then incremented.
func (t *SymbolTable) Insert(sym Symbol) Symbol {
	if sym.Kind.hasOffset() {
		sym.Offset = t.counters[sym.Kind]
		t.counters[sym.Kind]++
	}

	t.entries = append(t.entries, sym)
	return sym
}

// Lookup returns the first entry by insertion order whose name matches, and true if found.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	for _, s := range t.entries {
		if s.Name == name {
			return s, true
		}
	}

	return Symbol{}, false
}

// Offset returns the stored offset for name. Only meaningful once [SymbolTable.Lookup] has
// confirmed name exists.
func (t *SymbolTable) Offset(name string) int {
	s, _ := t.Lookup(name)
	return s.Offset
}

// Kind returns the stored kind for name. Only meaningful once [SymbolTable.Lookup] has
// confirmed name exists.
func (t *SymbolTable) Kind(name string) SymbolKind {
	s, _ := t.Lookup(name)
	return s.Kind
}

// Type returns the stored source type for name. Only meaningful once [SymbolTable.Lookup] has
// confirmed name exists.
func (t *SymbolTable) Type(name string) string {
	s, _ := t.Lookup(name)
	return s.Type
}

// MarkInitialised flips name's initialised flag to true. A no-op if name is not present.
func (t *SymbolTable) MarkInitialised(name string) {
	for i := range t.entries {
		if t.entries[i].Name == name {
			t.entries[i].Initialised = true
			return
		}
	}
}

// IsInitialised reports name's initialised flag, defaulting to false if name is not present.
func (t *SymbolTable) IsInitialised(name string) bool {
	s, ok := t.Lookup(name)
	return ok && s.Initialised
}

// Count returns the number of entries currently holding kind. Used to size subroutine
// prologues (field count for constructors, local count for function prologues).
func (t *SymbolTable) Count(kind SymbolKind) int {
	if !kind.hasOffset() {
		var n int
		for _, s := range t.entries {
			if s.Kind == kind {
				n++
			}
		}

		return n
	}

	return t.counters[kind]
}

// AppendParamType appends typ to the ParamTypes of the most recently inserted entry named
// name. Used while parsing a parameter list: the subroutine's own program-scope entry is
// inserted before its parameters are parsed, so each parameter's type is appended in place
// as it's read rather than collected separately and assigned after the fact.
func (t *SymbolTable) AppendParamType(name, typ string) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Name == name {
			t.entries[i].ParamTypes = append(t.entries[i].ParamTypes, typ)
			return
		}
	}
}

// Entries returns the table's entries in insertion order. The returned slice must not be
// mutated by the caller.
func (t *SymbolTable) Entries() []Symbol {
	return t.entries
}

// DebugString renders the table's entries for verbose diagnostics, mirroring the original
// compiler's development-time symbol table dump.
func (t *SymbolTable) DebugString() string {
	var out string
	for _, s := range t.entries {
		out += fmt.Sprintf("%s, %s, %s, %d, %v, %v\n", s.Name, s.Type, s.Kind, s.Offset, s.Initialised, s.ParamTypes)
	}

	return out
}
