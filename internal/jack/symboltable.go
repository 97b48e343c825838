package jack

import "nand2tetris.dev/jackc/internal/vmcode"

// Kind is a Jack variable declaration's category.
type Kind = vmcode.Kind

const (
	Static = vmcode.KindStatic
	Field  = vmcode.KindField
	Arg    = vmcode.KindArg
	Var    = vmcode.KindVar
)

// Symbol is a resolved (type, kind, index) record.
type Symbol struct {
	Type  string // primitive name or class name
	Kind  Kind
	Index int
}

// SymbolTable is the two-scope (class, subroutine) identifier resolver:
// class scope holds static/field entries and survives across a class's
// subroutines; subroutine scope holds arg/var entries and is cleared at the
// start of every subroutine.
//
// Each scope is an OrderedFields keyed by name with a monotonic per-kind
// counter, so indices come out as dense contiguous sequences starting at
// zero in declaration order, and that same order is preserved for
// deterministic --debug dumps.
type SymbolTable struct {
	class      *OrderedFields
	subroutine *OrderedFields
	counts     map[Kind]int // counters are scoped per Kind; static/field persist with class, arg/var reset per subroutine
	className  string
}

// NewSymbolTable returns an empty SymbolTable, ready for BeginClass.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		class:      NewOrderedFields(),
		subroutine: NewOrderedFields(),
		counts:     map[Kind]int{},
	}
}

// BeginClass clears class scope and records name as the class being compiled.
func (st *SymbolTable) BeginClass(name string) {
	st.className = name
	st.class = NewOrderedFields()
	st.counts[Static] = 0
	st.counts[Field] = 0
}

// BeginSubroutine clears subroutine scope. A method subroutine implicitly
// seeds arg index 0 with the receiver (this, typed as the current class).
func (st *SymbolTable) BeginSubroutine(kind string) {
	st.subroutine = NewOrderedFields()
	st.counts[Arg] = 0
	st.counts[Var] = 0

	if kind == "method" {
		st.define(st.subroutine, "this", st.className, Arg)
	}
}

// Define inserts name into the scope appropriate for kind (class scope for
// static/field, subroutine scope for arg/var), assigning the next free
// index for that kind. It returns an error if name is already declared in
// that same scope.
func (st *SymbolTable) Define(name, typeName string, kind Kind) error {
	scope := st.scopeFor(kind)
	if _, exists := scope.Get(name); exists {
		return &redefinedError{name: name}
	}
	st.define(scope, name, typeName, kind)
	return nil
}

func (st *SymbolTable) define(scope *OrderedFields, name, typeName string, kind Kind) {
	idx := st.counts[kind]
	scope.Put(name, Symbol{Type: typeName, Kind: kind, Index: idx})
	st.counts[kind] = idx + 1
}

func (st *SymbolTable) scopeFor(kind Kind) *OrderedFields {
	switch kind {
	case Static, Field:
		return st.class
	case Arg, Var:
		return st.subroutine
	default:
		panic("jack: unknown Kind")
	}
}

// Count returns the number of entries currently recorded for kind.
func (st *SymbolTable) Count(kind Kind) int { return st.counts[kind] }

// Lookup resolves name, consulting subroutine scope first, then class scope.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	if v, ok := st.subroutine.Get(name); ok {
		return v.(Symbol), true
	}
	if v, ok := st.class.Get(name); ok {
		return v.(Symbol), true
	}
	return Symbol{}, false
}

// Entries returns every entry currently visible, subroutine scope (in
// declaration order) followed by class scope (in declaration order), for
// --debug dumps via DumpSymbols.
func (st *SymbolTable) Entries() []DumpSymbol {
	entries := make([]DumpSymbol, 0, st.subroutine.Len()+st.class.Len())
	for _, name := range st.subroutine.Keys() {
		v, _ := st.subroutine.Get(name)
		entries = append(entries, DumpSymbol{Name: name, Symbol: v.(Symbol)})
	}
	for _, name := range st.class.Keys() {
		v, _ := st.class.Get(name)
		entries = append(entries, DumpSymbol{Name: name, Symbol: v.(Symbol)})
	}
	return entries
}

type redefinedError struct{ name string }

func (e *redefinedError) Error() string { return "redefinition of '" + e.name + "'" }
