package jack

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// debugConfig mirrors spew's defaults but uses a two-space indent and
// disables pointer addresses and slice capacities, since dumping a
// Token/Symbol slice for a human reader never benefits from seeing a Go
// pointer value or capacity.
var debugConfig = &spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}

// DumpTokens writes a human-readable rendering of toks to w, for the
// --debug CLI flag.
func DumpTokens(w io.Writer, file string, toks []Token) {
	fmt.Fprintf(w, "-- tokens: %s --\n", file)
	debugConfig.Fdump(w, toks)
}

// DumpSymbol is the subset of SymbolTable state worth showing a human: every
// resolvable name together with its resolved Symbol record.
type DumpSymbol struct {
	Name string
	Symbol
}

// DumpSymbols writes a human-readable rendering of a flattened symbol table
// to w, for the --debug CLI flag.
func DumpSymbols(w io.Writer, className string, entries []DumpSymbol) {
	fmt.Fprintf(w, "-- symbols: %s --\n", className)
	debugConfig.Fdump(w, entries)
}
