package jack

import (
	_ "embed"
	"encoding/json"
)

//go:embed stdlib.json
var stdlibJSON []byte

// SubroutineABI is the externally-visible shape of one OS subroutine: enough
// to recognize a call site as legitimate, never enough to type-check it.
type SubroutineABI struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "function", "method", or "constructor"
}

// ClassABI is the externally-visible shape of one OS class.
type ClassABI struct {
	Subroutines []SubroutineABI `json:"subroutines"`
}

// StandardLibraryABI is the fixed Nand2Tetris OS surface (Math, String,
// Array, Output, Screen, Keyboard, Memory, Sys), used only by the driver's
// -stdlib forward-reference check to turn a call to a genuinely unknown
// class into a Name error instead of an always-succeeding symbolic call.
// Authored against the Nand2Tetris project 12 OS API surface.
var StandardLibraryABI = map[string]ClassABI{}

// HasSubroutine reports whether class.sub is a known OS entry point.
func HasSubroutine(class, sub string) bool {
	abi, ok := StandardLibraryABI[class]
	if !ok {
		return false
	}
	for _, s := range abi.Subroutines {
		if s.Name == sub {
			return true
		}
	}
	return false
}

func init() {
	if err := json.Unmarshal(stdlibJSON, &StandardLibraryABI); err != nil {
		panic("jack: malformed embedded stdlib.json: " + err.Error())
	}
}
