package vmcode

import (
	"bufio"
	"fmt"
	"os"
)

// Emitter is a thin, line-oriented writer of VM instruction lines.
//
// Every call appends exactly one textual line, in the fixed VM instruction
// syntax, to an in-memory buffer; nothing touches the filesystem until
// Close is called. This guarantees that a file that fails to compile never
// leaves a partial ".vm" sibling behind, and is also what internal/vmverify
// needs: the whole buffered line set is handed to the verifier before
// Close ever opens the destination file.
type Emitter struct {
	path  string
	lines []string
}

// NewEmitter returns an Emitter that will, on a successful Close, write to path.
func NewEmitter(path string) *Emitter {
	return &Emitter{path: path}
}

// Lines returns the instruction lines buffered so far, in emission order.
func (e *Emitter) Lines() []string {
	return e.lines
}

func (e *Emitter) emit(line string) {
	e.lines = append(e.lines, line)
}

// Push emits "push <segment> <index>".
func (e *Emitter) Push(seg Segment, index uint16) error {
	if err := checkOffset(seg, index); err != nil {
		return err
	}
	e.emit(fmt.Sprintf("push %s %d", seg, index))
	return nil
}

// Pop emits "pop <segment> <index>".
func (e *Emitter) Pop(seg Segment, index uint16) error {
	if err := checkOffset(seg, index); err != nil {
		return err
	}
	e.emit(fmt.Sprintf("pop %s %d", seg, index))
	return nil
}

func checkOffset(seg Segment, index uint16) error {
	// Bound checking on the two segments that have a hardware-imposed upper bound.
	if seg == Pointer && index > 1 {
		return fmt.Errorf("invalid 'pointer' offset, got %d", index)
	}
	if seg == Temp && index > 7 {
		return fmt.Errorf("invalid 'temp' offset, got %d", index)
	}
	return nil
}

// Arithmetic emits one of add/sub/neg/eq/gt/lt/and/or/not.
func (e *Emitter) Arithmetic(op ArithOp) {
	e.emit(string(op))
}

// Label emits "label <name>".
func (e *Emitter) Label(name string) {
	e.emit("label " + name)
}

// Goto emits "goto <name>".
func (e *Emitter) Goto(name string) {
	e.emit("goto " + name)
}

// IfGoto emits "if-goto <name>".
func (e *Emitter) IfGoto(name string) {
	e.emit("if-goto " + name)
}

// Call emits "call <name> <nArgs>".
func (e *Emitter) Call(name string, nArgs int) {
	e.emit(fmt.Sprintf("call %s %d", name, nArgs))
}

// Function emits "function <name> <nLocals>".
func (e *Emitter) Function(name string, nLocals int) {
	e.emit(fmt.Sprintf("function %s %d", name, nLocals))
}

// Return emits "return".
func (e *Emitter) Return() {
	e.emit("return")
}

// Close flushes the buffered lines to the destination file, creating it (or
// truncating it) and closing it before returning. It is only ever called
// once compilation of the source file has fully succeeded.
func (e *Emitter) Close() error {
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range e.lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write failure: %w", err)
		}
	}
	return w.Flush()
}
