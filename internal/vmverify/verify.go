// Package vmverify re-parses a compiler's own emitted VM lines with a
// parser-combinator grammar for the VM language and rejects anything that is
// not well-formed VM code.
//
// This exists purely as an internal self-check: every line handed to it was
// produced by internal/jack's code generator, so a rejection here always
// means a code generation defect, never a malformed Jack source file. It
// parses VM text on its way *up* from the emitter, as a structural sanity
// check, using the parser-combinator library github.com/prataprc/goparsec.
package vmverify

import (
	"fmt"
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"
)

var ast = pc.NewAST("vm_module", 0)

var (
	pModule = ast.ManyUntil("module", nil, pOperation, pc.End())

	pOperation = ast.OrdChoice("operation", nil,
		pMemoryOp, pArithmeticOp, pLabelDecl, pGotoOp, pFuncDecl, pFuncCallOp, pReturnOp,
	)

	pMemoryOp     = ast.And("memory_op", nil, pMemOpType, pSegment, pc.Int())
	pArithmeticOp = ast.And("arithmetic_op", nil, pArithOpType)
	pLabelDecl    = ast.And("label_decl", nil, pc.Atom("label", "LABEL"), pIdent)
	pGotoOp       = ast.And("goto_op", nil, pJumpType, pIdent)
	pFuncDecl     = ast.And("func_decl", nil, pc.Atom("function", "FUNC"), pIdent, pc.Int())
	pFuncCallOp   = ast.And("func_call", nil, pc.Atom("call", "CALL"), pIdent, pc.Int())
	pReturnOp     = ast.And("return_op", nil, pc.Atom("return", "RETURN"))

	pIdent = pc.Token(`[A-Za-z_.$:][0-9a-zA-Z_.$:]*`, "IDENT")

	pMemOpType = ast.OrdChoice("mem_op_type", nil, pc.Atom("push", "PUSH"), pc.Atom("pop", "POP"))
	pSegment   = ast.OrdChoice("mem_segment", nil,
		pc.Atom("argument", "ARGUMENT"), pc.Atom("local", "LOCAL"),
		pc.Atom("static", "STATIC"), pc.Atom("constant", "CONSTANT"),
		pc.Atom("this", "THIS"), pc.Atom("that", "THAT"),
		pc.Atom("temp", "TEMP"), pc.Atom("pointer", "POINTER"),
	)
	pArithOpType = ast.OrdChoice("operations", nil,
		pc.Atom("eq", "EQ"), pc.Atom("gt", "GT"), pc.Atom("lt", "LT"),
		pc.Atom("add", "ADD"), pc.Atom("sub", "SUB"), pc.Atom("neg", "NEG"),
		pc.Atom("not", "NOT"), pc.Atom("and", "AND"), pc.Atom("or", "OR"),
	)
	pJumpType = ast.OrdChoice("jump_type", nil, pc.Atom("goto", "GOTO"), pc.Atom("if-goto", "IF-GOTO"))
)

// Lines parses the given lines (as produced by vmcode.Emitter.Lines) as one
// VM module and returns an error if they are not well-formed VM code. A parse
// failure is reported for the module as a whole; the offending line is not
// identified.
func Lines(lines []string) error {
	source := []byte(strings.Join(lines, "\n") + "\n")

	root, success := ast.Parsewith(pModule, pc.NewScanner(source))
	if !success || root == nil {
		return fmt.Errorf("emitted VM code failed to parse as a well-formed module")
	}

	for _, child := range root.GetChildren() {
		if err := checkNode(child); err != nil {
			return err
		}
	}
	return nil
}

func checkNode(node pc.Queryable) error {
	switch node.GetName() {
	case "memory_op":
		return checkMemoryOp(node)
	case "arithmetic_op", "label_decl", "goto_op", "func_decl", "func_call", "return_op":
		return nil
	default:
		return fmt.Errorf("unrecognized emitted node %q", node.GetName())
	}
}

// checkMemoryOp enforces the same segment-specific, hardware-imposed bounds
// a VM code generator applies when turning a push/pop into text, just
// checked in the reverse direction.
func checkMemoryOp(node pc.Queryable) error {
	children := node.GetChildren()
	if len(children) != 3 {
		return fmt.Errorf("malformed memory operation %q", node.GetValue())
	}

	segment := children[1].GetValue()
	offset, err := strconv.ParseUint(children[2].GetValue(), 10, 16)
	if err != nil {
		return fmt.Errorf("malformed offset in memory operation: %w", err)
	}

	if segment == "pointer" && offset > 1 {
		return fmt.Errorf("invalid 'pointer' offset, got %d", offset)
	}
	if segment == "temp" && offset > 7 {
		return fmt.Errorf("invalid 'temp' offset, got %d", offset)
	}
	return nil
}
