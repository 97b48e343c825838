package jack

import (
	"fmt"
	"io"

	"nand2tetris.dev/jackc/internal/diag"
	"nand2tetris.dev/jackc/internal/vmcode"
)

// binaryOps maps a Jack binary operator symbol to the VM code it emits.
// Expressions are evaluated strictly left to right with no operator
// precedence, so this table is consulted one operator at a time as
// compileExpression walks the term/op/term/op/... sequence.
var binaryOps = map[string]func(*Compiler) error{
	"+": func(c *Compiler) error { c.em.Arithmetic(vmcode.Add); return nil },
	"-": func(c *Compiler) error { c.em.Arithmetic(vmcode.Sub); return nil },
	"&": func(c *Compiler) error { c.em.Arithmetic(vmcode.And); return nil },
	"|": func(c *Compiler) error { c.em.Arithmetic(vmcode.Or); return nil },
	"<": func(c *Compiler) error { c.em.Arithmetic(vmcode.Lt); return nil },
	">": func(c *Compiler) error { c.em.Arithmetic(vmcode.Gt); return nil },
	"=": func(c *Compiler) error { c.em.Arithmetic(vmcode.Eq); return nil },
	"*": func(c *Compiler) error { c.em.Call("Math.multiply", 2); return nil },
	"/": func(c *Compiler) error { c.em.Call("Math.divide", 2); return nil },
}

// Compiler is a recursive-descent parser and code generator combined: every
// grammar production with runtime meaning emits VM instructions as it is
// recognized, with no intermediate AST. One Compiler is constructed per
// source file, giving it fresh symbol-table and label-counter state.
type Compiler struct {
	file string
	tok  *Tokenizer
	sym  *SymbolTable
	em   *vmcode.Emitter

	className    string
	labelCounter int

	// knownClasses, when non-nil, is the set of translation units discovered
	// in this invocation; useStdlib additionally admits jack.StandardLibraryABI
	// class names. Both are used only to turn a call to a class that is
	// provably unresolvable into an earlier Name error; when both are absent
	// no such check is performed, since nothing is known about the existence
	// of other translation units.
	knownClasses map[string]bool
	useStdlib    bool

	line  int
	debug io.Writer
	toks  []Token
}

// WithDebug enables --debug-style dumping of the token stream and final
// symbol table to w once Compile returns successfully.
func (c *Compiler) WithDebug(w io.Writer) *Compiler {
	c.debug = w
	return c
}

// NewCompiler returns a Compiler that will translate src (the contents of
// file) into VM instructions written through em.
func NewCompiler(file string, src []byte, em *vmcode.Emitter, knownClasses map[string]bool, useStdlib bool) *Compiler {
	return &Compiler{
		file:         file,
		tok:          NewTokenizer(file, src),
		sym:          NewSymbolTable(),
		em:           em,
		knownClasses: knownClasses,
		useStdlib:    useStdlib,
	}
}

// Compile parses and emits the single class declaration src must contain.
func (c *Compiler) Compile() error {
	if err := c.compileClass(); err != nil {
		return err
	}
	if c.debug != nil {
		DumpTokens(c.debug, c.file, c.toks)
		DumpSymbols(c.debug, c.className, c.sym.Entries())
	}
	return nil
}

func (c *Compiler) peek() (Token, error) {
	tok, err := c.tok.Peek()
	if err != nil {
		return Token{}, err
	}
	c.line = tok.Line
	return tok, nil
}

func (c *Compiler) advance() (Token, error) {
	tok, err := c.tok.Advance()
	if err != nil {
		return Token{}, err
	}
	c.line = tok.Line
	if c.debug != nil {
		c.toks = append(c.toks, tok)
	}
	return tok, nil
}

func (c *Compiler) errf(kind diag.Kind, format string, args ...any) error {
	return diag.New(c.file, c.line, kind, format, args...)
}

func (c *Compiler) expectSymbol(s string) error {
	tok, err := c.advance()
	if err != nil {
		return err
	}
	if !tok.IsSymbol(s) {
		return c.errf(diag.Syntax, "expected %q, got %q", s, tok.Text)
	}
	return nil
}

func (c *Compiler) expectKeyword(kw string) error {
	tok, err := c.advance()
	if err != nil {
		return err
	}
	if !tok.IsKeyword(kw) {
		return c.errf(diag.Syntax, "expected %q, got %q", kw, tok.Text)
	}
	return nil
}

func (c *Compiler) expectIdentifier() (Token, error) {
	tok, err := c.advance()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != IdentifierTok {
		return Token{}, c.errf(diag.Syntax, "expected identifier, got %q", tok.Text)
	}
	return tok, nil
}

// compileType recognizes int|char|boolean|className.
func (c *Compiler) compileType() (string, error) {
	tok, err := c.advance()
	if err != nil {
		return "", err
	}
	if tok.Kind == IdentifierTok {
		return tok.Text, nil
	}
	if tok.Kind == KeywordTok && (tok.Text == "int" || tok.Text == "char" || tok.Text == "boolean") {
		return tok.Text, nil
	}
	return "", c.errf(diag.Syntax, "expected type, got %q", tok.Text)
}

func (c *Compiler) newLabel() string {
	c.labelCounter++
	return fmt.Sprintf("%s_%d", c.className, c.labelCounter)
}

// === 4.3.1 Class ===

func (c *Compiler) compileClass() error {
	if err := c.expectKeyword("class"); err != nil {
		return err
	}
	name, err := c.expectIdentifier()
	if err != nil {
		return err
	}
	c.className = name.Text
	c.sym.BeginClass(c.className)
	c.labelCounter = 0

	if err := c.expectSymbol("{"); err != nil {
		return err
	}

	for {
		tok, err := c.peek()
		if err != nil {
			return err
		}
		if !tok.IsKeyword("static") && !tok.IsKeyword("field") {
			break
		}
		if err := c.compileClassVarDec(); err != nil {
			return err
		}
	}

	for {
		tok, err := c.peek()
		if err != nil {
			return err
		}
		if !tok.IsKeyword("constructor") && !tok.IsKeyword("function") && !tok.IsKeyword("method") {
			break
		}
		if err := c.compileSubroutineDec(); err != nil {
			return err
		}
	}

	return c.expectSymbol("}")
}

func (c *Compiler) compileClassVarDec() error {
	kindTok, err := c.advance()
	if err != nil {
		return err
	}
	kind := Static
	if kindTok.Text == "field" {
		kind = Field
	}

	typeName, err := c.compileType()
	if err != nil {
		return err
	}

	for {
		name, err := c.expectIdentifier()
		if err != nil {
			return err
		}
		if err := c.sym.Define(name.Text, typeName, kind); err != nil {
			return c.errf(diag.Name, "%s", err.Error())
		}

		tok, err := c.advance()
		if err != nil {
			return err
		}
		if tok.IsSymbol(";") {
			return nil
		}
		if !tok.IsSymbol(",") {
			return c.errf(diag.Syntax, "expected ',' or ';', got %q", tok.Text)
		}
	}
}

// === 4.3.2 Subroutine declaration ===

func (c *Compiler) compileSubroutineDec() error {
	kindTok, err := c.advance()
	if err != nil {
		return err
	}
	kind := kindTok.Text // constructor|function|method

	// return type: void | type — not otherwise used, since this compiler
	// performs no type checking beyond identifier resolution.
	tok, err := c.peek()
	if err != nil {
		return err
	}
	if tok.IsKeyword("void") {
		if _, err := c.advance(); err != nil {
			return err
		}
	} else if _, err := c.compileType(); err != nil {
		return err
	}

	subName, err := c.expectIdentifier()
	if err != nil {
		return err
	}

	c.sym.BeginSubroutine(kind)

	if err := c.expectSymbol("("); err != nil {
		return err
	}
	if err := c.compileParameterList(); err != nil {
		return err
	}
	if err := c.expectSymbol(")"); err != nil {
		return err
	}

	if err := c.expectSymbol("{"); err != nil {
		return err
	}
	if err := c.compileVarDecs(); err != nil {
		return err
	}

	c.em.Function(c.className+"."+subName.Text, c.sym.Count(Var))

	switch kind {
	case "constructor":
		if err := c.em.Push(vmcode.Constant, uint16(c.sym.Count(Field))); err != nil {
			return err
		}
		c.em.Call("Memory.alloc", 1)
		if err := c.em.Pop(vmcode.Pointer, 0); err != nil {
			return err
		}
	case "method":
		if err := c.em.Push(vmcode.Argument, 0); err != nil {
			return err
		}
		if err := c.em.Pop(vmcode.Pointer, 0); err != nil {
			return err
		}
	}

	if err := c.compileStatements(); err != nil {
		return err
	}
	return c.expectSymbol("}")
}

func (c *Compiler) compileParameterList() error {
	tok, err := c.peek()
	if err != nil {
		return err
	}
	if tok.IsSymbol(")") {
		return nil
	}

	for {
		typeName, err := c.compileType()
		if err != nil {
			return err
		}
		name, err := c.expectIdentifier()
		if err != nil {
			return err
		}
		if err := c.sym.Define(name.Text, typeName, Arg); err != nil {
			return c.errf(diag.Name, "%s", err.Error())
		}

		tok, err := c.peek()
		if err != nil {
			return err
		}
		if !tok.IsSymbol(",") {
			return nil
		}
		if _, err := c.advance(); err != nil {
			return err
		}
	}
}

func (c *Compiler) compileVarDecs() error {
	for {
		tok, err := c.peek()
		if err != nil {
			return err
		}
		if !tok.IsKeyword("var") {
			return nil
		}
		if _, err := c.advance(); err != nil {
			return err
		}
		typeName, err := c.compileType()
		if err != nil {
			return err
		}
		for {
			name, err := c.expectIdentifier()
			if err != nil {
				return err
			}
			if err := c.sym.Define(name.Text, typeName, Var); err != nil {
				return c.errf(diag.Name, "%s", err.Error())
			}
			next, err := c.advance()
			if err != nil {
				return err
			}
			if next.IsSymbol(";") {
				break
			}
			if !next.IsSymbol(",") {
				return c.errf(diag.Syntax, "expected ',' or ';', got %q", next.Text)
			}
		}
	}
}

// === 4.3.3 Statements ===

func (c *Compiler) compileStatements() error {
	for {
		tok, err := c.peek()
		if err != nil {
			return err
		}
		switch tok.Text {
		case "let":
			if err := c.compileLet(); err != nil {
				return err
			}
		case "if":
			if err := c.compileIf(); err != nil {
				return err
			}
		case "while":
			if err := c.compileWhile(); err != nil {
				return err
			}
		case "do":
			if err := c.compileDo(); err != nil {
				return err
			}
		case "return":
			if err := c.compileReturn(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Compiler) compileLet() error {
	if err := c.expectKeyword("let"); err != nil {
		return err
	}
	name, err := c.expectIdentifier()
	if err != nil {
		return err
	}
	sym, ok := c.sym.Lookup(name.Text)
	if !ok {
		return c.errf(diag.Name, "undefined identifier %q", name.Text)
	}

	tok, err := c.peek()
	if err != nil {
		return err
	}

	if tok.IsSymbol("[") {
		if _, err := c.advance(); err != nil {
			return err
		}
		if err := c.em.Push(sym.Kind.Segment(), uint16(sym.Index)); err != nil {
			return err
		}
		if err := c.compileExpression(); err != nil {
			return err
		}
		if err := c.expectSymbol("]"); err != nil {
			return err
		}
		c.em.Arithmetic(vmcode.Add)

		if err := c.expectSymbol("="); err != nil {
			return err
		}
		if err := c.compileExpression(); err != nil {
			return err
		}
		if err := c.expectSymbol(";"); err != nil {
			return err
		}

		if err := c.em.Pop(vmcode.Temp, 0); err != nil {
			return err
		}
		if err := c.em.Pop(vmcode.Pointer, 1); err != nil {
			return err
		}
		if err := c.em.Push(vmcode.Temp, 0); err != nil {
			return err
		}
		return c.em.Pop(vmcode.That, 0)
	}

	if err := c.expectSymbol("="); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(";"); err != nil {
		return err
	}
	return c.em.Pop(sym.Kind.Segment(), uint16(sym.Index))
}

func (c *Compiler) compileIf() error {
	if err := c.expectKeyword("if"); err != nil {
		return err
	}
	if err := c.expectSymbol("("); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(")"); err != nil {
		return err
	}

	l1, l2 := c.newLabel(), c.newLabel()
	c.em.Arithmetic(vmcode.Not)
	c.em.IfGoto(l1)

	if err := c.expectSymbol("{"); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if err := c.expectSymbol("}"); err != nil {
		return err
	}
	c.em.Goto(l2)
	c.em.Label(l1)

	tok, err := c.peek()
	if err != nil {
		return err
	}
	if tok.IsKeyword("else") {
		if _, err := c.advance(); err != nil {
			return err
		}
		if err := c.expectSymbol("{"); err != nil {
			return err
		}
		if err := c.compileStatements(); err != nil {
			return err
		}
		if err := c.expectSymbol("}"); err != nil {
			return err
		}
	}
	c.em.Label(l2)
	return nil
}

func (c *Compiler) compileWhile() error {
	if err := c.expectKeyword("while"); err != nil {
		return err
	}
	if err := c.expectSymbol("("); err != nil {
		return err
	}

	l1, l2 := c.newLabel(), c.newLabel()
	c.em.Label(l1)

	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(")"); err != nil {
		return err
	}
	c.em.Arithmetic(vmcode.Not)
	c.em.IfGoto(l2)

	if err := c.expectSymbol("{"); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if err := c.expectSymbol("}"); err != nil {
		return err
	}
	c.em.Goto(l1)
	c.em.Label(l2)
	return nil
}

func (c *Compiler) compileDo() error {
	if err := c.expectKeyword("do"); err != nil {
		return err
	}
	name, err := c.expectIdentifier()
	if err != nil {
		return err
	}
	if err := c.compileSubroutineCall(name); err != nil {
		return err
	}
	if err := c.expectSymbol(";"); err != nil {
		return err
	}
	return c.em.Pop(vmcode.Temp, 0)
}

func (c *Compiler) compileReturn() error {
	if err := c.expectKeyword("return"); err != nil {
		return err
	}
	tok, err := c.peek()
	if err != nil {
		return err
	}
	if tok.IsSymbol(";") {
		if err := c.em.Push(vmcode.Constant, 0); err != nil {
			return err
		}
	} else if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(";"); err != nil {
		return err
	}
	c.em.Return()
	return nil
}

// === 4.3.4 / 4.3.5 Expressions and terms ===

func (c *Compiler) compileExpression() error {
	if err := c.compileTerm(); err != nil {
		return err
	}
	for {
		tok, err := c.peek()
		if err != nil {
			return err
		}
		emit, isOp := binaryOps[tok.Text]
		if !isOp || tok.Kind != SymbolTok {
			return nil
		}
		if _, err := c.advance(); err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		if err := emit(c); err != nil {
			return err
		}
	}
}

func (c *Compiler) compileTerm() error {
	tok, err := c.advance()
	if err != nil {
		return err
	}

	switch tok.Kind {
	case IntConstTok:
		return c.em.Push(vmcode.Constant, uint16(tok.Int))

	case StringConstTok:
		return c.compileStringConstant(tok.Text)

	case KeywordTok:
		switch tok.Text {
		case "true":
			if err := c.em.Push(vmcode.Constant, 0); err != nil {
				return err
			}
			c.em.Arithmetic(vmcode.Not)
			return nil
		case "false", "null":
			return c.em.Push(vmcode.Constant, 0)
		case "this":
			return c.em.Push(vmcode.Pointer, 0)
		default:
			return c.errf(diag.Syntax, "unexpected keyword %q in expression", tok.Text)
		}

	case SymbolTok:
		switch tok.Text {
		case "(":
			if err := c.compileExpression(); err != nil {
				return err
			}
			return c.expectSymbol(")")
		case "-":
			if err := c.compileTerm(); err != nil {
				return err
			}
			c.em.Arithmetic(vmcode.Neg)
			return nil
		case "~":
			if err := c.compileTerm(); err != nil {
				return err
			}
			c.em.Arithmetic(vmcode.Not)
			return nil
		default:
			return c.errf(diag.Syntax, "unexpected symbol %q in expression", tok.Text)
		}

	case IdentifierTok:
		return c.compileIdentifierTerm(tok)

	default:
		return c.errf(diag.Syntax, "unexpected token %q in expression", tok.Text)
	}
}

func (c *Compiler) compileStringConstant(s string) error {
	if err := c.em.Push(vmcode.Constant, uint16(len(s))); err != nil {
		return err
	}
	c.em.Call("String.new", 1)
	for _, r := range s {
		if err := c.em.Push(vmcode.Constant, uint16(r)); err != nil {
			return err
		}
		c.em.Call("String.appendChar", 2)
	}
	return nil
}

// compileIdentifierTerm resolves which of the three identifier-led term
// shapes (variable, array element, subroutine call) applies, inspecting the
// token following name — the two-token lookahead an identifier-led term
// requires to disambiguate.
func (c *Compiler) compileIdentifierTerm(name Token) error {
	next, err := c.peek()
	if err != nil {
		return err
	}

	if next.IsSymbol("[") {
		if _, err := c.advance(); err != nil {
			return err
		}
		sym, ok := c.sym.Lookup(name.Text)
		if !ok {
			return c.errf(diag.Name, "undefined identifier %q", name.Text)
		}
		if err := c.em.Push(sym.Kind.Segment(), uint16(sym.Index)); err != nil {
			return err
		}
		if err := c.compileExpression(); err != nil {
			return err
		}
		if err := c.expectSymbol("]"); err != nil {
			return err
		}
		c.em.Arithmetic(vmcode.Add)
		if err := c.em.Pop(vmcode.Pointer, 1); err != nil {
			return err
		}
		return c.em.Push(vmcode.That, 0)
	}

	if next.IsSymbol("(") || next.IsSymbol(".") {
		return c.compileSubroutineCall(name)
	}

	sym, ok := c.sym.Lookup(name.Text)
	if !ok {
		return c.errf(diag.Name, "undefined identifier %q", name.Text)
	}
	return c.em.Push(sym.Kind.Segment(), uint16(sym.Index))
}

// === 4.3.6 Subroutine calls ===

// compileSubroutineCall handles the call part of a term or do-statement once
// the leading identifier (name) has already been consumed and the next token
// is known to be '(' or '.'.
func (c *Compiler) compileSubroutineCall(name Token) error {
	tok, err := c.advance()
	if err != nil {
		return err
	}

	if tok.IsSymbol("(") {
		// Unqualified call: a method call on the current receiver.
		if err := c.em.Push(vmcode.Pointer, 0); err != nil {
			return err
		}
		n, err := c.compileExpressionList()
		if err != nil {
			return err
		}
		if err := c.expectSymbol(")"); err != nil {
			return err
		}
		c.em.Call(c.className+"."+name.Text, n+1)
		return nil
	}

	if !tok.IsSymbol(".") {
		return c.errf(diag.Syntax, "expected '(' or '.', got %q", tok.Text)
	}

	subName, err := c.expectIdentifier()
	if err != nil {
		return err
	}
	if err := c.expectSymbol("("); err != nil {
		return err
	}

	if sym, ok := c.sym.Lookup(name.Text); ok {
		// varName.subName(...): a method call on a resolved object.
		if err := c.em.Push(sym.Kind.Segment(), uint16(sym.Index)); err != nil {
			return err
		}
		n, err := c.compileExpressionList()
		if err != nil {
			return err
		}
		if err := c.expectSymbol(")"); err != nil {
			return err
		}
		c.em.Call(sym.Type+"."+subName.Text, n+1)
		return nil
	}

	// ClassName.subName(...): a static function/constructor call.
	if err := c.resolveClassForDiagnostics(name.Text); err != nil {
		return err
	}
	n, err := c.compileExpressionList()
	if err != nil {
		return err
	}
	if err := c.expectSymbol(")"); err != nil {
		return err
	}
	c.em.Call(name.Text+"."+subName.Text, n)
	return nil
}

func (c *Compiler) compileExpressionList() (int, error) {
	tok, err := c.peek()
	if err != nil {
		return 0, err
	}
	if tok.IsSymbol(")") {
		return 0, nil
	}

	count := 0
	for {
		if err := c.compileExpression(); err != nil {
			return 0, err
		}
		count++

		tok, err := c.peek()
		if err != nil {
			return 0, err
		}
		if !tok.IsSymbol(",") {
			return count, nil
		}
		if _, err := c.advance(); err != nil {
			return 0, err
		}
	}
}

// resolveClassForDiagnostics turns a call to an unresolvable class name into
// a Name error, when the driver has given this Compiler enough context
// (knownClasses and/or useStdlib) to tell the difference between a forward
// reference and a typo. With no such context, every static call is assumed
// resolvable by the eventual VM linker, since this compiler never links
// across translation units.
func (c *Compiler) resolveClassForDiagnostics(class string) error {
	if class == c.className {
		return nil
	}
	if c.knownClasses == nil && !c.useStdlib {
		return nil
	}
	if c.knownClasses != nil && c.knownClasses[class] {
		return nil
	}
	if c.useStdlib {
		if _, ok := StandardLibraryABI[class]; ok {
			return nil
		}
	}
	return c.errf(diag.Name, "call to unknown class %q", class)
}
