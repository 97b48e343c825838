package jack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nand2tetris.dev/jackc/internal/diag"
	"nand2tetris.dev/jackc/internal/jack"
	"nand2tetris.dev/jackc/internal/vmcode"
)

func compile(t *testing.T, src string) []string {
	t.Helper()
	em := vmcode.NewEmitter("unused.vm")
	c := jack.NewCompiler("test.jack", []byte(src), em, nil, false)
	require.NoError(t, c.Compile())
	return em.Lines()
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	em := vmcode.NewEmitter("unused.vm")
	c := jack.NewCompiler("test.jack", []byte(src), em, nil, false)
	return c.Compile()
}

// Simple function returning a constant.
func TestScenarioSimpleFunction(t *testing.T) {
	lines := compile(t, `class A { function int f() { return 3; } }`)
	assert.Equal(t, []string{
		"function A.f 0",
		"push constant 3",
		"return",
	}, lines)
}

// Method assignment to a field, via a resolved receiver.
func TestScenarioMethodAssignment(t *testing.T) {
	lines := compile(t, `class P { field int x; method void set(int v) { let x = v; return; } }`)
	assert.Equal(t, []string{
		"function P.set 0",
		"push argument 0",
		"pop pointer 0",
		"push argument 1",
		"pop this 0",
		"push constant 0",
		"return",
	}, lines)
}

// Constructor allocation and field initialization.
func TestScenarioConstructor(t *testing.T) {
	lines := compile(t, `class P { field int x; constructor P new(int a) { let x = a; return this; } }`)
	assert.Equal(t, []string{
		"function P.new 0",
		"push constant 1",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push argument 0",
		"pop this 0",
		"push pointer 0",
		"return",
	}, lines)
}

// No operator precedence: strict left-to-right evaluation.
func TestScenarioExpressionNoPrecedence(t *testing.T) {
	lines := compile(t, `class A { function int f() { return 2 + 3 * 4; } }`)
	assert.Equal(t, []string{
		"function A.f 0",
		"push constant 2",
		"push constant 3",
		"add",
		"push constant 4",
		"call Math.multiply 2",
		"return",
	}, lines)
}

// Array element assignment.
func TestScenarioArrayAssignment(t *testing.T) {
	lines := compile(t, `
		class A {
			function void f(int i) {
				var Array a;
				var int v;
				let a[i] = v;
				return;
			}
		}
	`)
	assert.Equal(t, []string{
		"function A.f 2",
		"push local 0",
		"push argument 0",
		"add",
		"push local 1",
		"pop temp 0",
		"pop pointer 1",
		"push temp 0",
		"pop that 0",
		"push constant 0",
		"return",
	}, lines)
}

// Multi-argument qualified call to another class's static function.
func TestScenarioQualifiedMultiArgCall(t *testing.T) {
	lines := compile(t, `
		class A {
			function void f() {
				var int x1, y1, x2, y2;
				do Screen.drawRectangle(x1, y1, x2, y2);
				return;
			}
		}
	`)
	assert.Equal(t, []string{
		"function A.f 4",
		"push local 0",
		"push local 1",
		"push local 2",
		"push local 3",
		"call Screen.drawRectangle 4",
		"pop temp 0",
		"push constant 0",
		"return",
	}, lines)
}

func TestBooleanConstants(t *testing.T) {
	lines := compile(t, `class A { function boolean f() { return true; } }`)
	assert.Equal(t, []string{
		"function A.f 0",
		"push constant 0",
		"not",
		"return",
	}, lines)
}

func TestUnqualifiedCallIsMethodOnCurrentReceiver(t *testing.T) {
	lines := compile(t, `
		class A {
			method void helper() { return; }
			method void f() { do helper(); return; }
		}
	`)
	assert.Equal(t, []string{
		"function A.helper 0",
		"push argument 0",
		"pop pointer 0",
		"push constant 0",
		"return",
		"function A.f 0",
		"push argument 0",
		"pop pointer 0",
		"push pointer 0",
		"call A.helper 1",
		"pop temp 0",
		"push constant 0",
		"return",
	}, lines)
}

func TestStringConstant(t *testing.T) {
	lines := compile(t, `class A { function void f() { do g("ab"); return; } }`)
	assert.Equal(t, []string{
		"function A.f 0",
		"push pointer 0",
		"push constant 2",
		"call String.new 1",
		"push constant 97",
		"call String.appendChar 2",
		"push constant 98",
		"call String.appendChar 2",
		"call A.g 2",
		"pop temp 0",
		"push constant 0",
		"return",
	}, lines)
}

func TestIfElseLabelsAreClassScopedAndDistinct(t *testing.T) {
	lines := compile(t, `
		class A {
			function void f(boolean b) {
				if (b) {
					return;
				} else {
					return;
				}
			}
		}
	`)
	assert.Equal(t, []string{
		"function A.f 0",
		"push argument 0",
		"not",
		"if-goto A_1",
		"push constant 0",
		"return",
		"goto A_2",
		"label A_1",
		"push constant 0",
		"return",
		"label A_2",
	}, lines)
}

func TestWhileLoop(t *testing.T) {
	lines := compile(t, `
		class A {
			function void f(boolean b) {
				while (b) {
					let b = false;
				}
				return;
			}
		}
	`)
	assert.Equal(t, []string{
		"function A.f 0",
		"label A_1",
		"push argument 0",
		"not",
		"if-goto A_2",
		"push constant 0",
		"pop argument 0",
		"goto A_1",
		"label A_2",
		"push constant 0",
		"return",
	}, lines)
}

func TestEmptyParameterListAndExpressionList(t *testing.T) {
	lines := compile(t, `class A { function void f() { do g(); return; } }`)
	assert.Equal(t, []string{
		"function A.f 0",
		"push pointer 0",
		"call A.g 1",
		"pop temp 0",
		"push constant 0",
		"return",
	}, lines)
}

func TestUndefinedVariableIsNameError(t *testing.T) {
	err := compileErr(t, `class A { function void f() { return nowhere; } }`)
	assert.Error(t, err)
	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, diag.Name, de.Kind)
}

func TestMismatchedBraceIsSyntaxError(t *testing.T) {
	err := compileErr(t, `class A { function void f() { return; }`)
	assert.Error(t, err)
	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, diag.Syntax, de.Kind)
}
