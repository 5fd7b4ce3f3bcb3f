package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/ast"
	"golox/lexer"
	"golox/parser"
)

func compile(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks, lexErrs := lexer.Scan(src)
	require.Empty(t, lexErrs)
	stmts, parseErrs := parser.Parse(toks)
	require.Empty(t, parseErrs)
	return stmts
}

// run interprets src in a fresh interpreter and returns printed lines.
func run(t *testing.T, src string) ([]string, error) {
	t.Helper()
	in := NewWithSource("test.lox", src)
	return runIn(t, in, src)
}

func runIn(t *testing.T, in *Interpreter, src string) ([]string, error) {
	t.Helper()
	var out bytes.Buffer
	in.SetOutput(&out)
	err := in.Interpret(compile(t, src))
	if out.Len() == 0 {
		return nil, err
	}
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n"), err
}

func mustRun(t *testing.T, src string) []string {
	t.Helper()
	lines, err := run(t, src)
	require.NoError(t, err)
	return lines
}

func runtimeErr(t *testing.T, src string) RuntimeError {
	t.Helper()
	_, err := run(t, src)
	require.Error(t, err)
	var re RuntimeError
	require.True(t, errors.As(err, &re), "expected RuntimeError, got %T", err)
	return re
}

func TestArithmetic(t *testing.T) {
	lines := mustRun(t, `
print 1 + 2;
print 10 / 2;
print 7 - 10;
print 2 * 3.5;
print 1 / 4;
print -(3);
print (1 + 2) * 3;`)
	assert.Equal(t, []string{"3", "5", "-3", "7", "0.25", "-3", "9"}, lines)
}

func TestStringConcatenation(t *testing.T) {
	lines := mustRun(t, `
print "a" + "b";
print nil + "x";
print true + false;
print "" + "";`)
	assert.Equal(t, []string{"ab", "nilx", "truefalse", ""}, lines)
}

func TestPlusRejectsNumberWithNonNumber(t *testing.T) {
	for _, src := range []string{`print 1 + "a";`, `print "a" + 1;`, `print nil + 1;`, `print 1 + true;`} {
		re := runtimeErr(t, src)
		assert.Contains(t, re.Msg, "'+'", src)
		assert.Equal(t, 1, re.Span.Line)
	}
}

func TestDivisionByZero(t *testing.T) {
	re := runtimeErr(t, "var a = 10;\nprint a / 0;")
	assert.Equal(t, "Division by Zero", re.Msg)
	assert.Equal(t, 2, re.Span.Line)
}

func TestArithmeticTypeMismatch(t *testing.T) {
	for _, src := range []string{`print "a" - 1;`, `print 1 * nil;`, `print "a" < "b";`, `print -"x";`, `print true / 1;`} {
		_, err := run(t, src)
		assert.Error(t, err, src)
	}
}

func TestComparisons(t *testing.T) {
	lines := mustRun(t, `
print 1 < 2;
print 2 <= 2;
print 3 > 4;
print 4 >= 5;`)
	assert.Equal(t, []string{"true", "true", "false", "false"}, lines)
}

func TestEquality(t *testing.T) {
	lines := mustRun(t, `
print 1 == 1;
print "a" == "a";
print nil == nil;
print true != false;
print 1 == "1";
print nil == false;
print 0 != nil;`)
	assert.Equal(t, []string{"true", "true", "true", "true", "false", "false", "true"}, lines)
}

func TestTruthiness(t *testing.T) {
	lines := mustRun(t, `
if (0) print "a"; else print "b";
if ("") print "a"; else print "b";
if (nil) print "a"; else print "b";
if (0.5) print "a"; else print "b";
print !!0;
print !"";
print !nil;`)
	assert.Equal(t, []string{"b", "a", "b", "a", "false", "false", "true"}, lines)
}

func TestLogicalShortCircuit(t *testing.T) {
	lines := mustRun(t, `
fun boom() { print "evaluated"; return true; }
print nil or "x";
print "first" or boom();
print 0 and boom();
print 1 and "second";`)
	assert.Equal(t, []string{"x", "first", "0", "second"}, lines)
}

func TestAssignmentIsAnExpression(t *testing.T) {
	lines := mustRun(t, `
var a;
var b;
print a = b = 3;
print a + b;`)
	assert.Equal(t, []string{"3", "6"}, lines)
}

func TestRedeclarationShadowsInSameScope(t *testing.T) {
	lines := mustRun(t, `
var a = 1;
var a = 2;
print a;
{
  var a = "inner";
  var a = "again";
  print a;
}
print a;`)
	assert.Equal(t, []string{"2", "again", "2"}, lines)
}

func TestBlockAssignmentReachesOuterScope(t *testing.T) {
	lines := mustRun(t, `
var a = 1;
{ a = 2; var b = 3; }
print a;`)
	assert.Equal(t, []string{"2"}, lines)
}

func TestUndefinedVariableReportsUseLine(t *testing.T) {
	re := runtimeErr(t, "var a = 1;\n\nprint b;")
	assert.Contains(t, re.Msg, "Undefined variable")
	assert.Equal(t, 3, re.Span.Line)

	re = runtimeErr(t, "var a = 1;\n{\n  c = 2;\n}")
	assert.Contains(t, re.Msg, "Undefined variable")
	assert.Equal(t, 3, re.Span.Line)
}

func TestAssignmentNeverDeclares(t *testing.T) {
	in := New()
	_, err := runIn(t, in, "x = 1;")
	require.Error(t, err)
	_, ok := in.GlobalsSnapshot()["x"]
	assert.False(t, ok)
}

func TestWhileAndFor(t *testing.T) {
	lines := mustRun(t, `
var i = 0;
while (i < 3) { print i; i = i + 1; }
for (var j = 10; j > 7; j = j - 1) print j;
var k = 0;
for (; k < 2;) k = k + 1;
print k;`)
	assert.Equal(t, []string{"0", "1", "2", "10", "9", "8", "2"}, lines)
}

func TestForLoopVariableIsScopedToLoop(t *testing.T) {
	_, err := run(t, "for (var i = 0; i < 1; i = i + 1) {}\nprint i;")
	require.Error(t, err)
}

// One binding per loop: closures made in different iterations share it.
func TestForLoopClosuresShareBinding(t *testing.T) {
	lines := mustRun(t, `
var first;
var second;
for (var i = 0; i < 2; i = i + 1) {
  fun get() { return i; }
  if (i == 0) first = get; else second = get;
}
print first();
print second();`)
	assert.Equal(t, []string{"2", "2"}, lines)
}

func TestLoopBodyScopeIsFreshEachIteration(t *testing.T) {
	lines := mustRun(t, `
var first;
var second;
for (var i = 0; i < 2; i = i + 1) {
  var j = i;
  fun get() { return j; }
  if (i == 0) first = get; else second = get;
}
print first();
print second();`)
	assert.Equal(t, []string{"0", "1"}, lines)
}

func TestFunctions(t *testing.T) {
	lines := mustRun(t, `
fun add(a, b) { return a + b; }
fun noReturn() { var x = 1; }
fun early(n) {
  while (true) {
    if (n > 2) return "big";
    return "small";
  }
}
print add(1, 2);
print noReturn();
print early(5);
print early(1);
print add;`)
	assert.Equal(t, []string{"3", "nil", "big", "small", "<fn add>"}, lines)
}

func TestRecursion(t *testing.T) {
	lines := mustRun(t, `
fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
print fib(15);`)
	assert.Equal(t, []string{"610"}, lines)
}

func TestClosureCounter(t *testing.T) {
	lines := mustRun(t, `
fun makeCounter() {
  var i = 0;
  fun inc() { i = i + 1; return i; }
  return inc;
}
var c = makeCounter();
print c();
print c();
var d = makeCounter();
print d();
print c();`)
	assert.Equal(t, []string{"1", "2", "1", "3"}, lines)
}

func TestClosureSeesDefiningScopeNotCaller(t *testing.T) {
	lines := mustRun(t, `
var x = "global";
fun show() { print x; }
fun caller() { var x = "local"; show(); }
caller();`)
	assert.Equal(t, []string{"global"}, lines)
}

func TestCallErrors(t *testing.T) {
	re := runtimeErr(t, "fun f(a) {}\nf(1, 2);")
	assert.Contains(t, re.Msg, "Expected 1 arguments but got 2")
	assert.Equal(t, 2, re.Span.Line)

	re = runtimeErr(t, `"str"();`)
	assert.Equal(t, "Not a function", re.Msg)

	re = runtimeErr(t, "class A {}\nA(1);")
	assert.Contains(t, re.Msg, "Expected 0 arguments")
}

func TestArgumentsEvaluatedBeforeCalleeCheck(t *testing.T) {
	lines, err := run(t, `
fun side() { print "arg"; return 1; }
nil(side());`)
	require.Error(t, err)
	assert.Equal(t, []string{"arg"}, lines)
}

func TestReturnAtTopLevelIsAnError(t *testing.T) {
	re := runtimeErr(t, "return 1;")
	assert.Contains(t, re.Msg, "top-level")
}

func TestClassesAndInstances(t *testing.T) {
	lines := mustRun(t, `
class Point {
  sum() { return this.x + this.y; }
  move(dx) { this.x = this.x + dx; return this; }
}
var p = Point();
p.x = 1;
p.y = 2;
print p.sum();
print p.move(10).x;
print Point;
print p;`)
	assert.Equal(t, []string{"3", "11", "Point", "Point instance"}, lines)
}

func TestInstancesAreShared(t *testing.T) {
	lines := mustRun(t, `
class Box {}
var a = Box();
var b = a;
b.v = "set via b";
print a.v;
print a == b;
print a == Box();`)
	assert.Equal(t, []string{"set via b", "true", "false"}, lines)
}

func TestFieldsShadowMethods(t *testing.T) {
	lines := mustRun(t, `
class A { m() { return "method"; } }
var a = A();
print a.m();
a.m = "field";
print a.m;`)
	assert.Equal(t, []string{"method", "field"}, lines)
}

func TestInheritance(t *testing.T) {
	lines := mustRun(t, `
class Animal {
  speak() { return this.name + " makes a sound"; }
  kind() { return "animal"; }
}
class Dog < Animal {
  kind() { return "dog, a kind of " + super.kind(); }
}
class Puppy < Dog {}
var d = Puppy();
d.name = "Rex";
print d.speak();
print d.kind();`)
	assert.Equal(t, []string{"Rex makes a sound", "dog, a kind of animal"}, lines)
}

func TestClassCanReferToItselfInMethods(t *testing.T) {
	lines := mustRun(t, `
class Node {
  make() { return Node(); }
}
print Node().make();`)
	assert.Equal(t, []string{"Node instance"}, lines)
}

func TestClassErrors(t *testing.T) {
	re := runtimeErr(t, "var NotClass = 1;\nclass A < NotClass {}")
	assert.Equal(t, "Superclass must be a class", re.Msg)
	assert.Equal(t, 2, re.Span.Line)

	re = runtimeErr(t, "class A < A {}")
	assert.Contains(t, re.Msg, "inherit from itself")

	re = runtimeErr(t, "class A {}\nprint A().missing;")
	assert.Contains(t, re.Msg, "does not exist")

	re = runtimeErr(t, "var x = 1;\nprint x.y;")
	assert.Equal(t, "Only instances have properties", re.Msg)

	re = runtimeErr(t, "var x = 1;\nx.y = 2;")
	assert.Equal(t, "Only instances have fields", re.Msg)

	re = runtimeErr(t, "class A { m() { return super.m(); } }\nA().m();")
	assert.Contains(t, re.Msg, "no superclass")

	re = runtimeErr(t, "print this;")
	assert.Contains(t, re.Msg, "'this'")
}

func TestSuperDoesNotLeakIntoNestedClass(t *testing.T) {
	re := runtimeErr(t, `
class Base { m() { return "base"; } }
class Derived < Base {
  make() {
    class Inner { m() { return super.m(); } }
    return Inner().m();
  }
}
Derived().make();`)
	assert.Equal(t, "Can't use 'super' in a class with no superclass", re.Msg)
	assert.Equal(t, 5, re.Span.Line)
}

func TestNativeClock(t *testing.T) {
	lines := mustRun(t, `
var t = clock();
print t > 0;
print clock;`)
	assert.Equal(t, []string{"true", "<native fn>"}, lines)
}

func TestErrorStopsExecution(t *testing.T) {
	lines, err := run(t, `
print "before";
print 1 / 0;
print "after";`)
	require.Error(t, err)
	assert.Equal(t, []string{"before"}, lines)
}

func TestScopeRestoredAfterErrorInNestedBlock(t *testing.T) {
	in := New()
	_, err := runIn(t, in, "{ var inner = 1; { fun f() { return missing; } f(); } }")
	require.Error(t, err)
	assert.Same(t, in.globals, in.env)
	assert.Empty(t, in.callStack)

	lines, err := runIn(t, in, "var after = 2;\nprint after;")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, lines)
	_, leaked := in.GlobalsSnapshot()["inner"]
	assert.False(t, leaked)
}

func TestRuntimeErrorRendering(t *testing.T) {
	src := "fun outer() { inner(); }\nfun inner() { return 1 / 0; }\nouter();"
	re := runtimeErr(t, src)
	assert.Equal(t, []string{"inner", "outer"}, re.Stack)
	text := re.Error()
	assert.Contains(t, text, "Runtime error at test.lox:2:")
	assert.Contains(t, text, "Division by Zero")
	assert.Contains(t, text, "2 | fun inner() { return 1 / 0; }")
	assert.Contains(t, text, "at inner()")
}

func TestInspectHelpers(t *testing.T) {
	in := New()
	_, err := runIn(t, in, "fun b() {} fun a() {} class C {} var v = 1;")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, in.FuncNames())
	assert.Equal(t, []string{"C"}, in.ClassNames())
	globs := in.GlobalsSnapshot()
	assert.Equal(t, NumberValue(1), globs["v"])
	assert.Contains(t, globs, "clock")
}
