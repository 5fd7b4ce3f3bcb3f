package interpreter

import (
	"fmt"

	"golox/ast"
)

// Callable is shared by user functions, native functions and classes.
// Arity is checked by the caller before Call runs.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	String() string
}

// Function is a user-defined function or method together with the scope
// it was declared in.
type Function struct {
	decl    *ast.FunctionDecl
	closure *Environment
}

func NewFunction(decl *ast.FunctionDecl, closure *Environment) *Function {
	return &Function{decl: decl, closure: closure}
}

func (f *Function) Name() string   { return f.decl.Name.Lexeme }
func (f *Function) Arity() int     { return len(f.decl.Params) }
func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Name()) }

// Call runs the body in a fresh scope whose parent is the closure, not the
// caller's scope.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.closure)
	for idx, param := range f.decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	in.pushFrame(f.Name())
	defer in.popFrame()

	sig, err := in.executeBlock(f.decl.Body, env)
	if err != nil {
		return Value{}, err
	}
	if sig.returning {
		return sig.value, nil
	}
	return NilValue(), nil
}

// bind returns a copy of the method with `this` defined in a scope between
// the call scope and the method's closure.
func (f *Function) bind(inst *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define("this", InstanceValue(inst))
	return &Function{decl: f.decl, closure: env}
}

// NativeFunction is implemented by the host.
type NativeFunction struct {
	name  string
	arity int
	fn    func(in *Interpreter, args []Value) (Value, error)
}

func NewNativeFunction(name string, arity int, fn func(in *Interpreter, args []Value) (Value, error)) *NativeFunction {
	return &NativeFunction{name: name, arity: arity, fn: fn}
}

func (n *NativeFunction) Name() string   { return n.name }
func (n *NativeFunction) Arity() int     { return n.arity }
func (n *NativeFunction) String() string { return "<native fn>" }
func (n *NativeFunction) Call(in *Interpreter, args []Value) (Value, error) {
	return n.fn(in, args)
}

type Class struct {
	Name       string
	Superclass *Class // nil when the class has none
	Methods    map[string]*Function
}

func (c *Class) String() string { return c.Name }
func (c *Class) Arity() int     { return 0 }

// Call constructs a new, empty instance.
func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	return InstanceValue(&Instance{Class: c, Fields: map[string]Value{}}), nil
}

// FindMethod looks in this class, then up the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (inst *Instance) String() string { return inst.Class.Name + " instance" }

// Get prefers own fields over methods. Methods come back bound to inst.
func (inst *Instance) Get(name string) (Value, bool) {
	if v, ok := inst.Fields[name]; ok {
		return v, true
	}
	if m, ok := inst.Class.FindMethod(name); ok {
		return FunctionValue(m.bind(inst)), true
	}
	return Value{}, false
}

// Set creates or overwrites a field; fields are never declared up front.
func (inst *Instance) Set(name string, v Value) {
	inst.Fields[name] = v
}
