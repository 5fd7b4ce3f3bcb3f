package interpreter

import (
	"math"
	"strconv"
)

type ValueKind int

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValString
	ValFunction
	ValNative
	ValClass
	ValInstance
)

func (k ValueKind) String() string {
	switch k {
	case ValNil:
		return "nil"
	case ValBool:
		return "boolean"
	case ValNumber:
		return "number"
	case ValString:
		return "string"
	case ValFunction, ValNative:
		return "function"
	case ValClass:
		return "class"
	case ValInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Value is the runtime tagged union. Primitives are stored inline; the
// pointer fields give functions, classes and instances reference semantics.
type Value struct {
	Kind   ValueKind
	Number float64
	Str    string
	Bool   bool
	Fn     *Function
	Native *NativeFunction
	Class  *Class
	Inst   *Instance
}

func NilValue() Value                     { return Value{Kind: ValNil} }
func NumberValue(n float64) Value         { return Value{Kind: ValNumber, Number: n} }
func StringValue(s string) Value          { return Value{Kind: ValString, Str: s} }
func BoolValue(b bool) Value              { return Value{Kind: ValBool, Bool: b} }
func FunctionValue(f *Function) Value     { return Value{Kind: ValFunction, Fn: f} }
func NativeValue(n *NativeFunction) Value { return Value{Kind: ValNative, Native: n} }
func ClassValue(c *Class) Value           { return Value{Kind: ValClass, Class: c} }
func InstanceValue(in *Instance) Value    { return Value{Kind: ValInstance, Inst: in} }

func (v Value) ToString() string {
	switch v.Kind {
	case ValNumber:
		return formatNumber(v.Number)
	case ValString:
		return v.Str
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValFunction:
		return v.Fn.String()
	case ValNative:
		return v.Native.String()
	case ValClass:
		return v.Class.String()
	case ValInstance:
		return v.Inst.String()
	default:
		return "nil"
	}
}

// formatNumber prints integral values without a fractional part.
func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		if n == 0 && math.Signbit(n) {
			return "-0"
		}
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Truthy: nil and false are false, a number is false only when it is 0,
// everything else (including "") is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValNil:
		return false
	case ValBool:
		return v.Bool
	case ValNumber:
		return v.Number != 0
	default:
		return true
	}
}

// Callable returns the call capability of functions, natives and classes.
func (v Value) Callable() (Callable, bool) {
	switch v.Kind {
	case ValFunction:
		return v.Fn, true
	case ValNative:
		return v.Native, true
	case ValClass:
		return v.Class, true
	default:
		return nil, false
	}
}

// valuesEqual compares primitives by value and everything else by
// identity. Values of different kinds are never equal.
func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValNil:
		return true
	case ValNumber:
		return a.Number == b.Number
	case ValString:
		return a.Str == b.Str
	case ValBool:
		return a.Bool == b.Bool
	case ValFunction:
		return a.Fn == b.Fn
	case ValNative:
		return a.Native == b.Native
	case ValClass:
		return a.Class == b.Class
	case ValInstance:
		return a.Inst == b.Inst
	default:
		return false
	}
}
