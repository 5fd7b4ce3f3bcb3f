package interpreter

import "sort"

// GlobalsSnapshot returns a copy of the global scope. Callers sort if needed.
func (i *Interpreter) GlobalsSnapshot() map[string]Value {
	out := make(map[string]Value, len(i.globals.values))
	for k, v := range i.globals.values {
		out[k] = v
	}
	return out
}

// FuncNames returns sorted names of global user-defined functions.
func (i *Interpreter) FuncNames() []string {
	return i.globalNamesOf(ValFunction)
}

// ClassNames returns sorted names of global classes.
func (i *Interpreter) ClassNames() []string {
	return i.globalNamesOf(ValClass)
}

func (i *Interpreter) globalNamesOf(kind ValueKind) []string {
	names := []string{}
	for name, v := range i.globals.values {
		if v.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
