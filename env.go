package rhema

// Env is one frame in the lexical-scope chain. A frame owns the bindings
// introduced at its scope; parent points outward. Frames are shared, not
// tree-owned: every closure created under a frame keeps a reference to it,
// so a frame lives as long as its longest-lived holder.
type Env struct {
	vars   map[string]*Datum
	parent *Env
}

// NewEnv creates an empty frame chained to parent. A nil parent makes a
// root frame: lookup misses there report unbound-variable errors instead
// of delegating further.
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]*Datum), parent: parent}
}

// Extend returns a new child frame binding name to val. The receiver is
// never mutated, so sibling extensions of the same parent stay independent.
func (e *Env) Extend(name string, val *Datum) *Env {
	child := NewEnv(e)
	child.vars[name] = val
	return child
}

// Lookup walks the chain from the most specific frame outward; the first
// frame owning name wins. The walk is a loop, not recursive delegation:
// chains grow arbitrarily long and must not consume host stack.
func (e *Env) Lookup(name string) (*Datum, error) {
	for f := e; f != nil; f = f.parent {
		if val, ok := f.vars[name]; ok {
			return val, nil
		}
	}
	return nil, unboundErr(name)
}

// Define introduces or overwrites a binding at this scope.
func (e *Env) Define(name string, val *Datum) {
	e.vars[name] = val
}

// Mutate updates the nearest enclosing binding of name in place. Every
// closure sharing that frame observes the new value. Unbound names are an
// error; Mutate never creates bindings.
func (e *Env) Mutate(name string, val *Datum) error {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = val
			return nil
		}
	}
	return unboundErr(name)
}
