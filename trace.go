package rhema

// Trace captures the boundary points of one top-level eval: the source
// text, the result or error, and when it ran. Sessions keep a capped
// ring of these for inspection.
type Trace struct {
	Source    string
	Result    *Datum // nil on error
	Error     string // non-empty on error
	Timestamp string // ISO 8601
}

// ToDatum converts a trace to an association list for consumption from
// the language side.
func (t *Trace) ToDatum() *Datum {
	result := t.Result
	if result == nil {
		result = Nil
	}
	return List(
		Cons(SymbolVal("source"), StringVal(t.Source)),
		Cons(SymbolVal("result"), result),
		Cons(SymbolVal("error"), StringVal(t.Error)),
		Cons(SymbolVal("timestamp"), StringVal(t.Timestamp)),
	)
}
