package rhema

import "io"

// taskKind tags one pending step on the continuation stack.
type taskKind int

const (
	taskHead      taskKind = iota // head value known; dispatch on it with unevaluated args
	taskArg                       // collecting evaluated operands left to right
	taskBind                      // define: bind the result under a name
	taskAssign                    // set!: mutate the nearest enclosing binding
	taskBranch                    // if: pick a branch on the result
	taskSequence                  // begin: evaluate the next expression
	taskWrapMacro                 // macro: wrap the resulting procedure
	taskExpand                    // macro call: evaluate the expansion in the call env
)

// task is a single deferred computation waiting to consume a result.
// Each task carries its own environment: nested evaluations may run
// under different scopes than the ambient one.
type task struct {
	kind taskKind
	env  *Env

	// taskHead
	args *Datum // unevaluated argument list
	form *Datum // whole call form, for diagnostics

	// taskArg
	proc    *ProcValue
	pending []*Datum
	done    []*Datum
	idx     int

	// taskBind / taskAssign
	name string

	// taskBranch
	thenExpr *Datum
	elseExpr *Datum // nil when the form has no alternative

	// taskSequence
	exprs []*Datum
}

// Continuation is the trampoline state: either an expression waiting to be
// evaluated (evaluating=true) or a result waiting to be consumed by the
// pending-task stack. The driver loop runs tasks until the stack drains;
// host call depth stays O(1) no matter how deep the expression tree is,
// which is what makes tail calls and deep recursion stack-safe.
type Continuation struct {
	evaluating bool
	expr       *Datum
	env        *Env
	result     *Datum
	stack      []task
}

// Eval evaluates one datum against an environment and returns the result.
// This is the sole embedding entry point. Failures abort the evaluation
// and propagate; nothing is retried or suppressed internally.
func Eval(env *Env, datum *Datum) (*Datum, error) {
	c := &Continuation{evaluating: true, expr: datum, env: env}
	return c.run()
}

// EvalSource parses src as a sequence of top-level datums and evaluates
// them in order, returning the last result. file is used in diagnostics.
func EvalSource(env *Env, file, src string) (*Datum, error) {
	p := NewParser(file, src)
	result := Nil
	for {
		d, err := p.Next()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		result, err = Eval(env, d)
		if err != nil {
			return nil, err
		}
	}
}

func (c *Continuation) run() (*Datum, error) {
	for {
		if c.evaluating {
			if err := c.stepExpr(); err != nil {
				return nil, err
			}
			continue
		}
		if len(c.stack) == 0 {
			return c.result, nil
		}
		if err := c.stepResume(); err != nil {
			return nil, err
		}
	}
}

// give parks a finished value in the result slot.
func (c *Continuation) give(d *Datum) {
	c.result = d
	c.evaluating = false
}

// evalIn replaces the current work with evaluation of expr under env.
// No task is pushed, so a call in tail position reuses the frame.
func (c *Continuation) evalIn(expr *Datum, env *Env) {
	c.expr = expr
	c.env = env
	c.evaluating = true
}

func (c *Continuation) push(t task) {
	c.stack = append(c.stack, t)
}

func (c *Continuation) pop() {
	c.stack = c.stack[:len(c.stack)-1]
}

// stepExpr dispatches on the kind of the expression under evaluation.
func (c *Continuation) stepExpr() error {
	switch c.expr.Kind {
	case DatNil, DatAtom, DatProc, DatMacro, DatSpecial:
		c.give(c.expr)
	case DatSymbol:
		val, err := c.env.Lookup(c.expr.Str)
		if err != nil {
			return err
		}
		c.give(val)
	case DatPair:
		// Evaluate the head first; the task decides what to do with the
		// still-unevaluated tail once the head's value is known.
		c.push(task{kind: taskHead, env: c.env, args: c.expr.Second, form: c.expr})
		c.expr = c.expr.First
	default:
		return typeErrf(c.expr, "cannot evaluate %s", c.expr.KindName())
	}
	return nil
}

// stepResume hands the current result to the top pending task.
func (c *Continuation) stepResume() error {
	top := &c.stack[len(c.stack)-1]
	switch top.kind {
	case taskArg:
		top.done = append(top.done, c.result)
		if top.idx < len(top.pending) {
			c.expr = top.pending[top.idx]
			c.env = top.env
			top.idx++
			c.evaluating = true
			return nil
		}
		t := *top
		c.pop()
		return c.apply(t.proc, t.done, t.form)

	case taskSequence:
		// Previous expression's value is discarded.
		if top.idx == len(top.exprs)-1 {
			t := *top
			c.pop()
			c.evalIn(t.exprs[t.idx], t.env)
			return nil
		}
		c.expr = top.exprs[top.idx]
		c.env = top.env
		top.idx++
		c.evaluating = true
		return nil
	}

	t := *top
	c.pop()
	switch t.kind {
	case taskHead:
		return c.resumeHead(t)

	case taskBind:
		val := c.result
		if (val.Kind == DatProc || val.Kind == DatMacro) && val.Proc.Name == "" {
			val.Proc.Name = t.name
		}
		t.env.Define(t.name, val)
		return nil

	case taskAssign:
		return t.env.Mutate(t.name, c.result)

	case taskBranch:
		if c.result.Truthy() {
			c.evalIn(t.thenExpr, t.env)
		} else if t.elseExpr != nil {
			c.evalIn(t.elseExpr, t.env)
		} else {
			c.give(Nil)
		}
		return nil

	case taskWrapMacro:
		if c.result.Kind != DatProc {
			return typeErrf(c.result, "macro: expected procedure, got %s", c.result.KindName())
		}
		c.give(MacroVal(c.result.Proc))
		return nil

	case taskExpand:
		// The macro body produced a new program; evaluate it where the
		// macro was called.
		c.evalIn(c.result, t.env)
		return nil
	}
	return typeErrf(nil, "unknown task kind %d", t.kind)
}

// resumeHead consumes the evaluated head of a call form and decides how
// to proceed with the unevaluated tail.
func (c *Continuation) resumeHead(t task) error {
	head := c.result
	switch head.Kind {
	case DatSpecial:
		return c.applySpecial(head.Special, t.args, t.env, t.form)

	case DatMacro:
		// The wrapped procedure receives the argument list unevaluated;
		// its result is evaluated again in the call environment.
		args, ok := ListToSlice(t.args)
		if !ok {
			return syntaxErrf(t.form, "macro call: improper argument list")
		}
		c.push(task{kind: taskExpand, env: t.env})
		return c.apply(head.Proc, args, t.form)

	case DatProc:
		argExprs, ok := ListToSlice(t.args)
		if !ok {
			return syntaxErrf(t.form, "call: improper argument list")
		}
		if len(argExprs) == 0 {
			return c.apply(head.Proc, nil, t.form)
		}
		c.push(task{
			kind:    taskArg,
			env:     t.env,
			proc:    head.Proc,
			pending: argExprs,
			done:    make([]*Datum, 0, len(argExprs)),
			idx:     1,
			form:    t.form,
		})
		c.expr = argExprs[0]
		c.env = t.env
		c.evaluating = true
		return nil

	default:
		return typeErrf(t.form, "cannot apply %s", head.KindName())
	}
}

// apply invokes a procedure with evaluated arguments. For closures the
// body is evaluated as a tail step: it replaces the current work instead
// of nesting under it, which is what gives proper tail calls.
func (c *Continuation) apply(p *ProcValue, args []*Datum, form *Datum) error {
	if p.Builtin != nil {
		res, err := p.Builtin(args)
		if err != nil {
			return err
		}
		c.give(res)
		return nil
	}
	frame := NewEnv(p.Env)
	if err := bindParams(p, args, frame, form); err != nil {
		return err
	}
	c.evalIn(p.Body, frame)
	return nil
}

// bindParams maps a parameter pattern against argument values into frame.
// A proper symbol list binds positionally; a dotted tail symbol collects
// the remainder as a list; a bare symbol takes the whole argument list.
func bindParams(p *ProcValue, args []*Datum, frame *Env, form *Datum) error {
	fixed, variadic := p.paramShape()
	if len(args) < fixed || (!variadic && len(args) > fixed) {
		if variadic {
			return arityErrf(form, "%s: expected at least %d args, got %d", p.callName(), fixed, len(args))
		}
		return arityErrf(form, "%s: expected %d args, got %d", p.callName(), fixed, len(args))
	}
	pat := p.Params
	i := 0
	for pat.Kind == DatPair {
		frame.Define(pat.First.Str, args[i])
		i++
		pat = pat.Second
	}
	if pat.Kind == DatSymbol {
		frame.Define(pat.Str, SliceToList(args[i:]))
	}
	return nil
}

// paramShape returns the fixed parameter count and whether the pattern
// has a variadic tail. Patterns are validated when the lambda is created.
func (p *ProcValue) paramShape() (fixed int, variadic bool) {
	pat := p.Params
	for pat.Kind == DatPair {
		fixed++
		pat = pat.Second
	}
	return fixed, pat.Kind == DatSymbol
}

func (p *ProcValue) callName() string {
	if p.Name != "" {
		return p.Name
	}
	return "procedure"
}

// checkParamPattern rejects malformed lambda parameter lists up front.
func checkParamPattern(pat *Datum) error {
	if pat.Kind == DatSymbol || pat.Kind == DatNil {
		return nil
	}
	p := pat
	for p.Kind == DatPair {
		if p.First.Kind != DatSymbol {
			return syntaxErrf(pat, "lambda: parameter names must be symbols, got %s", p.First.KindName())
		}
		p = p.Second
	}
	if p.Kind != DatNil && p.Kind != DatSymbol {
		return syntaxErrf(pat, "lambda: malformed parameter pattern")
	}
	return nil
}

// applySpecial dispatches a built-in form. argsList is the unevaluated
// tail of the form; every special form controls evaluation of its own
// arguments.
func (c *Continuation) applySpecial(kind SpecialKind, argsList *Datum, env *Env, form *Datum) error {
	args, ok := ListToSlice(argsList)
	if !ok {
		return syntaxErrf(form, "%s: improper argument list", specialName(kind))
	}
	switch kind {
	case SpecQuote:
		if len(args) != 1 {
			return syntaxErrf(form, "quote: expected 1 arg, got %d", len(args))
		}
		c.give(args[0])

	case SpecQuasiquote:
		if len(args) != 1 {
			return syntaxErrf(form, "quasiquote: expected 1 arg, got %d", len(args))
		}
		code, err := qqExpand(args[0])
		if err != nil {
			return err
		}
		c.evalIn(code, env)

	case SpecDefine:
		if len(args) != 2 {
			return syntaxErrf(form, "define: expected 2 args (name expr), got %d", len(args))
		}
		if args[0].Kind != DatSymbol {
			return syntaxErrf(args[0], "define: name must be a symbol, got %s", args[0].KindName())
		}
		c.push(task{kind: taskBind, env: env, name: args[0].Str})
		c.evalIn(args[1], env)

	case SpecSet:
		if len(args) != 2 {
			return syntaxErrf(form, "set!: expected 2 args (name expr), got %d", len(args))
		}
		if args[0].Kind != DatSymbol {
			return syntaxErrf(args[0], "set!: name must be a symbol, got %s", args[0].KindName())
		}
		c.push(task{kind: taskAssign, env: env, name: args[0].Str})
		c.evalIn(args[1], env)

	case SpecLambda:
		if len(args) != 2 {
			return syntaxErrf(form, "lambda: expected 2 args (params body), got %d", len(args))
		}
		if err := checkParamPattern(args[0]); err != nil {
			return err
		}
		c.give(ProcVal(&ProcValue{Params: args[0], Body: args[1], Env: env}))

	case SpecMacro:
		if len(args) != 1 {
			return syntaxErrf(form, "macro: expected 1 arg, got %d", len(args))
		}
		c.push(task{kind: taskWrapMacro})
		c.evalIn(args[0], env)

	case SpecIf:
		if len(args) != 2 && len(args) != 3 {
			return syntaxErrf(form, "if: expected 2 or 3 args, got %d", len(args))
		}
		var alt *Datum
		if len(args) == 3 {
			alt = args[2]
		}
		c.push(task{kind: taskBranch, env: env, thenExpr: args[1], elseExpr: alt})
		c.evalIn(args[0], env)

	case SpecBegin:
		if len(args) == 0 {
			c.give(Nil)
			return nil
		}
		if len(args) == 1 {
			c.evalIn(args[0], env)
			return nil
		}
		c.push(task{kind: taskSequence, env: env, exprs: args, idx: 1})
		c.evalIn(args[0], env)

	default:
		return syntaxErrf(form, "unknown special form")
	}
	return nil
}
