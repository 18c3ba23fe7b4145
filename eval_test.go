package rhema

import (
	"strings"
	"testing"
)

func testEval(t *testing.T, input, want string) {
	t.Helper()
	env, err := NewRootEnv()
	if err != nil {
		t.Fatalf("root env: %v", err)
	}
	got, err := EvalSource(env, "test", input)
	if err != nil {
		t.Fatalf("eval %q: %v", input, err)
	}
	if got.String() != want {
		t.Fatalf("eval %q: expected %s, got %s", input, want, got.String())
	}
}

func testEvalError(t *testing.T, input string) {
	t.Helper()
	env, err := NewRootEnv()
	if err != nil {
		t.Fatalf("root env: %v", err)
	}
	if _, err := EvalSource(env, "test", input); err == nil {
		t.Fatalf("expected error for %q", input)
	}
}

// --- Self-evaluating forms and symbols ---

func TestEvalLiterals(t *testing.T) {
	testEval(t, "42", "42")
	testEval(t, "-7", "-7")
	testEval(t, `"hello"`, `"hello"`)
	testEval(t, "#t", "#t")
	testEval(t, "#f", "#f")
	testEval(t, "'()", "()")
}

func TestEvalSymbolLookup(t *testing.T) {
	testEval(t, "(define x 5) x", "5")
	testEvalError(t, "nope")
}

// --- Quote ---

func TestEvalQuote(t *testing.T) {
	testEval(t, "'foo", "foo")
	testEval(t, "'(1 2 3)", "(1 2 3)")
	testEval(t, "(quote (a . b))", "(a . b)")
	// quoted data is never evaluated, unbound symbols included
	testEval(t, "'(nope (more nope))", "(nope (more nope))")
	testEvalError(t, "(quote)")
	testEvalError(t, "(quote 1 2)")
}

// --- If ---

func TestEvalIf(t *testing.T) {
	testEval(t, "(if #t 1 2)", "1")
	testEval(t, "(if #f 1 2)", "2")
	testEval(t, "(if '() 1 2)", "2")
	testEval(t, "(if 0 1 2)", "1") // only () and #f are falsy
	testEval(t, `(if "" 1 2)`, "1")
	testEval(t, "(if #f 1)", "()")
}

func TestEvalIfLazyBranches(t *testing.T) {
	// the untaken branch must not be evaluated
	testEval(t, "(if #t 'ok (car '()))", "ok")
	testEval(t, "(if #f (car '()) 'ok)", "ok")
}

// --- Define and set! ---

func TestEvalDefine(t *testing.T) {
	testEval(t, "(define x 10) (+ x x)", "20")
	testEval(t, "(define x 1) (define x 2) x", "2")
	// define yields the bound value
	testEval(t, "(define x 7)", "7")
}

func TestEvalDefineNamesProcedure(t *testing.T) {
	testEval(t, "(define f (lambda (x) x)) f", "#<procedure f>")
}

func TestEvalSet(t *testing.T) {
	testEval(t, "(define x 1) (set! x 2) x", "2")
	testEvalError(t, "(set! nope 1)")
}

func TestEvalSetSharedClosure(t *testing.T) {
	testEval(t, `
		(define make-counter (lambda (n)
		  (cons (lambda () n)
		        (lambda () (set! n (+ n 1))))))
		(define c (make-counter 0))
		((cdr c)) ((cdr c))
		((car c))`, "2")
}

func TestEvalErrorLeavesEnvIntact(t *testing.T) {
	env, err := NewRootEnv()
	if err != nil {
		t.Fatalf("root env: %v", err)
	}
	if _, err := EvalSource(env, "test", "(define x 1)"); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := EvalSource(env, "test", "(cons nope 2)"); err == nil {
		t.Fatal("expected unbound error")
	} else if !strings.Contains(err.Error(), "nope") {
		t.Fatalf("error should name the symbol: %v", err)
	}
	val, err := env.Lookup("x")
	if err != nil || val.String() != "1" {
		t.Fatalf("binding lost after failed eval: %v %v", val, err)
	}
}

// --- Lambda and application ---

func TestEvalLambda(t *testing.T) {
	testEval(t, "((lambda (x) x) 42)", "42")
	testEval(t, "((lambda (a b) (list a b)) 1 2)", "(1 2)")
	testEval(t, "((lambda () 'hi))", "hi")
}

func TestEvalLambdaArity(t *testing.T) {
	testEvalError(t, "((lambda (x y) x) 1)")
	testEvalError(t, "((lambda (x y) x) 1 2 3)")
	testEval(t, "((lambda (x y) x) 1 2)", "1")
}

func TestEvalVariadic(t *testing.T) {
	testEval(t, "((lambda (x . rest) rest) 1 2 3)", "(2 3)")
	testEval(t, "((lambda (x . rest) rest) 1)", "()")
	testEval(t, "((lambda args args) 1 2 3)", "(1 2 3)")
	testEval(t, "((lambda args args))", "()")
	testEvalError(t, "((lambda (x . rest) rest))")
}

func TestEvalLambdaBadParams(t *testing.T) {
	testEvalError(t, "(lambda (1 2) 3)")
	testEvalError(t, `(lambda ("x") 1)`)
}

func TestEvalClosureCapture(t *testing.T) {
	testEval(t, `
		(define add (lambda (a) (lambda (b) (+ a b))))
		((add 3) 4)`, "7")
}

func TestEvalArgumentOrder(t *testing.T) {
	testEval(t, `
		(define log '())
		(define note (lambda (x) (set! log (cons x log)) x))
		(list (note 1) (note 2) (note 3))
		log`, "(3 2 1)")
}

// --- Tail calls ---

func TestEvalTailRecursionDeep(t *testing.T) {
	testEval(t, `
		(define loop (lambda (n)
		  (if (= n 0) 'done (loop (- n 1)))))
		(loop 1000000)`, "done")
}

func TestEvalMutualTailRecursion(t *testing.T) {
	testEval(t, `
		(define even? (lambda (n) (if (= n 0) #t (odd? (- n 1)))))
		(define odd? (lambda (n) (if (= n 0) #f (even? (- n 1)))))
		(even? 100000)`, "#t")
}

// --- Begin ---

func TestEvalBegin(t *testing.T) {
	testEval(t, "(begin 1 2 3)", "3")
	testEval(t, "(begin)", "()")
	testEval(t, "(begin 'only)", "only")
	testEval(t, `
		(define x 0)
		(begin (set! x 1) (set! x (+ x 1)) x)`, "2")
}

// --- Macros ---

func TestEvalMacro(t *testing.T) {
	testEval(t, `
		(define m (macro (lambda (a b) (list '+ a b))))
		(m 1 2)`, "3")
}

func TestEvalMacroArgsUnevaluated(t *testing.T) {
	// the macro body sees the raw forms, not their values
	testEval(t, `
		(define first-form (macro (lambda (a b) (list 'quote a))))
		(first-form (+ 1 2) nope)`, "(+ 1 2)")
}

func TestEvalMacroExpansionInCallEnv(t *testing.T) {
	testEval(t, `
		(define twice (macro (lambda (e) (list 'begin e e))))
		(define n 0)
		(twice (set! n (+ n 1)))
		n`, "2")
}

func TestEvalMacroRejectsNonProcedure(t *testing.T) {
	testEvalError(t, "(macro 42)")
}

// --- Quasiquote ---

func TestEvalQuasiquote(t *testing.T) {
	testEval(t, "`foo", "foo")
	testEval(t, "`(1 2 3)", "(1 2 3)")
	testEval(t, "`(1 ,(+ 1 1) 3)", "(1 2 3)")
	testEval(t, "`(1 ,@(list 2 3) 4)", "(1 2 3 4)")
	testEval(t, "`(1 . ,(+ 1 1))", "(1 . 2)")
	testEval(t, "`(,@(list 1 2))", "(1 2)")
	testEval(t, "`((a ,(+ 1 1)) b)", "((a 2) b)")
}

func TestEvalQuasiquoteErrors(t *testing.T) {
	testEvalError(t, "`,@(list 1 2)") // splicing outside a list
	testEvalError(t, "`(1 ,)")
}

// --- First-class special forms ---

func TestEvalSpecialFormShadowing(t *testing.T) {
	// special forms are ordinary bindings; a lexical binding wins
	testEval(t, "((lambda (if) (if 1 2)) list)", "(1 2)")
	testEval(t, "(define my-quote quote) (my-quote (1 2))", "(1 2)")
}

func TestEvalNotCallable(t *testing.T) {
	testEvalError(t, "(1 2 3)")
	testEvalError(t, `("no" 1)`)
}

func TestEvalImproperCallForm(t *testing.T) {
	testEvalError(t, "(cons 1 . 2)")
}

// --- Arithmetic ---

func TestEvalArithmetic(t *testing.T) {
	testEval(t, "(+ 1 2 3)", "6")
	testEval(t, "(+)", "0")
	testEval(t, "(- 10 3 2)", "5")
	testEval(t, "(- 5)", "-5")
	testEval(t, "(* 2 3 4)", "24")
	testEval(t, "(*)", "1")
	testEval(t, "(quotient 7 2)", "3")
	testEval(t, "(remainder 7 2)", "1")
	testEvalError(t, "(quotient 1 0)")
	testEvalError(t, "(+ 1 'a)")
}

func TestEvalBigIntegers(t *testing.T) {
	// factorial 25 overflows int64; results widen instead
	testEval(t, `
		(define fact (lambda (n)
		  (if (= n 0) 1 (* n (fact (- n 1))))))
		(fact 25)`, "15511210043330985984000000")
}

func TestEvalComparison(t *testing.T) {
	testEval(t, "(< 1 2 3)", "#t")
	testEval(t, "(< 1 3 2)", "#f")
	testEval(t, "(= 2 2 2)", "#t")
	testEval(t, "(> 3 2 1)", "#t")
	testEvalError(t, "(< 1)")
}

// --- List builtins ---

func TestEvalListBuiltins(t *testing.T) {
	testEval(t, "(cons 1 2)", "(1 . 2)")
	testEval(t, "(car '(1 2))", "1")
	testEval(t, "(cdr '(1 2))", "(2)")
	testEval(t, "(list 1 2 3)", "(1 2 3)")
	testEval(t, "(length '(a b c))", "3")
	testEval(t, "(append '(1 2) '(3) '(4 5))", "(1 2 3 4 5)")
	testEval(t, "(append '(1) 2)", "(1 . 2)")
	testEvalError(t, "(car 5)")
	testEvalError(t, "(cdr '())")
	testEvalError(t, "(length '(1 . 2))")
}

func TestEvalPredicates(t *testing.T) {
	testEval(t, "(pair? '(1))", "#t")
	testEval(t, "(pair? '())", "#f")
	testEval(t, "(null? '())", "#t")
	testEval(t, "(null? '(1))", "#f")
	testEval(t, "(symbol? 'a)", "#t")
	testEval(t, "(symbol? 1)", "#f")
	testEval(t, "(not #f)", "#t")
	testEval(t, "(not 1)", "#f")
}

func TestEvalEquality(t *testing.T) {
	testEval(t, "(eq? 'a 'a)", "#t")
	testEval(t, "(eq? 1 1)", "#t")
	testEval(t, "(eq? '(1) '(1))", "#f")
	testEval(t, "(equal? '(1 (2 3)) '(1 (2 3)))", "#t")
	testEval(t, "(equal? '(1 2) '(1 3))", "#f")
	testEval(t, "(define x '(1 2)) (eq? x x)", "#t")
}

func TestEvalStrings(t *testing.T) {
	testEval(t, `(string-append "foo" "bar")`, `"foobar"`)
	testEval(t, `(to-string '(1 "a"))`, `"(1 \"a\")"`)
	testEvalError(t, `(string-append "a" 1)`)
}

// --- Prelude ---

func TestPreludeLet(t *testing.T) {
	testEval(t, "(let ((x 1)) x)", "1")
	testEval(t, "(let ((x 1) (y 2)) (+ x y))", "3")
	testEval(t, "(let ((x 1)) (set! x 2) x)", "2")
}

func TestPreludeWhenUnless(t *testing.T) {
	testEval(t, "(when #t 1 2)", "2")
	testEval(t, "(when #f 1 2)", "()")
	testEval(t, "(unless #f 5)", "5")
	testEval(t, "(unless #t 5)", "()")
}

func TestPreludeAndOr(t *testing.T) {
	testEval(t, "(and)", "#t")
	testEval(t, "(and 1 2 3)", "3")
	testEval(t, "(and 1 #f 3)", "#f")
	testEval(t, "(or)", "#f")
	testEval(t, "(or #f 7)", "7")
	testEval(t, "(or #f #f)", "#f")
	// short-circuit: later arms untouched
	testEval(t, "(or 1 (car '()))", "1")
	testEval(t, "(and #f (car '()))", "#f")
}

func TestPreludeListHelpers(t *testing.T) {
	testEval(t, "(map (lambda (x) (* x x)) '(1 2 3))", "(1 4 9)")
	testEval(t, "(filter (lambda (x) (< x 3)) '(1 2 3 4))", "(1 2)")
	testEval(t, "(fold + 0 '(1 2 3 4))", "10")
	testEval(t, "(reverse '(1 2 3))", "(3 2 1)")
	testEval(t, "(cadr '(1 2 3))", "2")
	testEval(t, "(caddr '(1 2 3))", "3")
	testEval(t, "(list? '(1 2))", "#t")
	testEval(t, "(list? '(1 . 2))", "#f")
}
