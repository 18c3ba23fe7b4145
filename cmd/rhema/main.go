package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	rhema "github.com/rphilander/rhema"
)

func main() {
	manifestPath := os.Getenv("RHEMA_MANIFEST")
	if manifestPath == "" {
		manifestPath = "rhema.yml"
	}
	sessionPath := os.Getenv("RHEMA_SESSION")

	manifest, err := rhema.LoadManifest(manifestPath)
	if err != nil {
		log.Fatalf("failed to load manifest: %v", err)
	}
	if manifest != nil && sessionPath == "" {
		sessionPath = manifest.Session
	}

	var env *rhema.Env
	var session *rhema.Session
	if sessionPath != "" {
		session, err = rhema.OpenSession(sessionPath)
		if err != nil {
			log.Fatalf("failed to open session %s: %v", sessionPath, err)
		}
		defer session.Close()
		env = session.Env()
	} else {
		env, err = rhema.NewRootEnv()
		if err != nil {
			log.Fatalf("failed to build root environment: %v", err)
		}
	}

	if manifest != nil {
		if err := manifest.ApplyPreludes(env); err != nil {
			log.Fatalf("failed to load manifest preludes: %v", err)
		}
	}

	if len(os.Args) > 1 {
		for _, path := range os.Args[1:] {
			src, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
				os.Exit(1)
			}
			if _, err := rhema.EvalSource(env, path, string(src)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
		return
	}

	repl(env, session)
}

// repl reads expressions line by line, accumulating input until parens
// balance, and prints each result in written form.
func repl(env *rhema.Env, session *rhema.Session) {
	in := bufio.NewScanner(os.Stdin)
	var buf strings.Builder
	prompt := "> "
	for {
		fmt.Print(prompt)
		if !in.Scan() {
			fmt.Println()
			return
		}
		buf.WriteString(in.Text())
		buf.WriteByte('\n')
		if !balanced(buf.String()) {
			prompt = "  "
			continue
		}
		src := buf.String()
		buf.Reset()
		prompt = "> "
		if strings.TrimSpace(src) == "" {
			continue
		}

		var result *rhema.Datum
		var err error
		if session != nil {
			result, err = session.EvalString(src)
		} else {
			result, err = rhema.EvalSource(env, "repl", src)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println(result.String())
	}
}

// balanced reports whether every ( has a matching ). Parens inside
// strings and comments don't count. An excess of ) is left for the
// parser to report.
func balanced(src string) bool {
	depth := 0
	inString := false
	inComment := false
	escaped := false
	for _, r := range src {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}
		case inString:
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
		case r == '"':
			inString = true
		case r == ';':
			inComment = true
		case r == '(':
			depth++
		case r == ')':
			depth--
		}
	}
	return depth <= 0
}
