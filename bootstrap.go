package rhema

import (
	_ "embed"
	"fmt"
	"io"
)

//go:embed prelude.rh
var preludeSource string

// LoadBootstrap evaluates the embedded prelude into env.
func LoadBootstrap(env *Env) error {
	return LoadSource(env, "prelude.rh", preludeSource)
}

// LoadSource parses and evaluates a whole source text into env,
// discarding results. Used for the prelude and for library files named
// by a project manifest.
func LoadSource(env *Env, file, src string) error {
	p := NewParser(file, src)
	for {
		d, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := Eval(env, d); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
}
