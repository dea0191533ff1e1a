package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInvalid is returned when a loaded configuration fails the schema.
var ErrInvalid = errors.New("invalid configuration")

const schemaSource = `
#Config: {
	engine:       "sqlite" | "postgres"
	path:         string
	url:          string
	log_level:    "debug" | "info" | "warn" | "error"
	auto_migrate: bool

	if engine == "sqlite" {
		path: !=""
	}
	if engine == "postgres" {
		url: =~"^postgres(ql)?://"
	}
}
`

// Validate checks c against the configuration schema.
func Validate(c *Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("config.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, cueerrors.Details(err, nil))
	}
	return nil
}
