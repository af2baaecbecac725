package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate returns every problem found in cfg.
func Validate(cfg *Config) []error {
	var errs []error
	errs = append(errs, validateStruct(cfg)...)
	if err := validateExclude(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validatePaths(cfg); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func validateStruct(cfg *Config) []error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s fails %q (got %v)", tomlKey(fe.Namespace()), constraint(fe), fe.Value()))
	}
	return errs
}

// tomlKey turns a validator namespace such as Config.Stub.LineLength into
// the dotted key used in the file.
func tomlKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q is not a valid glob: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d] %q is not a valid glob: %w", i, pattern, err)
		}
	}
	return nil
}

func validatePaths(cfg *Config) error {
	out := strings.TrimSpace(cfg.Paths.OutputDir)
	if out == "" {
		return nil
	}
	if filepath.Clean(out) == filepath.Clean(cfg.Paths.CacheDir) {
		return fmt.Errorf("paths.output_dir and paths.cache_dir share the same path %q", out)
	}
	return nil
}
