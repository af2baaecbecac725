// Package docstring rewrites docstrings for documentation output: the
// signature field is turned into per-parameter type fields and removed.
package docstring

import (
	"strings"

	"genstub/internal/core/errors"
	"genstub/internal/engine/signature"
)

type Kind string

const (
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindException Kind = "exception"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
)

func (k Kind) isClass() bool {
	return k == KindClass || k == KindException
}

var sigMarker = ":" + signature.FieldName + ":"

// Context holds the alias table of a documentation run.
type Context struct {
	aliases map[string]string
}

func NewContext() *Context {
	return &Context{aliases: make(map[string]string)}
}

// LoadAliases adds the alias definitions found in a module's source.
func (c *Context) LoadAliases(source []byte) error {
	aliases, err := signature.ParseAliases(strings.Split(string(source), "\n"))
	if err != nil {
		return err
	}
	for _, a := range aliases {
		c.aliases[a.Name] = a.Signature
	}
	return nil
}

// Alias returns the definition of a known alias.
func (c *Context) Alias(name string) (string, bool) {
	sig, ok := c.aliases[name]
	return sig, ok
}

type ProcessRequest struct {
	What Kind
	// ParamNames are the formal parameter names in declaration order.
	ParamNames []string
	Lines      []string
	// InitDocstring is the initializer docstring of a class, used when the
	// class docstring has no signature of its own.
	InitDocstring string
}

// Process returns the rewritten docstring lines. Lines without a signature
// are returned unchanged.
func (c *Context) Process(req ProcessRequest) ([]string, error) {
	lines := append([]string(nil), req.Lines...)

	sig, found, err := signature.Extract(strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}
	if !found {
		if !req.What.isClass() {
			return lines, nil
		}
		initLines, ok := signatureTail(req.InitDocstring)
		if !ok {
			return lines, nil
		}
		lines = append(lines, initLines...)
		if sig, found, err = signature.Extract(strings.Join(lines, "\n")); err != nil || !found {
			return lines, err
		}
	}

	parsed, err := signature.Parse(sig)
	if err != nil {
		return nil, err
	}
	if !parsed.Callable {
		return nil, errors.MalformedSignature(sig, "callable signature needs a parameter list")
	}

	names := req.ParamNames
	if len(names) > 0 && (names[0] == "self" || names[0] == "cls") && (req.What.isClass() || req.What == KindMethod) {
		names = names[1:]
	}

	// Types are inserted only when every parameter can be matched.
	if len(names) == len(parsed.Params) {
		for i, name := range names {
			typ := parsed.Params[i]
			if def, ok := c.aliases[typ]; ok {
				typ = "*" + typ + "* :sup:`" + def + "`"
			}
			lines = insertBefore(lines, []string{":param " + name + ":"}, ":type "+name+": "+typ)
		}
	}
	if !req.What.isClass() {
		lines = insertBefore(lines, []string{":return:", ":returns:"}, ":rtype: "+parsed.Return)
	}
	return removeSignature(lines), nil
}

// signatureTail returns the lines of a docstring starting at its signature
// field.
func signatureTail(doc string) ([]string, bool) {
	lines := strings.Split(signature.CleanDocstring(doc), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " "), sigMarker) {
			return lines[i:], true
		}
	}
	return nil, false
}

func insertBefore(lines []string, prefixes []string, line string) []string {
	for i, l := range lines {
		for _, p := range prefixes {
			if strings.HasPrefix(l, p) {
				out := make([]string, 0, len(lines)+1)
				out = append(out, lines[:i]...)
				out = append(out, line)
				return append(out, lines[i:]...)
			}
		}
	}
	return lines
}

// removeSignature drops the signature field and its indented continuation
// lines.
func removeSignature(lines []string) []string {
	start := 0
	for start < len(lines) && !strings.HasPrefix(lines[start], sigMarker) {
		start++
	}
	if start == len(lines) {
		return lines
	}
	end := start + 1
	for end < len(lines) && lines[end] != "" && lines[end][0] == ' ' {
		end++
	}
	return append(lines[:start:start], lines[end:]...)
}
