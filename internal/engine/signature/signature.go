// Package signature parses the compact type signatures carried by `:sig:`
// docstring fields and `# sig:` comments.
//
// The grammar is
//
//	signature = "(" [ type { "," type } ] ")" "->" type | type
//
// where commas nested in brackets belong to the enclosing type.
package signature

import (
	"sort"
	"strings"

	"genstub/internal/core/errors"
)

const arrow = "->"

// Signature is the result of parsing a signature string.
type Signature struct {
	// Callable is false for bare variable types; Params is then nil.
	Callable bool
	Params   []string
	Return   string
	// Required holds every identifier, dotted ones as a unit, found anywhere
	// in the signature.
	Required map[string]bool
}

// Parse parses a signature string.
func Parse(sig string) (Signature, error) {
	trimmed := strings.TrimSpace(sig)
	if trimmed == "" {
		return Signature{}, errors.MalformedSignature(sig, "empty signature")
	}

	arrows := arrowOffsets(trimmed)
	switch len(arrows) {
	case 0:
	case 1:
		lhs := strings.TrimSpace(trimmed[:arrows[0]])
		if !strings.HasPrefix(lhs, "(") {
			return Signature{}, errors.MalformedSignature(sig, "missing opening parenthesis for parameter types")
		}
		if !strings.HasSuffix(lhs, ")") {
			return Signature{}, errors.MalformedSignature(sig, "missing closing parenthesis for parameter types")
		}
	default:
		return Signature{}, errors.MalformedSignature(sig, "multiple arrows")
	}
	if err := checkBrackets(sig); err != nil {
		return Signature{}, err
	}

	node, err := grammar.ParseString("", trimmed)
	if err != nil {
		return Signature{}, errors.MalformedSignature(sig, "invalid signature: "+err.Error())
	}

	out := Signature{Required: make(map[string]bool)}
	if node.Callable != nil {
		out.Callable = true
		out.Params = make([]string, 0, len(node.Callable.Params))
		for _, p := range node.Callable.Params {
			out.Params = append(out.Params, p.String())
			p.collect(out.Required)
		}
		out.Return = node.Callable.Return.String()
		node.Callable.Return.collect(out.Required)
	} else {
		out.Return = node.Bare.String()
		node.Bare.collect(out.Required)
	}
	return out, nil
}

// String renders the signature in normalized form. Parsing the result
// yields an equal signature.
func (s Signature) String() string {
	if !s.Callable {
		return s.Return
	}
	return "(" + strings.Join(s.Params, ", ") + ") " + arrow + " " + s.Return
}

// RequiredNames returns the required names sorted.
func (s Signature) RequiredNames() []string {
	names := make([]string, 0, len(s.Required))
	for name := range s.Required {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// arrowOffsets returns the byte offsets of the arrows outside string
// literals.
func arrowOffsets(sig string) []int {
	var offsets []int
	var quote byte
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(sig[i:], arrow):
			offsets = append(offsets, i)
			i++
		}
	}
	return offsets
}

// checkBrackets verifies that parentheses and brackets close in order.
func checkBrackets(sig string) error {
	var stack []rune
	var quote rune
	for _, r := range sig {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(', '[':
			stack = append(stack, r)
		case ')', ']':
			open := '('
			if r == ']' {
				open = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return errors.MalformedSignature(sig, "unbalanced "+string(r))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return errors.MalformedSignature(sig, "unclosed "+string(stack[len(stack)-1]))
	}
	return nil
}
