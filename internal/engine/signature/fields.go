package signature

import (
	"strings"

	"genstub/internal/core/errors"

	"github.com/lithammer/dedent"
)

const (
	// FieldName is the reST field holding a callable or class signature.
	FieldName = "sig"
	// CommentMarker introduces a variable type in a trailing comment.
	CommentMarker = "# sig:"
	// AliasMarker introduces a type alias definition in a comment line.
	AliasMarker = "# sigalias:"
)

// Alias is a `# sigalias: Name = signature` definition.
type Alias struct {
	Name      string
	Signature string
}

// CleanDocstring normalizes a docstring the way Python's inspect.cleandoc
// does: the first line is stripped, the rest dedented, and leading and
// trailing blank lines dropped.
func CleanDocstring(doc string) string {
	doc = strings.ReplaceAll(doc, "\t", "        ")
	first, rest, _ := strings.Cut(doc, "\n")
	lines := []string{strings.TrimSpace(first)}
	if rest != "" {
		for _, line := range strings.Split(dedent.Dedent(rest), "\n") {
			lines = append(lines, strings.TrimRight(line, " "))
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Extract returns the body of the `:sig:` field of a docstring. The second
// result is false when there is no such field. More than one field is an
// error.
func Extract(docstring string) (string, bool, error) {
	lines := strings.Split(CleanDocstring(docstring), "\n")
	marker := ":" + FieldName + ":"

	var found []string
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], marker) {
			continue
		}
		body := []string{strings.TrimSpace(strings.TrimPrefix(lines[i], marker))}
		for i+1 < len(lines) && isContinuation(lines[i+1]) {
			i++
			body = append(body, strings.TrimSpace(lines[i]))
		}
		found = append(found, strings.TrimSpace(strings.Join(body, "\n")))
	}

	switch len(found) {
	case 0:
		return "", false, nil
	case 1:
		return found[0], true, nil
	default:
		return "", false, errors.MalformedSignature(found[0], "multiple "+marker+" fields in docstring")
	}
}

func isContinuation(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// CommentPayload returns the text following the signature comment marker
// in a source line, and the byte offset of the marker.
func CommentPayload(line string) (payload string, offset int, ok bool) {
	offset = strings.Index(line, CommentMarker)
	if offset < 0 {
		return "", -1, false
	}
	return strings.TrimSpace(line[offset+len(CommentMarker):]), offset, true
}

// ParseAliases collects alias definitions from raw source lines in
// declaration order. A redefined alias keeps its first position.
func ParseAliases(lines []string) ([]Alias, error) {
	var aliases []Alias
	index := make(map[string]int)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, AliasMarker) {
			continue
		}
		content := strings.TrimPrefix(line, AliasMarker)
		name, sig, ok := strings.Cut(content, "=")
		name, sig = strings.TrimSpace(name), strings.TrimSpace(sig)
		if !ok || name == "" || sig == "" {
			return nil, errors.MalformedSignature(content, "alias must have the form 'name = signature'")
		}
		if i, seen := index[name]; seen {
			aliases[i].Signature = sig
			continue
		}
		index[name] = len(aliases)
		aliases = append(aliases, Alias{Name: name, Signature: sig})
	}
	return aliases, nil
}
