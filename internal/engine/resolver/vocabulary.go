package resolver

import (
	_ "embed"
	"strings"
)

//go:embed vocab/builtins.txt
var builtinsData string

//go:embed vocab/typing.txt
var typingData string

var builtinTypes = map[string]bool{}
var typingNames = map[string]bool{}

func init() {
	registerNames(builtinTypes, builtinsData)
	registerNames(typingNames, typingData)
}

func registerNames(target map[string]bool, data string) {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			target[line] = true
		}
	}
}

// IsBuiltin reports whether name needs no import at all.
func IsBuiltin(name string) bool {
	return builtinTypes[name]
}

// InTyping reports whether name is exported by the typing module.
func InTyping(name string) bool {
	return typingNames[name]
}
