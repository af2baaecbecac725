package stub

import (
	"strings"
	"testing"

	"genstub/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indent = "    "

type function struct {
	name       string
	params     []string
	ptypes     []string
	rtype      string
	decorators []string
	noDoc      bool
	body       string
}

// code renders the function as source. A signature is written only when
// rtype is set.
func (f function) code() string {
	var b strings.Builder
	for _, d := range f.decorators {
		b.WriteString(d + "\n")
	}
	b.WriteString("def " + f.name + "(" + strings.Join(f.params, ", ") + "):\n")
	if !f.noDoc {
		b.WriteString(indent + `"""Do foo.` + "\n\n")
		if f.rtype != "" {
			b.WriteString(indent + ":sig: (" + strings.Join(f.ptypes, ", ") + ") -> " + f.rtype + "\n")
		}
		b.WriteString(indent + `"""` + "\n")
	}
	body := f.body
	if body == "" {
		body = "pass"
	}
	b.WriteString(indent + body + "\n")
	return b.String()
}

type class struct {
	name      string
	bases     []string
	sig       string
	methods   []function
	classvars []string
}

func (c class) code() string {
	var b strings.Builder
	b.WriteString("class " + c.name)
	if len(c.bases) > 0 {
		b.WriteString("(" + strings.Join(c.bases, ", ") + ")")
	}
	b.WriteString(":\n" + indent + `"""A foo.` + "\n\n")
	if c.sig != "" {
		b.WriteString(indent + ":sig: " + c.sig + "\n")
	}
	b.WriteString(indent + `"""` + "\n")
	for _, v := range c.classvars {
		b.WriteString(indent + v + "\n")
	}
	for _, m := range c.methods {
		for _, line := range strings.Split(strings.TrimRight(m.code(), "\n"), "\n") {
			b.WriteString(indent + line + "\n")
		}
	}
	if len(c.methods) == 0 {
		b.WriteString(indent + "pass\n")
	}
	return b.String()
}

func TestGenerateFunctions(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"no docstring", function{name: "f", noDoc: true}.code(), ""},
		{"no sig", function{name: "f"}.code(), ""},
		{"returns none", function{name: "f", rtype: "None"}.code(), "def f() -> None: ...\n"},
		{"returns builtin", function{name: "f", rtype: "int"}.code(), "def f() -> int: ...\n"},
		{
			"returns from imported",
			"from x import A\n\n\n" + function{name: "f", rtype: "A"}.code(),
			"from x import A\n\ndef f() -> A: ...\n",
		},
		{
			"returns from as imported",
			"from x import A as B\n\n\n" + function{name: "f", rtype: "B"}.code(),
			"from x import A as B\n\ndef f() -> B: ...\n",
		},
		{
			"excludes unused import",
			"from x import A, B\n\n\n" + function{name: "f", rtype: "A"}.code(),
			"from x import A\n\ndef f() -> A: ...\n",
		},
		{
			"returns imported qualified",
			"import x\n\n\n" + function{name: "f", rtype: "x.A"}.code(),
			"import x\n\ndef f() -> x.A: ...\n",
		},
		{
			"returns as imported qualified",
			"import x as y\n\n\n" + function{name: "f", rtype: "y.A"}.code(),
			"import x as y\n\ndef f() -> y.A: ...\n",
		},
		{
			"returns from imported qualified",
			"from x import y\n\n\n" + function{name: "f", rtype: "y.A"}.code(),
			"from x import y\n\ndef f() -> y.A: ...\n",
		},
		{
			"returns relative imported qualified",
			"from . import x\n\n\n" + function{name: "f", rtype: "x.A"}.code(),
			"from . import x\n\ndef f() -> x.A: ...\n",
		},
		{
			"returns unimported qualified",
			function{name: "f", rtype: "x.y.A"}.code(),
			"import x.y\n\ndef f() -> x.y.A: ...\n",
		},
		{
			"returns imported typing",
			"from typing import List\n\n\n" + function{name: "f", rtype: "List"}.code(),
			"from typing import List\n\ndef f() -> List: ...\n",
		},
		{"returns unimported typing", function{name: "f", rtype: "List"}.code(), "from typing import List\n\ndef f() -> List: ...\n"},
		{"returns generic typing", function{name: "f", rtype: "List[str]"}.code(), "from typing import List\n\ndef f() -> List[str]: ...\n"},
		{
			"returns multiple typing",
			function{name: "f", rtype: "Dict[str, Any]"}.code(),
			"from typing import Any, Dict\n\ndef f() -> Dict[str, Any]: ...\n",
		},
		{
			"one param",
			function{name: "f", params: []string{"i"}, ptypes: []string{"int"}, rtype: "None"}.code(),
			"def f(i: int) -> None: ...\n",
		},
		{
			"multiple params",
			function{name: "f", params: []string{"i", "s"}, ptypes: []string{"int", "str"}, rtype: "None"}.code(),
			"def f(i: int, s: str) -> None: ...\n",
		},
		{
			"param type from imported qualified",
			"from x import y\n" + function{name: "f", params: []string{"a"}, ptypes: []string{"y.A"}, rtype: "None"}.code(),
			"from x import y\n\ndef f(a: y.A) -> None: ...\n",
		},
		{
			"param has default",
			function{name: "f", params: []string{"i=0"}, ptypes: []string{"Optional[int]"}, rtype: "None"}.code(),
			"from typing import Optional\n\ndef f(i: Optional[int] = ...) -> None: ...\n",
		},
		{
			"varargs type ignored",
			function{name: "f", params: []string{"i", "*args"}, ptypes: []string{"int"}, rtype: "None"}.code(),
			"def f(i: int, *args) -> None: ...\n",
		},
		{
			"kwargs type ignored",
			function{name: "f", params: []string{"i", "**kwargs"}, ptypes: []string{"int"}, rtype: "None"}.code(),
			"def f(i: int, **kwargs) -> None: ...\n",
		},
		{
			"varargs and kwargs",
			function{name: "f", params: []string{"i", "*args", "**kwargs"}, ptypes: []string{"int"}, rtype: "None"}.code(),
			"def f(i: int, *args, **kwargs) -> None: ...\n",
		},
		{
			"kwonly args",
			function{name: "f", params: []string{"i", "*", "j"}, ptypes: []string{"int", "int"}, rtype: "None"}.code(),
			"def f(i: int, *, j: int) -> None: ...\n",
		},
		{
			"kwonly args with default",
			function{name: "f", params: []string{"i", "*", "j=0"}, ptypes: []string{"int", "Optional[int]"}, rtype: "None"}.code(),
			"from typing import Optional\n\ndef f(i: int, *, j: Optional[int] = ...) -> None: ...\n",
		},
		{
			"kwonly after varargs",
			function{name: "f", params: []string{"*args", "k=1", "**kw"}, ptypes: []string{"int"}, rtype: "None"}.code(),
			"def f(*args, k: int = ..., **kw) -> None: ...\n",
		},
		{
			"unknown decorator ignored",
			function{name: "f", rtype: "None", decorators: []string{"@foo"}}.code(),
			"def f() -> None: ...\n",
		},
		{
			"unknown callable decorator ignored",
			function{name: "f", rtype: "None", decorators: []string{"@foo()"}}.code(),
			"def f() -> None: ...\n",
		},
		{
			"function without sig excluded",
			function{name: "f", rtype: "None"}.code() + "\n\n" + function{name: "g", noDoc: true}.code(),
			"def f() -> None: ...\n",
		},
		{
			"async function",
			"async def f():\n    \"\"\":sig: () -> None\"\"\"\n",
			"async def f() -> None: ...\n",
		},
		{
			"typing import comes first",
			"from x import A\n\n\n" + function{name: "f", params: []string{"a", "l"}, ptypes: []string{"A", "List"}, rtype: "None"}.code(),
			"from typing import List\n\nfrom x import A\n\ndef f(a: A, l: List) -> None: ...\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate([]byte(tt.code), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateClasses(t *testing.T) {
	self := []string{"self"}
	tests := []struct {
		name string
		code string
		want string
	}{
		{"empty class", class{name: "C"}.code(), "class C: ...\n"},
		{
			"method includes self",
			class{name: "C", methods: []function{{name: "m", params: self, rtype: "None"}}}.code(),
			"class C:\n    def m(self) -> None: ...\n",
		},
		{
			"method params",
			class{name: "C", methods: []function{{name: "m", params: []string{"self", "i"}, ptypes: []string{"int"}, rtype: "None"}}}.code(),
			"class C:\n    def m(self, i: int) -> None: ...\n",
		},
		{"builtin base", class{name: "C", bases: []string{"dict"}}.code(), "class C(dict): ...\n"},
		{
			"base from imported",
			"from x import A\n\n\n" + class{name: "C", bases: []string{"A"}}.code(),
			"from x import A\n\nclass C(A): ...\n",
		},
		{
			"base imported qualified",
			"import x\n\n\n" + class{name: "C", bases: []string{"x.A"}}.code(),
			"import x\n\nclass C(x.A): ...\n",
		},
		{
			"base unimported qualified",
			class{name: "C", bases: []string{"x.y.A"}}.code(),
			"import x.y\n\nclass C(x.y.A): ...\n",
		},
		{
			"base relative imported qualified",
			"from . import x\n\n\n" + class{name: "C", bases: []string{"x.A"}}.code(),
			"from . import x\n\nclass C(x.A): ...\n",
		},
		{
			"class sig moved to init",
			class{name: "C", sig: "(str) -> int", methods: []function{{name: "__init__", params: []string{"self", "x"}}}}.code(),
			"class C:\n    def __init__(self, x: str) -> int: ...\n",
		},
		{
			"class sig does not overwrite init sig",
			class{name: "C", sig: "(str) -> int", methods: []function{{name: "__init__", params: []string{"self", "x"}, ptypes: []string{"int"}, rtype: "None"}}}.code(),
			"class C:\n    def __init__(self, x: int) -> None: ...\n",
		},
		{
			"unknown method decorator ignored",
			class{name: "C", methods: []function{{name: "m", params: self, rtype: "None", decorators: []string{"@foo()"}}}}.code(),
			"class C:\n    def m(self) -> None: ...\n",
		},
		{
			"staticmethod",
			class{name: "C", methods: []function{{name: "m", rtype: "None", decorators: []string{"@staticmethod"}}}}.code(),
			"class C:\n    @staticmethod\n    def m() -> None: ...\n",
		},
		{
			"classmethod",
			class{name: "C", methods: []function{{name: "m", params: []string{"cls"}, rtype: "None", decorators: []string{"@classmethod"}}}}.code(),
			"class C:\n    @classmethod\n    def m(cls) -> None: ...\n",
		},
		{
			"property",
			class{name: "C", methods: []function{{name: "m", params: self, rtype: "None", decorators: []string{"@property"}}}}.code(),
			"class C:\n    @property\n    def m(self) -> None: ...\n",
		},
		{
			"property setter",
			class{name: "C", methods: []function{{name: "m", params: self, rtype: "None", decorators: []string{"@x.setter"}}}}.code(),
			"class C:\n    @x.setter\n    def m(self) -> None: ...\n",
		},
		{
			"class variable",
			class{name: "C", classvars: []string{"a = 42  # sig: int"}}.code(),
			"class C:\n    a = ...  # type: int\n",
		},
		{
			"instance variable",
			class{name: "C", methods: []function{{name: "m", params: self, rtype: "None", body: "self.a = 42  # sig: int"}}}.code(),
			"class C:\n    a = ...  # type: int\n    def m(self) -> None: ...\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate([]byte(tt.code), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateVariables(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"builtin", "n = 42  # sig: int\n", "n = ...  # type: int\n"},
		{"from imported", "from x import A\n\nn = 42  # sig: A\n", "from x import A\n\nn = ...  # type: A\n"},
		{"imported qualified", "import x\n\nn = 42  # sig: x.A\n", "import x\n\nn = ...  # type: x.A\n"},
		{"aliased namespace", "import numpy as np\n\na = None  # sig: np.ndarray\n", "import numpy as np\n\na = ...  # type: np.ndarray\n"},
		{"relative qualified", "from . import x\n\nn = 42  # sig: x.A\n", "from . import x\n\nn = ...  # type: x.A\n"},
		{"unimported qualified", "n = 42  # sig: x.y.A\n", "import x.y\n\nn = ...  # type: x.y.A\n"},
		{"alias comment", "# sigalias: B = int\n\nn = 42  # sig: B\n", "B = int\n\nn = ...  # type: B\n"},
		{"marker in string", "s = \"# sig: int\"\n", ""},
		{"unicode name", "from x import Größe\n\nn = 42  # sig: Größe\n", "from x import Größe\n\nn = ...  # type: Größe\n"},
		{"arrow in literal", "n = 42  # sig: Literal['->']\n", "from typing import Literal\n\nn = ...  # type: Literal['->']\n"},
		{"empty tuple", "n = ()  # sig: Tuple[()]\n", "from typing import Tuple\n\nn = ...  # type: Tuple[()]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate([]byte(tt.code), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSectionOrder(t *testing.T) {
	code := `# sigalias: Num = Union[int, float]
import os
from x import A

def f(a, p, l):
    """:sig: (A, os.PathLike, List[Num]) -> None"""
`
	want := "from typing import List, Union\n\n" +
		"from x import A\n\n" +
		"import os\n\n" +
		"Num = Union[int, float]\n\n" +
		"def f(a: A, p: os.PathLike, l: List[Num]) -> None: ...\n"

	got, err := Generate([]byte(code), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDeclarationSpacing(t *testing.T) {
	code := `n = 1  # sig: int

def f():
    """:sig: () -> None"""

class A:
    """A."""

class B:
    """B."""

class C:
    """C."""
    x = 1  # sig: int

def g():
    """:sig: () -> None"""
`
	want := "n = ...  # type: int\n\n" +
		"def f() -> None: ...\n\n" +
		"class A: ...\n" +
		"class B: ...\n\n" +
		"class C:\n" +
		"    x = ...  # type: int\n\n" +
		"def g() -> None: ...\n"

	got, err := Generate([]byte(code), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPrototypeWrapping(t *testing.T) {
	params := []string{"a1", "a2", "a3"}
	types := []string{"Dict[str, Any]", "Dict[str, Any]", "Dict[str, Any]"}
	code := function{name: "some_long_function_name", params: params, ptypes: types, rtype: "None"}.code()

	got, err := Generate([]byte(code), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "from typing import Any, Dict\n\n"+
		"def some_long_function_name(\n"+
		"    a1: Dict[str, Any], a2: Dict[str, Any], a3: Dict[str, Any]\n"+
		") -> None: ...\n", got)

	params = append(params, "a4", "a5")
	types = append(types, "Dict[str, Any]", "Dict[str, Any]")
	code = function{name: "some_long_function_name", params: params, ptypes: types, rtype: "None"}.code()

	got, err = Generate([]byte(code), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "from typing import Any, Dict\n\n"+
		"def some_long_function_name(\n"+
		"    a1: Dict[str, Any],\n"+
		"    a2: Dict[str, Any],\n"+
		"    a3: Dict[str, Any],\n"+
		"    a4: Dict[str, Any],\n"+
		"    a5: Dict[str, Any],\n"+
		") -> None: ...\n", got)
}

func TestTypingImportWrapping(t *testing.T) {
	opts := Options{LineLength: 30, Indent: 2}
	got, err := Generate([]byte("x = 1  # sig: Dict[Any, List[int]]\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, "from typing import (\n  Any,\n  Dict,\n  List,\n)\n\nx = ...  # type: Dict[Any, List[int]]\n", got)
}

func TestPermissive(t *testing.T) {
	opts := DefaultOptions()
	opts.Permissive = true
	got, err := Generate([]byte("def f(a, b=1):\n    pass\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, "from typing import Any\n\ndef f(a: Any, b: Any = ...) -> Any: ...\n", got)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want errors.ErrorCode
	}{
		{"unknown return type", function{name: "f", rtype: "Foo"}.code(), errors.CodeUnresolvedTypes},
		{"unknown param type", function{name: "f", params: []string{"i"}, ptypes: []string{"Foo"}, rtype: "None"}.code(), errors.CodeUnresolvedTypes},
		{"missing types", function{name: "f", params: []string{"i", "j"}, ptypes: []string{"int"}, rtype: "None"}.code(), errors.CodeArityMismatch},
		{"extra types", function{name: "f", params: []string{"i"}, ptypes: []string{"int", "int"}, rtype: "None"}.code(), errors.CodeArityMismatch},
		{"malformed signature", function{name: "f", rtype: "List[int"}.code(), errors.CodeMalformedSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate([]byte(tt.code), DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.want), "unexpected error: %v", err)
			assert.Empty(t, got)
		})
	}

	_, err := Generate([]byte(function{name: "f", rtype: "Foo"}.code()), DefaultOptions())
	assert.Contains(t, err.Error(), "unknown types: Foo")
}
