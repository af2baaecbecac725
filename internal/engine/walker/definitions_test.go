package walker

import (
	"reflect"
	"testing"
)

func TestDefinitions(t *testing.T) {
	code := `
def f(a, *args, b=1, **kw):
    """Do foo."""

class C:
    """A foo."""

    @staticmethod
    def __init__(self, x, /, y):
        """Init.

        :sig: (int, str) -> None
        """

    def m(self):
        pass
`
	defs, err := Definitions([]byte(code))
	if err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, d := range defs {
		names = append(names, d.Name)
	}
	if want := []string{"f", "C", "C.__init__", "C.m"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected definitions: %v", names)
	}

	if want := []string{"a", "args", "b", "kw"}; !reflect.DeepEqual(defs[0].Params, want) {
		t.Errorf("unexpected params: %v", defs[0].Params)
	}
	if defs[0].Docstring != "Do foo." {
		t.Errorf("unexpected docstring: %q", defs[0].Docstring)
	}

	class := defs[1]
	if !class.Class || class.Line != 5 {
		t.Errorf("unexpected class definition: %+v", class)
	}
	if want := []string{"self", "x", "y"}; !reflect.DeepEqual(class.Params, want) {
		t.Errorf("unexpected initializer params: %v", class.Params)
	}
	if class.InitDocstring == "" {
		t.Error("expected initializer docstring")
	}
}
