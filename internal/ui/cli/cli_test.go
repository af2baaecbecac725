package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"genstub/internal/core/ports"

	"gopkg.in/yaml.v3"
)

const signedSource = `class Greeter:
    def greet(self, name):
        """Say hello.

        :sig: (str) -> str
        :param name: Who to greet.
        :return: The greeting.
        """
        return "hello " + name


def f(a):
    """Do foo.

    :sig: (int) -> str
    :param a: A number.
    :return: Its text.
    """
    return str(a)
`

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if out != "genstub "+versionString+"\n" {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestHelpExitsCleanly(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, "genstub") {
		t.Errorf("expected usage on stdout, got %q", out)
	}
}

func TestUnknownFlag(t *testing.T) {
	code, _, _ := runCLI(t, "version", "--bogus")
	if code == 0 {
		t.Error("expected non-zero exit code for unknown flag")
	}
}

func TestTreeCommand(t *testing.T) {
	path := writeSource(t, t.TempDir(), "mod.py", signedSource)
	code, out, errOut := runCLI(t, "tree", path)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, errOut)
	}
	for _, want := range []string{"mod.py", "class Greeter", "def greet(", "def f("} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in tree output:\n%s", want, out)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	path := writeSource(t, t.TempDir(), "mod.py", signedSource)
	code, out, errOut := runCLI(t, "inspect", path)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, errOut)
	}

	var report struct {
		Source string `yaml:"source"`
		Stub   string `yaml:"stub"`
	}
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("inspect output is not YAML: %v\n%s", err, out)
	}
	if report.Source != path {
		t.Errorf("expected source %q, got %q", path, report.Source)
	}
	if !strings.Contains(report.Stub, "def f(a: int) -> str: ...") {
		t.Errorf("unexpected stub in report:\n%s", report.Stub)
	}
}

func TestDocstringCommand(t *testing.T) {
	path := writeSource(t, t.TempDir(), "mod.py", signedSource)
	code, out, errOut := runCLI(t, "docstring", path)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, errOut)
	}
	for _, want := range []string{"function f (line 12)", ":type a: int", ":rtype: str", "method Greeter.greet", ":type name: str"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in docstring output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "class Greeter") {
		t.Errorf("undocumented class should be skipped:\n%s", out)
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSource(t, dir, "good.py", signedSource)

	code, out, errOut := runCLI(t, "good.py", "--no-cache")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "1 generated") {
		t.Errorf("unexpected summary %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "good.pyi"))
	if err != nil {
		t.Fatalf("expected stub file: %v", err)
	}
	if !strings.HasPrefix(string(data), "# THIS FILE IS AUTOMATICALLY GENERATED") {
		t.Errorf("expected header in stub:\n%s", data)
	}
}

func TestGenerateFailingUnit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSource(t, dir, "bad.py", strings.Replace(signedSource, "(int) -> str", "(int) -> Unknown", 1))

	code, out, _ := runCLI(t, "generate", "--no-cache", "bad.py")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out, "1 failed") || !strings.Contains(out, "bad.py") {
		t.Errorf("expected failure in summary, got %q", out)
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeSource(t, dir, "genstub.toml", "version = 1\n[stub]\nline_length = 5\n")
	src := writeSource(t, dir, "mod.py", signedSource)

	code, _, errOut := runCLI(t, "--config", cfgPath, "generate", src)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut, "line_length") {
		t.Errorf("expected validation error, got %q", errOut)
	}
}

func TestFormatSummary(t *testing.T) {
	out := formatSummary(ports.RunSummary{
		RunID:     "0123456789abcdef",
		Generated: 2,
		Unchanged: 1,
		Failed:    1,
		Failures:  []ports.UnitFailure{{Source: "pkg/mod.py", Error: "unknown type"}},
		Duration:  1500 * time.Microsecond,
	})
	for _, want := range []string{"run 01234567", "2 generated, 1 unchanged, 0 skipped", "1 failed", "pkg/mod.py - unknown type"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}
