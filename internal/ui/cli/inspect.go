package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"genstub/internal/engine/docstring"
	"genstub/internal/engine/resolver"
	"genstub/internal/engine/signature"
	"genstub/internal/engine/stub"
	"genstub/internal/engine/stubtree"
	"genstub/internal/engine/walker"

	"github.com/ddddddO/gtree"
	"gopkg.in/yaml.v3"
)

type TreeCmd struct {
	Permissive bool   `aliases:"generic" help:"Include unsigned functions and untyped variables."`
	File       string `arg:"" help:"Source file."`
}

func (c *TreeCmd) Run(rt *runtime) error {
	source, err := readSource(c.File)
	if err != nil {
		return err
	}
	res, _, err := stub.Analyze(source, stub.Options{Permissive: c.Permissive})
	if err != nil {
		return err
	}
	return renderTree(rt.stdout, filepath.Base(c.File), res.Tree)
}

func renderTree(w io.Writer, name string, tree *stubtree.Tree) error {
	root := gtree.NewRoot(name)
	addDeclarations(root, tree, stubtree.Root)
	return gtree.OutputFromRoot(w, root)
}

func addDeclarations(parent *gtree.Node, tree *stubtree.Tree, id stubtree.NodeID) {
	for _, v := range tree.Variables(id) {
		n := tree.Node(v)
		parent.Add(n.Name + ": " + n.Type)
	}
	for _, c := range tree.Children(id) {
		n := tree.Node(c)
		switch n.Kind {
		case stubtree.KindCallable:
			parent.Add(callableLabel(n))
		case stubtree.KindTypeDef:
			label := "class " + n.Name
			if len(n.Bases) > 0 {
				label += "(" + strings.Join(n.Bases, ", ") + ")"
			}
			addDeclarations(parent.Add(label), tree, c)
		}
	}
}

func callableLabel(n *stubtree.Node) string {
	var b strings.Builder
	for _, d := range n.Decorators {
		b.WriteString("@" + d + " ")
	}
	if n.Async {
		b.WriteString("async ")
	}
	params := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, stub.ParamDecl(p))
	}
	fmt.Fprintf(&b, "def %s(%s) -> %s", n.Name, strings.Join(params, ", "), n.ReturnType)
	return b.String()
}

type InspectCmd struct {
	Permissive bool   `aliases:"generic" help:"Include unsigned functions and untyped variables."`
	File       string `arg:"" help:"Source file."`
}

type inspectReport struct {
	Source     string            `yaml:"source"`
	Required   []string          `yaml:"required"`
	Defined    []string          `yaml:"defined,omitempty"`
	Aliases    map[string]string `yaml:"aliases,omitempty"`
	Resolution resolver.Report   `yaml:"resolution"`
	Stub       string            `yaml:"stub"`
}

func (c *InspectCmd) Run(rt *runtime) error {
	source, err := readSource(c.File)
	if err != nil {
		return err
	}
	opts := stub.DefaultOptions()
	opts.Permissive = c.Permissive
	res, rep, err := stub.Analyze(source, opts)
	if err != nil {
		return err
	}

	report := inspectReport{
		Source:     c.File,
		Required:   sortedNames(res.RequiredTypes),
		Defined:    sortedNames(res.DefinedTypes),
		Resolution: rep,
		Stub:       stub.Render(res, rep, opts),
	}
	if len(res.Aliases) > 0 {
		report.Aliases = make(map[string]string, len(res.Aliases))
		for _, a := range res.Aliases {
			report.Aliases[a.Name] = a.Signature
		}
	}

	enc := yaml.NewEncoder(rt.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type DocstringCmd struct {
	File string `arg:"" help:"Source file."`
}

func (c *DocstringCmd) Run(rt *runtime) error {
	source, err := readSource(c.File)
	if err != nil {
		return err
	}
	defs, err := walker.Definitions(source)
	if err != nil {
		return err
	}

	dctx := docstring.NewContext()
	if err := dctx.LoadAliases(source); err != nil {
		return err
	}

	classes := make(map[string]bool)
	for _, def := range defs {
		if def.Class {
			classes[def.Name] = true
		}
	}

	printed := 0
	for _, def := range defs {
		if strings.TrimSpace(def.Docstring) == "" && strings.TrimSpace(def.InitDocstring) == "" {
			continue
		}
		kind := definitionKind(def, classes)
		lines := strings.Split(signature.CleanDocstring(def.Docstring), "\n")
		out, err := dctx.Process(docstring.ProcessRequest{
			What:          kind,
			ParamNames:    def.Params,
			Lines:         lines,
			InitDocstring: def.InitDocstring,
		})
		if err != nil {
			return fmt.Errorf("%s (line %d): %w", def.Name, def.Line, err)
		}
		if printed > 0 {
			fmt.Fprintln(rt.stdout)
		}
		printed++
		fmt.Fprintf(rt.stdout, "%s %s (line %d)\n", kind, def.Name, def.Line)
		for _, line := range out {
			if line == "" {
				fmt.Fprintln(rt.stdout)
				continue
			}
			fmt.Fprintln(rt.stdout, "    "+line)
		}
	}
	return nil
}

func definitionKind(def walker.Definition, classes map[string]bool) docstring.Kind {
	if def.Class {
		return docstring.KindClass
	}
	if dot := strings.LastIndex(def.Name, "."); dot > 0 && classes[def.Name[:dot]] {
		return docstring.KindMethod
	}
	return docstring.KindFunction
}
