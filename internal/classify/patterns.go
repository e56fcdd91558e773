package classify

import (
	"fmt"
	"regexp"

	"github.com/scan-io-git/dfaudit/pkg/shared/config"
)

// Definition is an uncompiled classification rule.
type Definition struct {
	Name        string
	Expr        string
	IgnoreCase  bool
	Description string
}

// Pattern is a compiled classification rule.
type Pattern struct {
	Name        string
	Description string
	re          *regexp.Regexp
}

// Match reports whether the pattern occurs anywhere in content.
func (p Pattern) Match(content string) bool {
	return p.re.MatchString(content)
}

// Table is an ordered set of patterns. Tags are reported in table order.
type Table []Pattern

// DefaultDefinitions returns the built-in pattern table.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "python_poetry", Expr: `poetry (install|lock)`, Description: "Installs Python dependencies with Poetry"},
		{Name: "python_uvicorn", Expr: `uvicorn`, Description: "Serves a Python ASGI app with uvicorn"},
		{Name: "multi_stage", Expr: `(?m)^FROM .* AS `, Description: "Declares a named build stage"},
		{Name: "cuda", Expr: `nvidia|cuda`, IgnoreCase: true, Description: "Uses an NVIDIA or CUDA image or toolkit"},
		{Name: "rust_cargo", Expr: `cargo build`, Description: "Builds a Rust crate with Cargo"},
		{Name: "node_react", Expr: `npm (ci|install)|yarn`, Description: "Installs Node.js dependencies with npm or yarn"},
		{Name: "dotnet", Expr: `dotnet (build|restore)`, Description: "Builds or restores a .NET project"},
	}
}

// DefinitionsFromConfig converts configured patterns. An empty list yields the built-in table.
func DefinitionsFromConfig(patterns []config.Pattern) []Definition {
	if len(patterns) == 0 {
		return DefaultDefinitions()
	}
	defs := make([]Definition, 0, len(patterns))
	for _, p := range patterns {
		defs = append(defs, Definition{Name: p.Name, Expr: p.Expr, IgnoreCase: p.IgnoreCase})
	}
	return defs
}

// Compile builds a Table. Names must be unique and non-empty.
func Compile(defs []Definition) (Table, error) {
	table := make(Table, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("pattern with expression %q has no name", d.Expr)
		}
		if _, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("pattern %q is declared more than once", d.Name)
		}
		seen[d.Name] = struct{}{}

		expr := d.Expr
		if d.IgnoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", d.Name, err)
		}
		table = append(table, Pattern{Name: d.Name, Description: d.Description, re: re})
	}
	return table, nil
}

// Names returns pattern names in table order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for _, p := range t {
		names = append(names, p.Name)
	}
	return names
}

// Tags returns the names of every pattern found in content, in table order.
func (t Table) Tags(content string) []string {
	tags := []string{}
	for _, p := range t {
		if p.Match(content) {
			tags = append(tags, p.Name)
		}
	}
	return tags
}
