package gen

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"text/template"

	"golang.org/x/tools/imports"

	"parsegen/internal/plan"
	"parsegen/internal/schema"
)

// DefaultFilename is the name of the generated file.
const DefaultFilename = "parsegen_gen.go"

// ErrEmptyPlan is returned when a plan has no types to generate.
var ErrEmptyPlan = errors.New("plan has no types to generate")

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName overrides the package name of the plan.
	PackageName string
	// OutputDir is the directory the file is written to. It is also used to
	// resolve imports while formatting.
	OutputDir string
	// Filename is the name of the generated file.
	Filename string
	// GenerateComments enables comments explaining each field binding.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		OutputDir:        ".",
		Filename:         DefaultFilename,
		GenerateComments: false,
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for generation progress.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// Generator generates Go code from a resolved plan.
type Generator struct {
	config GeneratorConfig
	logger *slog.Logger
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig, opts ...Option) *Generator {
	if config.Filename == "" {
		config.Filename = DefaultFilename
	}

	g := &Generator{config: config, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "parsegen_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// fileData holds all data needed for the file template.
type fileData struct {
	Package string
	Imports []string
	Types   []*typeData
}

// Generate generates the parser file for every type of the plan.
func (g *Generator) Generate(p *plan.Plan) (*GeneratedFile, error) {
	if p == nil || len(p.Types) == 0 {
		return nil, ErrEmptyPlan
	}

	data := &fileData{
		Package: p.Package,
		Imports: append([]string{schema.ParsekitPath}, p.Imports()...),
	}

	if g.config.PackageName != "" {
		data.Package = g.config.PackageName
	}

	slices.Sort(data.Imports)
	data.Imports = slices.Compact(data.Imports)

	for _, t := range p.Types {
		td, err := g.buildTypeData(t)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", t.Name, err)
		}

		g.logger.Debug("generated parser", "type", t.Name, "func", td.Func)
		data.Types = append(data.Types, td)
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	path := filepath.Join(g.config.OutputDir, g.config.Filename)

	formatted, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		if g.config.OutputDir != "" {
			if derr := writeDebugUnformatted(g.config.OutputDir, g.config.Filename, buf.Bytes()); derr != nil {
				g.logger.Warn("could not write unformatted sidecar", "error", derr)
			}
		}

		return &GeneratedFile{
			Filename: g.config.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: g.config.Filename,
		Content:  formatted,
	}, nil
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by parsegen. DO NOT EDIT.

package {{.Package}}

import (
{{range .Imports}}	"{{.}}"
{{end}})

var parsegenPatterns parsekit.Cache
{{range .Types}}
{{if .Union}}{{template "union" .}}{{else}}{{template "record" .}}{{end}}{{end}}
{{define "record"}}const {{.Const}} = {{.Literal}}

// {{.Func}} parses a {{.Name}} from s.
func {{.Func}}(s string) ({{.Name}}, error) {
{{- if .ZeroVar}}
	var zero {{.Name}}
{{end}}
	{{if .UsesMatch}}ex{{else}}_{{end}}, err := parsegenPatterns.Match({{.Const}}, s)
	if err != nil {
		return {{.Zero}}, parsekit.Fail("{{.Name}}", "", err)
	}
{{.Body}}

	return {{.Result}}, nil
}
{{end}}
{{define "union"}}const (
{{range .Variants}}	{{.Const}} = {{.Literal}}
{{end}})

var {{.SetVar}} = parsekit.NewSet(&parsegenPatterns,
{{range .Variants}}	{{.Const}},
{{end}})

// {{.Func}} parses a {{.Name}} from s. Variants are tried in declaration
// order and the first one whose pattern matches is built.
func {{.Func}}(s string) ({{.Name}}, error) {
	i, err := {{.SetVar}}.First(s)
	if err != nil {
		return nil, parsekit.Fail("{{.Name}}", "", err)
	}

	switch i {
{{range $i, $v := .Variants}}	case {{$i}}:
		return {{if $v.Unit}}{{$v.Result}}, nil{{else}}{{$v.Func}}(s){{end}}
{{end}}	}

	return nil, parsekit.Fail("{{.Name}}", "", parsekit.ErrNoMatch)
}
{{range .Variants}}{{if not .Unit}}
func {{.Func}}(s string) ({{$.Name}}, error) {
	{{if .UsesMatch}}ex{{else}}_{{end}}, err := parsegenPatterns.Match({{.Const}}, s)
	if err != nil {
		return nil, parsekit.Fail("{{$.Name}}", "{{.Name}}", err)
	}
{{.Body}}

	return {{.Result}}, nil
}
{{end}}{{end}}{{end}}`))
