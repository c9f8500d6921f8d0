package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"reflect"

	"golang.org/x/tools/go/packages"

	"parsegen/internal/diagnostic"
	"parsegen/internal/schema"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// TagKey is the struct tag naming a field's capture group ("-" skips it).
const TagKey = "parsegen"

// Package is the schema extracted from one Go package.
type Package struct {
	Schema *schema.Schema
	// Resolver resolves type expressions in the package scope.
	Resolver *Resolver
	// Dir is the directory of the package sources.
	Dir string
	// Diagnostics holds directive and type errors, keyed by type.
	Diagnostics diagnostic.Diagnostics
}

// Analyzer loads Go packages and reads parsegen directives.
type Analyzer struct {
	dir    string
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDir sets the directory packages are loaded from.
func WithDir(dir string) Option {
	return func(a *Analyzer) { a.dir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the specified packages and extracts their schemas.
// Patterns are standard Go package patterns (e.g., "./shapes").
//
// Listing and syntax errors fail the load. Type errors do not: a stale
// generated file must not prevent regenerating it, so they are reported as
// warnings.
func (a *Analyzer) LoadPackages(patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind != packages.TypeError {
				errs = append(errs, e)
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	out := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		out = append(out, a.processPackage(pkg))
	}

	return out, nil
}

// typeDecl is a type declaration with its directives.
type typeDecl struct {
	spec *ast.TypeSpec
	obj  *types.TypeName
	dirs []Directive
}

func (d *typeDecl) directives(name string) []Directive {
	var out []Directive

	for _, dir := range d.dirs {
		if dir.Name == name {
			out = append(out, dir)
		}
	}

	return out
}

// pkgReader builds the schema of one package.
type pkgReader struct {
	pkg    *packages.Package
	res    *Package
	decls  map[string]*typeDecl
	cls    *classifier
	logger *slog.Logger
}

// processPackage extracts parsed types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) *Package {
	res := &Package{
		Schema: &schema.Schema{Package: pkg.Name, PkgPath: pkg.PkgPath},
	}

	if len(pkg.GoFiles) > 0 {
		res.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, e := range pkg.Errors {
		res.Diagnostics.AddWarning("package_type_error", e.Error(), "", "")
	}

	r := &pkgReader{
		pkg:    pkg,
		res:    res,
		decls:  make(map[string]*typeDecl),
		cls:    &classifier{pkg: pkg.Types, generated: make(map[string]bool)},
		logger: a.logger,
	}

	order := r.collectDecls()

	for _, name := range order {
		d := r.decls[name]
		if len(d.directives(DirectivePattern)) > 0 || len(d.directives(DirectiveVariant)) > 0 {
			r.cls.generated[name] = true
		}
	}

	for _, name := range order {
		if !r.cls.generated[name] {
			continue
		}

		t := r.buildType(r.decls[name])
		res.Schema.Types = append(res.Schema.Types, t)

		a.logger.Debug("read type", "package", pkg.PkgPath, "type", t.Name, "shape", t.Shape)
	}

	res.Resolver = &Resolver{
		fset:     pkg.Fset,
		pkg:      pkg.Types,
		files:    pkg.Syntax,
		cls:      r.cls,
		fallback: schema.NewNameResolver(nil),
	}

	return res
}

// collectDecls indexes the package's type declarations and returns their
// names in source order.
func (r *pkgReader) collectDecls() []string {
	var order []string

	for _, file := range r.pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)

				obj, ok := r.pkg.Types.Scope().Lookup(ts.Name.Name).(*types.TypeName)
				if !ok {
					continue
				}

				d := &typeDecl{spec: ts, obj: obj}
				if gd.Lparen.IsValid() {
					d.dirs = Directives(ts.Doc)
				} else {
					d.dirs = Directives(gd.Doc, ts.Doc)
				}

				r.decls[ts.Name.Name] = d
				order = append(order, ts.Name.Name)
			}
		}
	}

	return order
}

func (r *pkgReader) pos(p token.Pos) string {
	if !p.IsValid() {
		return ""
	}

	position := r.pkg.Fset.Position(p)

	return fmt.Sprintf("%s:%d:%d", filepath.Base(position.Filename), position.Line, position.Column)
}

func (r *pkgReader) errorAt(p token.Pos, code, msg, typ, field string) {
	r.res.Diagnostics.Add(diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Code:     code,
		Message:  msg,
		Type:     typ,
		Field:    field,
		Pos:      r.pos(p),
	})
}

func (r *pkgReader) warnAt(p token.Pos, code, msg, typ, field string) {
	r.res.Diagnostics.Add(diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Code:     code,
		Message:  msg,
		Type:     typ,
		Field:    field,
		Pos:      r.pos(p),
	})
}

func (r *pkgReader) buildType(d *typeDecl) *schema.Type {
	name := d.spec.Name.Name
	t := &schema.Type{Name: name, Pos: r.pos(d.spec.Name.Pos())}

	for _, dir := range d.dirs {
		switch dir.Name {
		case DirectivePattern, DirectiveVariant, DirectiveWith:
		default:
			r.warnAt(dir.Pos, "unknown_directive", fmt.Sprintf("unknown directive %s%s", DirectivePrefix, dir.Name), name, "")
		}
	}

	if patterns := d.directives(DirectivePattern); len(patterns) > 0 {
		t.Pattern, t.HasPattern = patterns[0].Arg, true

		for _, extra := range patterns[1:] {
			r.errorAt(extra.Pos, "duplicate_directive", "more than one pattern directive", name, "")
		}
	}

	if iface, ok := d.obj.Type().Underlying().(*types.Interface); ok {
		t.Shape = schema.ShapeUnion
		t.Variants = r.buildVariants(d, iface)

		return t
	}

	if vs := d.directives(DirectiveVariant); len(vs) > 0 {
		r.errorAt(vs[0].Pos, "misplaced_directive", "variant directives belong on an interface type", name, "")
	}

	t.Shape, t.Fields = r.buildFields(d, name)

	return t
}

func (r *pkgReader) buildVariants(d *typeDecl, iface *types.Interface) []*schema.Variant {
	union := d.spec.Name.Name

	var out []*schema.Variant

	for _, dir := range d.directives(DirectiveVariant) {
		spec, err := ParseVariant(dir.Arg)
		if err != nil {
			r.errorAt(dir.Pos, "invalid_directive", err.Error(), union, "")
			continue
		}

		vd, ok := r.decls[spec.Type]
		if !ok {
			r.errorAt(dir.Pos, "unknown_variant",
				fmt.Sprintf("variant type %s is not declared in package %s", spec.Type, r.pkg.Name), union, spec.Type)

			continue
		}

		var impl types.Type = vd.obj.Type()
		if spec.Pointer {
			impl = types.NewPointer(impl)
		}

		if !types.Implements(impl, iface) {
			r.errorAt(dir.Pos, "variant_not_implementing",
				fmt.Sprintf("%s does not implement %s", types.TypeString(impl, r.cls.qualifier), union), union, spec.Type)

			continue
		}

		v := &schema.Variant{
			Name:       spec.Type,
			Pointer:    spec.Pointer,
			Pattern:    spec.Pattern,
			HasPattern: true,
			Pos:        r.pos(dir.Pos),
		}

		if _, nested := vd.obj.Type().Underlying().(*types.Interface); nested {
			v.Shape = schema.ShapeUnion
		} else {
			v.Shape, v.Fields = r.buildFields(vd, union)
		}

		out = append(out, v)
	}

	return out
}

// buildFields reads the shape and fields of a struct or newtype declaration.
// Diagnostics are reported against owner.
func (r *pkgReader) buildFields(d *typeDecl, owner string) (schema.Shape, []*schema.Field) {
	st, ok := d.obj.Type().Underlying().(*types.Struct)
	if !ok {
		return r.buildNewtype(d, owner)
	}

	if with := d.directives(DirectiveWith); len(with) > 0 {
		r.warnAt(with[0].Pos, "misplaced_directive", "with directives on a struct belong on its fields", owner, "")
	}

	astStruct, _ := d.spec.Type.(*ast.StructType)
	if st.NumFields() == 0 || astStruct == nil {
		return schema.ShapeUnit, nil
	}

	var (
		fields []*schema.Field
		index  int
	)

	for _, af := range astStruct.Fields.List {
		n := max(len(af.Names), 1)

		for range n {
			fields = append(fields, r.buildField(st, index, af, owner))
			index++
		}
	}

	return schema.ShapeRecord, fields
}

func (r *pkgReader) buildField(st *types.Struct, i int, af *ast.Field, owner string) *schema.Field {
	v := st.Field(i)

	f := &schema.Field{
		Name:  v.Name(),
		Index: i,
		Type:  r.cls.classify(v.Type()),
		Pos:   r.pos(v.Pos()),
	}

	if tag, ok := reflect.StructTag(st.Tag(i)).Lookup(TagKey); ok {
		if tag == "-" {
			f.Skip = true
		} else {
			f.Capture = tag
		}
	}

	for j, dir := range Directives(af.Doc, af.Comment) {
		switch {
		case dir.Name != DirectiveWith:
			r.warnAt(dir.Pos, "misplaced_directive",
				fmt.Sprintf("directive %s%s has no effect on a field", DirectivePrefix, dir.Name), owner, f.Name)
		case j > 0 && f.With != "":
			r.errorAt(dir.Pos, "duplicate_directive", "more than one with directive", owner, f.Name)
		default:
			f.With = dir.Arg
		}
	}

	return f
}

func (r *pkgReader) buildNewtype(d *typeDecl, owner string) (schema.Shape, []*schema.Field) {
	u := d.obj.Type().Underlying()

	switch u.(type) {
	case *types.Map, *types.Chan, *types.Signature:
		r.errorAt(d.spec.Name.Pos(), "unsupported_shape",
			fmt.Sprintf("%s cannot be parsed: underlying type %s", d.spec.Name.Name, u), owner, "")

		return schema.ShapeNewtype, nil
	}

	f := &schema.Field{
		Index: 0,
		Type:  r.cls.classify(u),
		Pos:   r.pos(d.spec.Name.Pos()),
	}

	if with := d.directives(DirectiveWith); len(with) > 0 {
		f.With = with[0].Arg

		for _, extra := range with[1:] {
			r.errorAt(extra.Pos, "duplicate_directive", "more than one with directive", owner, "")
		}
	}

	return schema.ShapeNewtype, []*schema.Field{f}
}
