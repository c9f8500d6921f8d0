package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"parsegen/internal/schema"
)

// textUnmarshaler is encoding.TextUnmarshaler, built by hand so that the
// analyzed package does not need to import encoding.
var textUnmarshaler = func() *types.Interface {
	params := types.NewTuple(types.NewVar(token.NoPos, nil, "text", types.NewSlice(types.Typ[types.Byte])))
	results := types.NewTuple(types.NewVar(token.NoPos, nil, "", types.Universe.Lookup("error").Type()))
	sig := types.NewSignatureType(nil, nil, nil, params, results, false)

	iface := types.NewInterfaceType([]*types.Func{types.NewFunc(token.NoPos, nil, "UnmarshalText", sig)}, nil)
	iface.Complete()

	return iface
}()

// classifier maps go/types types to TypeRefs as seen from the analyzed
// package.
type classifier struct {
	pkg *types.Package
	// generated holds the names of package types that get a Parse function.
	generated map[string]bool
}

func (c *classifier) qualifier(p *types.Package) string {
	if p == c.pkg {
		return ""
	}

	return p.Name()
}

// classify resolves t by priority: generated parser, TextUnmarshaler,
// time.Duration, then the structure of the type.
func (c *classifier) classify(t types.Type) schema.TypeRef {
	t = types.Unalias(t)
	ref := schema.TypeRef{Expr: types.TypeString(t, c.qualifier)}

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()

		if obj.Pkg() != nil && obj.Pkg() != c.pkg {
			ref.Import = obj.Pkg().Path()
		}

		switch {
		case obj.Pkg() == c.pkg && c.generated[obj.Name()]:
			ref.Kind = schema.KindParser
			ref.Parser = schema.ParserName(obj.Name())

			return ref
		case obj.Pkg() != nil && obj.Pkg().Path() == schema.ParsekitPath && strings.HasPrefix(obj.Name(), "Tuple"):
			ref.Kind = schema.KindTuple
			for i := range named.TypeArgs().Len() {
				ref.Elems = append(ref.Elems, c.classify(named.TypeArgs().At(i)))
			}

			return ref
		case types.Implements(types.NewPointer(t), textUnmarshaler):
			ref.Kind = schema.KindText
			return ref
		case obj.Pkg() != nil && obj.Pkg().Path() == "time" && obj.Name() == "Duration":
			ref.Kind = schema.KindDuration
			return ref
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		ref.Kind = basicKind(u)
	case *types.Pointer:
		elem := c.classify(u.Elem())
		ref.Kind, ref.Elem = schema.KindPointer, &elem
	case *types.Slice:
		if b, ok := types.Unalias(u.Elem()).(*types.Basic); ok && b.Kind() == types.Byte {
			ref.Kind = schema.KindBytes
			break
		}

		elem := c.classify(u.Elem())
		ref.Kind, ref.Elem = schema.KindSlice, &elem
	case *types.Array:
		elem := c.classify(u.Elem())
		ref.Kind, ref.Elem, ref.Len = schema.KindArray, &elem, int(u.Len())
	default:
		ref.Kind = schema.KindOther
	}

	return ref
}

func basicKind(b *types.Basic) schema.Kind {
	info := b.Info()

	switch {
	case info&types.IsString != 0:
		return schema.KindString
	case info&types.IsBoolean != 0:
		return schema.KindBool
	case info&types.IsUnsigned != 0:
		return schema.KindUint
	case info&types.IsInteger != 0:
		return schema.KindInt
	case info&types.IsFloat != 0:
		return schema.KindFloat
	default:
		return schema.KindOther
	}
}

// Resolver resolves type expressions in the scope of a loaded package. It
// implements schema.TypeResolver and schema.StructFieldResolver.
type Resolver struct {
	fset  *token.FileSet
	pkg   *types.Package
	files []*ast.File
	cls   *classifier
	// fallback handles qualified names of packages the analyzed files do
	// not import.
	fallback *schema.NameResolver
}

// Resolve implements schema.TypeResolver.
func (r *Resolver) Resolve(typeExpr string) (schema.TypeRef, error) {
	t, err := r.eval(typeExpr)
	if err == nil {
		return r.cls.classify(t), nil
	}

	if strings.Contains(typeExpr, ".") {
		if ref, ferr := r.fallback.Resolve(typeExpr); ferr == nil {
			return ref, nil
		}
	}

	return schema.TypeRef{}, fmt.Errorf("cannot resolve type %q: %w", typeExpr, err)
}

// StructFieldType implements schema.StructFieldResolver.
func (r *Resolver) StructFieldType(typeExpr, field string) (schema.TypeRef, bool) {
	t, err := r.eval(typeExpr)
	if err != nil {
		return schema.TypeRef{}, false
	}

	if p, ok := t.Underlying().(*types.Pointer); ok {
		t = p.Elem()
	}

	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return schema.TypeRef{}, false
	}

	for i := range st.NumFields() {
		if f := st.Field(i); f.Name() == field {
			return r.cls.classify(f.Type()), true
		}
	}

	return schema.TypeRef{}, false
}

// eval evaluates a type expression in the file scope of each package file
// in turn, so that imported package names resolve.
func (r *Resolver) eval(typeExpr string) (types.Type, error) {
	var firstErr error

	for _, f := range r.files {
		tv, err := types.Eval(r.fset, r.pkg, f.Name.End(), typeExpr)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		if !tv.IsType() {
			return nil, fmt.Errorf("%s is not a type", typeExpr)
		}

		return tv.Type, nil
	}

	if firstErr == nil {
		firstErr = errors.New("package has no files")
	}

	return nil, firstErr
}
