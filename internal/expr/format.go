package expr

import (
	"strings"
)

// Format renders e back to source form. Capture references are written as
// $name, with their conversion type as $name:type.
func Format(e Expr) string {
	var sb strings.Builder

	writeExpr(&sb, e)

	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch x := e.(type) {
	case nil:
	case *Ident:
		sb.WriteString(x.Name)

		if x.Type != nil {
			sb.WriteString(": ")
			sb.WriteString(x.Type.Text)
		}
	case *Capture:
		sb.WriteString("$")
		sb.WriteString(x.Name)

		if x.Type != nil {
			sb.WriteString(":")
			sb.WriteString(x.Type.Text)
		}
	case *BasicLit:
		sb.WriteString(x.Value)
	case *QualName:
		sb.WriteString(x.Pkg + "." + x.Name)
	case *Call:
		writeExpr(sb, x.Fun)
		writeList(sb, "(", x.Args, ")")
	case *MethodCall:
		writeExpr(sb, x.Recv)
		sb.WriteString("." + x.Name)
		writeList(sb, "(", x.Args, ")")
	case *Cast:
		sb.WriteString(x.Type.Text)
		writeList(sb, "(", []Expr{x.X}, ")")
	case *Unary:
		sb.WriteString(x.Op)
		writeExpr(sb, x.X)
	case *Ref:
		sb.WriteString("&")
		writeExpr(sb, x.X)
	case *Binary:
		writeExpr(sb, x.X)
		sb.WriteString(" " + x.Op + " ")
		writeExpr(sb, x.Y)
	case *Range:
		writeExpr(sb, x.From)

		if x.Inclusive {
			sb.WriteString("..=")
		} else {
			sb.WriteString("..")
		}

		writeExpr(sb, x.To)
	case *Try:
		writeExpr(sb, x.X)
		sb.WriteString("?")
	case *Tuple:
		writeList(sb, "(", x.Elems, ")")
	case *Paren:
		writeList(sb, "(", []Expr{x.X}, ")")
	case *Block:
		writeBlock(sb, x)
	case *If:
		sb.WriteString("if ")
		writeExpr(sb, x.Cond)
		sb.WriteString(" ")
		writeBlock(sb, x.Then)
		sb.WriteString(" else ")
		writeExpr(sb, x.Else)
	case *ArrayLit:
		if x.Type == nil {
			writeList(sb, "[", x.Elems, "]")
		} else {
			sb.WriteString(x.Type.Text)
			writeList(sb, "{", x.Elems, "}")
		}
	case *StructLit:
		writeStructLit(sb, x)
	case *Index:
		writeExpr(sb, x.X)
		writeList(sb, "[", []Expr{x.Index}, "]")
	case *FieldAccess:
		writeExpr(sb, x.X)
		sb.WriteString("." + x.Name)
	case *Opaque:
		sb.WriteString(x.Keyword + " {...}")
	}
}

func writeList(sb *strings.Builder, open string, list []Expr, closer string) {
	sb.WriteString(open)

	for i, e := range list {
		if i > 0 {
			sb.WriteString(", ")
		}

		writeExpr(sb, e)
	}

	sb.WriteString(closer)
}

func writeBlock(sb *strings.Builder, b *Block) {
	sb.WriteString("{ ")

	for _, s := range b.Stmts {
		switch st := s.(type) {
		case *ExprStmt:
			writeExpr(sb, st.X)
		case *LetStmt:
			sb.WriteString(strings.Join(st.Names, ", ") + " := ")
			writeExpr(sb, st.Value)
		case *DeclStmt:
			sb.WriteString(st.Keyword + " ...")
		}

		sb.WriteString("; ")
	}

	if b.Value != nil {
		writeExpr(sb, b.Value)
		sb.WriteString(" ")
	}

	sb.WriteString("}")
}

func writeStructLit(sb *strings.Builder, x *StructLit) {
	sb.WriteString(x.Type.Text + "{")

	for i, kv := range x.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}

		if kv.Key != "" {
			sb.WriteString(kv.Key + ": ")
		}

		writeExpr(sb, kv.Value)
	}

	if x.Rest != nil {
		if len(x.Fields) > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString("..")
		writeExpr(sb, x.Rest)
	}

	sb.WriteString("}")
}
