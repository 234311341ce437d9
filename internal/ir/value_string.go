package ir

import "strings"

func (l Literal) String() string {
	switch l.Kind {
	case LiteralNull:
		return "null"
	case LiteralBool:
		if l.Bool {
			return "true"
		}
		return "false"
	case LiteralInt:
		return itoa(int(l.Int))
	case LiteralDouble:
		return ftoa(l.Double)
	case LiteralString:
		return "\"" + l.Str + "\""
	default:
		return "<literal>"
	}
}

func (c Constant) String() string { return c.Literal.String() }
func (v Var) String() string      { return v.Variable.Name + "_" + itoa(v.Variable.Version) }

func (b Binary) String() string {
	return "(" + b.Left.String() + " " + string(b.Op) + " " + b.Right.String() + ")"
}

func (u Unary) String() string { return string(u.Op) + u.Operand.String() }

func (c Call) String() string {
	recv := ""
	if c.Receiver != nil {
		recv = c.Receiver.String() + "."
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return recv + c.MethodName + "(" + strings.Join(args, ", ") + ")"
}

func (f FieldAccess) String() string { return f.Receiver.String() + "." + f.FieldName }

func (idx IndexAccess) String() string { return idx.Receiver.String() + "[" + idx.Index.String() + "]" }

func (n NewObject) String() string {
	ctor := n.TypeName
	if n.CtorName != "" {
		ctor += "." + n.CtorName
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return "new " + ctor + "(" + strings.Join(args, ", ") + ")"
}

func (p PhiValue) String() string { return "phi(" + p.Variable.Name + "_" + itoa(p.Variable.Version) + ")" }

func ftoa(f float64) string {
	// Minimal, deterministic formatting sufficient for debug dumps; avoids
	// pulling strconv's locale-sensitive formatting into value identity.
	if f == float64(int64(f)) {
		return itoa(int(int64(f))) + ".0"
	}
	buf := make([]byte, 0, 24)
	neg := f < 0
	if neg {
		f = -f
	}
	whole := int64(f)
	frac := f - float64(whole)
	buf = append(buf, itoa(int(whole))...)
	buf = append(buf, '.')
	for i := 0; i < 6 && frac > 0; i++ {
		frac *= 10
		d := int(frac)
		buf = append(buf, byte('0'+d))
		frac -= float64(d)
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}
