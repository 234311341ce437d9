package ir

import (
	"sort"
	"strings"
)

func (a Assign) String() string { return a.Target.Name + "_" + itoa(a.Target.Version) + " = " + a.Value.String() }

func (b Branch) String() string {
	return "branch " + b.Cond.String() + " then b" + itoa(b.ThenBlock) + " else b" + itoa(b.ElseBlock)
}

func (j Jump) String() string { return "jump b" + itoa(j.Target) }

func (r Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

func (p Phi) String() string {
	preds := make([]int, 0, len(p.Operands))
	for pred := range p.Operands {
		preds = append(preds, pred)
	}
	sort.Ints(preds)
	parts := make([]string, 0, len(preds))
	for _, pred := range preds {
		parts = append(parts, "b"+itoa(pred)+": "+p.Operands[pred].String())
	}
	return p.Target.Name + "_" + itoa(p.Target.Version) + " = phi(" + strings.Join(parts, ", ") + ")"
}

func (c CallInstr) String() string {
	recv := ""
	if c.Receiver != nil {
		recv = c.Receiver.String() + "."
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	call := recv + c.MethodName + "(" + strings.Join(args, ", ") + ")"
	if c.HasResult {
		return c.Result.Name + "_" + itoa(c.Result.Version) + " = " + call
	}
	return call
}

func (l LoadField) String() string {
	return l.Result.Name + "_" + itoa(l.Result.Version) + " = " + l.Base.String() + "." + l.FieldName
}

func (s StoreField) String() string {
	return s.Base.String() + "." + s.FieldName + " = " + s.Value.String()
}

func (l LoadIndex) String() string {
	return l.Result.Name + "_" + itoa(l.Result.Version) + " = " + l.Base.String() + "[" + l.Index.String() + "]"
}

func (s StoreIndex) String() string {
	return s.Base.String() + "[" + s.Index.String() + "] = " + s.Value.String()
}

func (n NullCheck) String() string {
	return n.Result.Name + "_" + itoa(n.Result.Version) + " = nullcheck(" + n.Operand.String() + ")"
}

func (c Cast) String() string {
	return c.Result.Name + "_" + itoa(c.Result.Version) + " = (" + c.TargetType + ") " + c.Operand.String()
}

func (t TypeCheck) String() string {
	neg := ""
	if t.Negated {
		neg = "!"
	}
	return t.Result.Name + "_" + itoa(t.Result.Version) + " = " + neg + "(" + t.Operand.String() + " is " + t.TargetType + ")"
}

func (t Throw) String() string { return "throw " + t.Exception.String() }

func (a Await) String() string {
	return a.Result.Name + "_" + itoa(a.Result.Version) + " = await " + a.Future.String()
}
