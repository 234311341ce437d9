package metrics

import "anteater/internal/sourceast"

// walker accumulates the three AST-driven measures (cyclomatic, cognitive,
// Halstead token tables) in one traversal, and tracks the min/max source
// offset seen so the caller can resolve a LOC span without a second pass.
type walker struct {
	cc        int
	cognitive int
	operators map[string]int
	operands  map[string]int
	minOffset int
	maxOffset int
}

func (w *walker) observeOffset(off int) {
	if off < w.minOffset {
		w.minOffset = off
	}
	if off > w.maxOffset {
		w.maxOffset = off
	}
}

func (w *walker) op(sym string) {
	w.operators[sym]++
}

func (w *walker) operand(name string) {
	w.operands[name]++
}

// walkStmt processes one statement at the given cognitive nesting depth.
// Nesting increases for if/while/for/for-in/catch/switch bodies (spec.md
// §4.8 "Nest increments on entering these plus switch").
func (w *walker) walkStmt(s sourceast.Stmt, nesting int) {
	if s == nil {
		return
	}
	w.observeOffset(s.Offset())

	switch s.Kind() {
	case sourceast.StmtBlock:
		blk := s.(sourceast.BlockStmt)
		for _, inner := range blk.Statements() {
			w.walkStmt(inner, nesting)
		}

	case sourceast.StmtIf:
		ifs := s.(sourceast.IfStmt)
		w.cc++
		w.cognitive += 1 + nesting
		w.op("if")
		w.walkExpr(ifs.Cond(), "")
		w.walkStmt(ifs.Then(), nesting+1)
		if ifs.Else() != nil {
			w.op("else")
			w.cognitive += 1 + nesting
			w.walkStmt(ifs.Else(), nesting+1)
		}

	case sourceast.StmtWhile:
		ws := s.(sourceast.WhileStmt)
		w.cc++
		w.cognitive += 1 + nesting
		w.op("while")
		w.walkExpr(ws.Cond(), "")
		w.walkStmt(ws.Body(), nesting+1)

	case sourceast.StmtDoWhile:
		ds := s.(sourceast.DoWhileStmt)
		w.cc++
		w.cognitive += 1 + nesting
		w.op("do")
		w.walkStmt(ds.Body(), nesting+1)
		w.walkExpr(ds.Cond(), "")

	case sourceast.StmtFor:
		fs := s.(sourceast.ForStmt)
		w.cc++
		w.cognitive += 1 + nesting
		w.op("for")
		for _, init := range fs.Init() {
			w.walkStmt(init, nesting)
		}
		w.walkExpr(fs.Cond(), "")
		for _, upd := range fs.Update() {
			w.walkStmt(upd, nesting)
		}
		w.walkStmt(fs.Body(), nesting+1)

	case sourceast.StmtForIn:
		fis := s.(sourceast.ForInStmt)
		w.cc++
		w.cognitive += 1 + nesting
		w.op("for")
		w.walkExpr(fis.Iterable(), "")
		if fis.LoopVar() != "" {
			w.operand(fis.LoopVar())
		}
		w.walkStmt(fis.Body(), nesting+1)

	case sourceast.StmtReturn:
		rs := s.(sourceast.ReturnStmt)
		w.op("return")
		w.walkExpr(rs.Value(), "")

	case sourceast.StmtBreak:
		bs := s.(sourceast.BreakStmt)
		w.op("break")
		if bs.Label() != "" {
			w.cognitive++
			w.operand(bs.Label())
		}

	case sourceast.StmtContinue:
		cs := s.(sourceast.ContinueStmt)
		w.op("continue")
		if cs.Label() != "" {
			w.cognitive++
			w.operand(cs.Label())
		}

	case sourceast.StmtSwitch:
		sw := s.(sourceast.SwitchStmt)
		w.op("switch")
		w.cognitive++
		w.walkExpr(sw.Subject(), "")
		for _, c := range sw.Cases() {
			if c.Value != nil {
				w.cc++
				w.op("case")
				w.walkExpr(c.Value, "")
			} else {
				w.op("default")
			}
			for _, body := range c.Body {
				w.walkStmt(body, nesting+1)
			}
		}

	case sourceast.StmtTry:
		ts := s.(sourceast.TryStmt)
		w.op("try")
		w.walkStmt(ts.Body(), nesting)
		for _, c := range ts.Catches() {
			w.cc++
			w.cognitive += 1 + nesting
			w.op("catch")
			if c.BindingName != "" {
				w.operand(c.BindingName)
			}
			w.walkStmt(c.Body, nesting+1)
		}
		if ts.Finally() != nil {
			w.op("finally")
			w.walkStmt(ts.Finally(), nesting)
		}

	case sourceast.StmtThrow:
		th := s.(sourceast.ThrowStmt)
		w.op("throw")
		w.walkExpr(th.Exception(), "")

	case sourceast.StmtAssert:
		as := s.(sourceast.AssertStmt)
		w.op("assert")
		w.walkExpr(as.Cond(), "")

	case sourceast.StmtExpr:
		es := s.(sourceast.ExprStmt)
		w.walkExpr(es.Expression(), "")

	case sourceast.StmtEmpty:
		// no tokens

	default:
		// Unknown statement kind: contribute nothing rather than guessing.
	}
}

// walkExpr processes an expression. chainOp is the logical operator
// ("&&"/"||") of the enclosing chain the caller is already inside, or ""
// if none — used to count a run of the same logical operator once instead
// of once per operator occurrence (spec.md §4.8 "Chains of the same
// logical operator ... count +1 for the whole chain").
func (w *walker) walkExpr(e sourceast.Expr, chainOp string) {
	if e == nil {
		return
	}
	w.observeOffset(e.Offset())

	switch e.Kind() {
	case sourceast.ExprLiteral:
		lit := e.(sourceast.LiteralExpr)
		w.operand(literalKey(lit))

	case sourceast.ExprIdentifier:
		id := e.(sourceast.IdentifierExpr)
		w.operand(id.Name())

	case sourceast.ExprBinary:
		b := e.(sourceast.BinaryExpr)
		op := string(b.Op())
		w.op(op)

		if op == "&&" || op == "||" {
			w.cc++
			if chainOp != op {
				w.cognitive++
			}
			w.walkExpr(b.Left(), op)
			w.walkExpr(b.Right(), op)
			return
		}
		w.walkExpr(b.Left(), "")
		w.walkExpr(b.Right(), "")

	case sourceast.ExprUnary:
		u := e.(sourceast.UnaryExpr)
		w.op(string(u.Op()))
		w.walkExpr(u.Operand(), "")

	case sourceast.ExprPostfix:
		p := e.(sourceast.PostfixExpr)
		w.op(string(p.Op()))
		w.walkExpr(p.Operand(), "")

	case sourceast.ExprPropertyAccess:
		pa := e.(sourceast.PropertyAccessExpr)
		w.op(".")
		w.walkExpr(pa.Receiver(), "")
		w.operand(pa.FieldName())

	case sourceast.ExprIndex:
		ix := e.(sourceast.IndexExpr)
		w.op("[]")
		w.walkExpr(ix.Receiver(), "")
		w.walkExpr(ix.Index(), "")

	case sourceast.ExprMethodInvocation:
		mi := e.(sourceast.MethodInvocationExpr)
		w.op("()")
		w.walkExpr(mi.Receiver(), "")
		w.operand(mi.MethodName())
		for _, a := range mi.Args() {
			w.walkExpr(a, "")
		}

	case sourceast.ExprObjectCreation:
		oc := e.(sourceast.ObjectCreationExpr)
		w.op("new")
		w.operand(oc.TypeName())
		for _, a := range oc.Args() {
			w.walkExpr(a, "")
		}

	case sourceast.ExprConditional:
		cond := e.(sourceast.ConditionalExpr)
		w.cc++
		w.cognitive++
		w.op("?:")
		w.walkExpr(cond.Cond(), "")
		w.walkExpr(cond.Then(), "")
		w.walkExpr(cond.Else(), "")

	case sourceast.ExprCascade:
		cas := e.(sourceast.CascadeExpr)
		w.op("..")
		w.walkExpr(cas.Target(), "")
		for _, sec := range cas.Sections() {
			if sec.MethodName != "" {
				w.operand(sec.MethodName)
				for _, a := range sec.Args {
					w.walkExpr(a, "")
				}
			} else {
				w.operand(sec.FieldName)
				w.walkExpr(sec.Value, "")
			}
		}

	case sourceast.ExprNullAware:
		na := e.(sourceast.NullAwareExpr)
		w.cc++
		switch na.NullAwareKind() {
		case sourceast.NullAwareAccess:
			w.op("?.")
		case sourceast.NullAwareCoalesce:
			w.op("??")
		case sourceast.NullAwareCoalesceAssign:
			w.op("??=")
		}
		w.walkExpr(na.Left(), "")
		w.walkExpr(na.Right(), "")

	case sourceast.ExprShortCircuit:
		sc := e.(sourceast.ShortCircuitExpr)
		op := string(sc.Op())
		w.cc++
		w.op(op)
		if chainOp != op {
			w.cognitive++
		}
		w.walkExpr(sc.Left(), op)
		w.walkExpr(sc.Right(), op)

	case sourceast.ExprAwait:
		aw := e.(sourceast.AwaitExpr)
		w.op("await")
		w.walkExpr(aw.Future(), "")

	case sourceast.ExprCast:
		c := e.(sourceast.CastExpr)
		w.op("as")
		w.walkExpr(c.Operand(), "")
		w.operand(c.TargetType())

	case sourceast.ExprTypeTest:
		tt := e.(sourceast.TypeTestExpr)
		w.op("is")
		w.walkExpr(tt.Operand(), "")
		w.operand(tt.TargetType())

	case sourceast.ExprAssignment:
		as := e.(sourceast.AssignmentExpr)
		w.op(string(as.Op()))
		w.walkExpr(as.Target(), "")
		w.walkExpr(as.Value(), "")

	default:
		// Unknown expression kind: contribute nothing rather than guessing.
	}
}

func literalKey(lit sourceast.LiteralExpr) string {
	switch lit.LiteralKind() {
	case sourceast.LitNull:
		return "null"
	case sourceast.LitBool:
		if lit.BoolValue() {
			return "true"
		}
		return "false"
	case sourceast.LitInt:
		return "int:" + itoa(int(lit.IntValue()))
	case sourceast.LitDouble:
		return "double:" + ftoa(lit.DoubleValue())
	case sourceast.LitString:
		return "string:" + lit.StringValue()
	default:
		return "lit"
	}
}
