// Package cfgbuild lowers one source-language declaration (function, method,
// or constructor) to a control-flow graph, per spec.md §4.2.
package cfgbuild

import (
	"anteater/internal/errs"
	"anteater/internal/ir"
	"anteater/internal/sourceast"
)

// builder carries the mutable state of one declaration's lowering. It is
// created fresh per Build call — never shared across declarations or
// sessions (spec.md §9: "no process-wide singletons").
type builder struct {
	cfg          *ir.CFG
	current      *ir.BasicBlock
	className    string
	continueTgts []int
	breakTgts    []int
}

// Build lowers decl into a well-formed CFG. className is the surrounding
// class name, recorded as the returned Function's ClassName; it is empty
// for top-level functions.
func Build(decl sourceast.Declaration, className string) (*ir.Function, error) {
	cfg := ir.NewCFG(decl.Name())
	b := &builder{cfg: cfg, className: className}
	b.current = cfg.Block(cfg.Entry)

	if decl.Kind() == sourceast.DeclConstructor {
		for _, init := range decl.Initializers() {
			val, err := b.expr(init.Value)
			if err != nil {
				return nil, err
			}
			b.emit(ir.NewStoreField(init.Value.Offset(), thisValue(), init.FieldName, val))
		}
	}

	if body := decl.Body(); body != nil {
		if err := b.stmt(body); err != nil {
			return nil, err
		}
	}
	if !b.terminated() {
		b.emit(ir.NewReturn(decl.Offset(), nil))
	}

	params := make([]ir.Parameter, 0, len(decl.Parameters()))
	for _, p := range decl.Parameters() {
		params = append(params, ir.Parameter{Name: p.Name, TypeName: p.TypeName, Nullable: p.Nullable})
	}

	return &ir.Function{
		Name:        decl.Name(),
		CFG:         cfg,
		Parameters:  params,
		ClassName:   className,
		HasReceiver: decl.Kind() != sourceast.DeclFunction,
		OffsetRange: ir.OffsetRange{Start: decl.Offset()},
	}, nil
}

// emit appends inst to the current block, unless the block is already
// terminated (dead code after a terminator within one syntactic block is
// skipped, per spec.md §4.2 "Sequencing").
func (b *builder) emit(inst ir.Instruction) {
	if b.terminated() {
		return
	}
	b.current.Instructions = append(b.current.Instructions, inst)
}

func (b *builder) terminated() bool {
	return b.current.Terminator() != nil
}

// jumpTo appends a Jump to target and connects the CFG edge, unless the
// block is already terminated (an already-terminated block's terminator
// supplies its own edges).
func (b *builder) jumpTo(offset, target int) {
	if b.terminated() {
		return
	}
	b.emit(ir.NewJump(offset, target))
	b.current.ConnectTo(b.cfg, target)
}

// branchTo emits a terminating Branch and connects both edges.
func (b *builder) branchTo(offset int, cond ir.Value, thenID, elseID int) {
	b.emit(ir.NewBranch(offset, cond, thenID, elseID))
	b.current.ConnectTo(b.cfg, thenID)
	b.current.ConnectTo(b.cfg, elseID)
}

// freshVar declares a fresh pre-SSA variable (version 0), per spec.md §3
// ("Version 0 denotes the pre-SSA form … used for … fresh declarations").
func (b *builder) freshVar(name string) ir.Variable {
	return ir.Variable{Name: name, Version: 0}
}

// thisValue is the synthetic receiver for constructor field initializers
// (spec.md §4.2). Only field initializers are lowered; super and redirecting
// constructor invocations are not.
func thisValue() ir.Value {
	return ir.Var{Variable: ir.Variable{Name: "this", Version: 0}}
}

func unsupported(kind string, offset int) error {
	return &errs.UnsupportedConstruct{Kind: kind, Offset: offset}
}
