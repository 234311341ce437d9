package ir

import (
	"sort"
	"strings"
)

// BasicBlock is a straight-line run of instructions terminated by exactly
// one control-transfer instruction. Predecessors/successors are stored as
// block ids, not pointers, so the whole CFG can live in one arena slice
// (spec.md §9: "cyclic graphs … use an arena").
type BasicBlock struct {
	ID           int
	Instructions []Instruction
	Preds, Succs []int
}

// ConnectTo records b -> succ in both directions, idempotently.
func (b *BasicBlock) ConnectTo(cfg *CFG, succID int) {
	succ := cfg.Block(succID)
	if !containsInt(b.Succs, succID) {
		b.Succs = append(b.Succs, succID)
	}
	if !containsInt(succ.Preds, b.ID) {
		succ.Preds = append(succ.Preds, b.ID)
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Terminator returns the block's terminating instruction, or nil if the
// block (illegally) has none yet — callers building a CFG incrementally
// check this before sealing.
func (b *BasicBlock) Terminator() Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	if IsTerminator(last) {
		return last
	}
	return nil
}

// Phis returns the leading run of Phi instructions, which in SSA form must
// precede all non-phi instructions (spec.md §3).
func (b *BasicBlock) Phis() []Phi {
	var out []Phi
	for _, inst := range b.Instructions {
		if p, ok := inst.(Phi); ok {
			out = append(out, p)
			continue
		}
		break
	}
	return out
}

// CFG is the control-flow graph for one function/method/constructor.
type CFG struct {
	FunctionName string
	Entry        int
	blocks       map[int]*BasicBlock
	order        []int // insertion order, for deterministic Dump
	nextBlockID  int
	nextTempID   int
}

// NewCFG creates an empty CFG with a fresh entry block.
func NewCFG(functionName string) *CFG {
	cfg := &CFG{
		FunctionName: functionName,
		blocks:       make(map[int]*BasicBlock),
	}
	entry := cfg.NewBlock()
	cfg.Entry = entry.ID
	return cfg
}

// NewBlock allocates a fresh block with a unique id.
func (c *CFG) NewBlock() *BasicBlock {
	id := c.nextBlockID
	c.nextBlockID++
	b := &BasicBlock{ID: id}
	c.blocks[id] = b
	c.order = append(c.order, id)
	return b
}

// FreshTemp allocates a fresh temporary variable name, prefix "_t<counter>".
func (c *CFG) FreshTemp() string {
	id := c.nextTempID
	c.nextTempID++
	return "_t" + itoa(id)
}

// Block looks up a block by id. Panics on an unknown id: callers only ever
// look up ids they themselves allocated via NewBlock, so this is a
// programmer-error guard, not a recoverable condition.
func (c *CFG) Block(id int) *BasicBlock {
	b, ok := c.blocks[id]
	if !ok {
		panic("ir: unknown block id " + itoa(id))
	}
	return b
}

// Blocks returns every block in insertion order (not traversal order).
func (c *CFG) Blocks() []*BasicBlock {
	out := make([]*BasicBlock, len(c.order))
	for i, id := range c.order {
		out[i] = c.blocks[id]
	}
	return out
}

// NumBlocks reports the number of blocks ever allocated, including
// unreachable ones.
func (c *CFG) NumBlocks() int { return len(c.order) }

// ReversePostOrder yields blocks reachable from entry in an order suitable
// for forward dataflow: every block appears after all of its predecessors
// except across back edges.
func (c *CFG) ReversePostOrder() []*BasicBlock {
	visited := make(map[int]bool, len(c.order))
	var postOrder []int

	type frame struct {
		id      int
		succIdx int
	}
	stack := []frame{{id: c.Entry}}
	visited[c.Entry] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		b := c.blocks[top.id]
		if top.succIdx < len(b.Succs) {
			next := b.Succs[top.succIdx]
			top.succIdx++
			if !visited[next] {
				visited[next] = true
				stack = append(stack, frame{id: next})
			}
			continue
		}
		postOrder = append(postOrder, top.id)
		stack = stack[:len(stack)-1]
	}

	out := make([]*BasicBlock, len(postOrder))
	for i, id := range postOrder {
		out[len(postOrder)-1-i] = c.blocks[id]
	}
	return out
}

// Reachable reports whether id is reachable from entry; computed fresh each
// call since CFGs are small and this is used only by invariant checks and
// debug tooling, never on the hot analysis path.
func (c *CFG) Reachable(id int) bool {
	for _, b := range c.ReversePostOrder() {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Dump renders a deterministic, block-id-sorted text form for golden tests
// and debug printing.
func (c *CFG) Dump() string {
	ids := make([]int, 0, len(c.blocks))
	for id := range c.blocks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var sb strings.Builder
	sb.WriteString("cfg " + c.FunctionName + " entry=b" + itoa(c.Entry) + "\n")
	for _, id := range ids {
		b := c.blocks[id]
		sb.WriteString("b" + itoa(id) + ":")
		if len(b.Preds) > 0 {
			preds := make([]int, len(b.Preds))
			copy(preds, b.Preds)
			sort.Ints(preds)
			sb.WriteString(" preds=")
			for i, p := range preds {
				if i > 0 {
					sb.WriteString(",")
				}
				sb.WriteString("b" + itoa(p))
			}
		}
		sb.WriteString("\n")
		for _, inst := range b.Instructions {
			sb.WriteString("  " + inst.String() + "\n")
		}
	}
	return sb.String()
}
