package facts

import "anteater/internal/ir"

// instructionKind names an ir.Instruction's concrete type for the
// unhandled_types debug set.
func instructionKind(inst ir.Instruction) string {
	switch inst.(type) {
	case ir.Assign:
		return "Assign"
	case ir.Branch:
		return "Branch"
	case ir.Jump:
		return "Jump"
	case ir.Return:
		return "Return"
	case ir.Phi:
		return "Phi"
	case ir.CallInstr:
		return "CallInstr"
	case ir.LoadField:
		return "LoadField"
	case ir.StoreField:
		return "StoreField"
	case ir.LoadIndex:
		return "LoadIndex"
	case ir.StoreIndex:
		return "StoreIndex"
	case ir.NullCheck:
		return "NullCheck"
	case ir.Cast:
		return "Cast"
	case ir.TypeCheck:
		return "TypeCheck"
	case ir.Throw:
		return "Throw"
	case ir.Await:
		return "Await"
	default:
		return "unknown"
	}
}

// valueKind names an ir.Value's concrete type for the unhandled_types debug
// set when a fact's operand can't be resolved to a schema id.
func valueKind(v ir.Value) string {
	switch v.(type) {
	case ir.Constant:
		return "Constant"
	case ir.Var:
		return "Var"
	case ir.Binary:
		return "Binary"
	case ir.Unary:
		return "Unary"
	case ir.Call:
		return "Call"
	case ir.FieldAccess:
		return "FieldAccess"
	case ir.IndexAccess:
		return "IndexAccess"
	case ir.NewObject:
		return "NewObject"
	case ir.PhiValue:
		return "PhiValue"
	default:
		return "unknown"
	}
}
