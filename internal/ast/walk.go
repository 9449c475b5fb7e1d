package ast

// Inspect traverses expr depth-first, parents before children. If fn returns false the
// children of that node are skipped.
func Inspect(expr Expression, fn func(Expression) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	for _, child := range Children(expr) {
		Inspect(child, fn)
	}
}

// Children returns the direct sub-expressions of expr in source order.
func Children(expr Expression) []Expression {
	switch e := expr.(type) {
	case *TupleConstructor:
		return e.Elements
	case *ObjectConstructor:
		var out []Expression
		for _, f := range e.Fields {
			if f.Value != nil {
				out = append(out, f.Value)
			}
		}
		return out
	case *VariantConstructor:
		return []Expression{e.Data}
	case *FieldAccess:
		return []Expression{e.Object}
	case *MethodAccess:
		return []Expression{e.Object}
	case *Unary:
		return []Expression{e.Operand}
	case *FunctionCall:
		return append([]Expression{e.Callee}, e.Arguments...)
	case *Binary:
		return []Expression{e.Left, e.Right}
	case *IfElse:
		return []Expression{e.Condition, e.Then, e.Else}
	case *Match:
		out := []Expression{e.Subject}
		for _, c := range e.Cases {
			out = append(out, c.Body)
		}
		return out
	case *Lambda:
		return []Expression{e.Body}
	case *StatementBlock:
		var out []Expression
		for _, s := range e.Block.Statements {
			out = append(out, s.Value)
		}
		if e.Block.Expression != nil {
			out = append(out, e.Block.Expression)
		}
		return out
	default:
		return nil
	}
}
