// Package policyeval evaluates the policy decision trees of spec.md §4.3:
// a pure function of (tree, context, policy parameters) with short-circuit
// boolean combinators and exact integer-cent comparisons. No dynamic
// dispatch, no runtime type injection — trees and nodes are plain tagged
// variants (spec.md §9 design notes).
package policyeval

import (
	"fmt"

	"kyd/internal/domain"
)

// Evaluate walks tree from its root against ctx and params, returning the
// single Action the walk terminates on. The tree must already have passed
// Validate; Evaluate does not re-check field/param resolution.
func Evaluate(tree *domain.Tree, ctx domain.Context, params map[string]int64) (domain.Action, error) {
	if tree == nil || tree.Root == nil {
		return domain.Action{}, fmt.Errorf("policyeval: nil tree")
	}
	node := tree.Root
	for {
		if node.IsAction {
			return *node.Action, nil
		}
		result, err := evalCondition(node.Cond, ctx, params)
		if err != nil {
			return domain.Action{}, err
		}
		if result {
			node = node.OnTrue
		} else {
			node = node.OnFalse
		}
		if node == nil {
			return domain.Action{}, fmt.Errorf("policyeval: condition branch has no child node")
		}
	}
}

// EvalAmount resolves an Action's Amount/RegisterValue expression against
// ctx and params, for callers (the orchestrator's collateral/bank-tree
// action application) that need a concrete Money value out of the same
// Literal/FieldRef/ParamRef/Compute AST used by conditions.
func EvalAmount(v *domain.Value, ctx domain.Context, params map[string]int64) (domain.Money, error) {
	n, err := evalValue(v, ctx, params)
	if err != nil {
		return 0, err
	}
	return domain.Money(n), nil
}

func evalCondition(c *domain.Condition, ctx domain.Context, params map[string]int64) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("policyeval: nil condition")
	}
	if c.IsComparison {
		left, err := evalValue(c.Left, ctx, params)
		if err != nil {
			return false, err
		}
		right, err := evalValue(c.Right, ctx, params)
		if err != nil {
			return false, err
		}
		return compare(c.Op, left, right), nil
	}

	switch c.BoolOp {
	case domain.BoolNot:
		if len(c.Args) != 1 {
			return false, fmt.Errorf("policyeval: not requires exactly one argument")
		}
		v, err := evalCondition(c.Args[0], ctx, params)
		if err != nil {
			return false, err
		}
		return !v, nil
	case domain.BoolAnd:
		for _, arg := range c.Args {
			v, err := evalCondition(arg, ctx, params)
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil // short-circuit at first false
			}
		}
		return true, nil
	case domain.BoolOr:
		for _, arg := range c.Args {
			v, err := evalCondition(arg, ctx, params)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil // short-circuit at first true
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("policyeval: unknown bool op %q", c.BoolOp)
	}
}

func compare(op domain.CompareOp, left, right int64) bool {
	switch op {
	case domain.OpEq:
		return left == right
	case domain.OpNe:
		return left != right
	case domain.OpLt:
		return left < right
	case domain.OpLe:
		return left <= right
	case domain.OpGt:
		return left > right
	case domain.OpGe:
		return left >= right
	default:
		return false
	}
}

func evalValue(v *domain.Value, ctx domain.Context, params map[string]int64) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("policyeval: nil value")
	}
	switch v.Kind {
	case domain.ValueLiteral:
		return v.Literal, nil
	case domain.ValueParamRef:
		val, ok := params[v.ParamRef]
		if !ok {
			return 0, fmt.Errorf("policyeval: unresolved param %q", v.ParamRef)
		}
		return val, nil
	case domain.ValueFieldRef:
		return resolveField(ctx, v.FieldRef)
	case domain.ValueCompute:
		left, err := evalValue(v.Left, ctx, params)
		if err != nil {
			return 0, err
		}
		right, err := evalValue(v.Right, ctx, params)
		if err != nil {
			return 0, err
		}
		return applyArith(v.Op, left, right)
	default:
		return 0, fmt.Errorf("policyeval: unknown value kind %q", v.Kind)
	}
}

func applyArith(op domain.ArithOp, left, right int64) (int64, error) {
	switch op {
	case domain.ArithAdd:
		return left + right, nil
	case domain.ArithSub:
		return left - right, nil
	case domain.ArithMul:
		return left * right, nil
	case domain.ArithDiv:
		if right == 0 {
			return 0, fmt.Errorf("policyeval: division by zero")
		}
		return left / right, nil // truncates toward zero, Go's native int division semantics
	default:
		return 0, fmt.Errorf("policyeval: unknown arith op %q", op)
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func resolveField(ctx domain.Context, name string) (int64, error) {
	if len(name) > len(domain.StateRegisterFieldPrefix) && name[:len(domain.StateRegisterFieldPrefix)] == domain.StateRegisterFieldPrefix {
		regName := name[len(domain.StateRegisterFieldPrefix):]
		return ctx.StateRegisters[regName], nil
	}

	switch name {
	case "balance":
		return int64(ctx.Balance), nil
	case "credit_limit":
		return int64(ctx.CreditLimit), nil
	case "posted_collateral":
		return int64(ctx.PostedCollateral), nil
	case "q1_size":
		return int64(ctx.Q1Size), nil
	case "q2_size":
		return int64(ctx.Q2Size), nil
	case "day_progress_fraction":
		// Fraction fields are exposed to the tree DSL as a pre-scaled
		// integer (numerator over a fixed 10_000 denominator) so a
		// FieldRef can be compared against a ParamRef/Literal expressed
		// the same way (5_000 means one half).
		if ctx.DayProgressFraction.Den == 0 {
			return 0, nil
		}
		return int64(ctx.DayProgressFraction.Num) * 10_000 / ctx.DayProgressFraction.Den, nil
	case "is_eod_rush":
		return boolToInt(ctx.IsEODRush), nil
	case "cost_liquidity":
		return int64(ctx.Costs.Liquidity), nil
	case "cost_delay":
		return int64(ctx.Costs.Delay), nil
	case "cost_collateral":
		return int64(ctx.Costs.Collateral), nil
	case "cost_deadline_penalty":
		return int64(ctx.Costs.DeadlinePenalty), nil
	case "cost_split_friction":
		return int64(ctx.Costs.SplitFriction), nil
	case "amount":
		return int64(ctx.Amount), nil
	case "remaining_amount":
		return int64(ctx.RemainingAmount), nil
	case "priority":
		return int64(ctx.Priority), nil
	case "ticks_to_deadline":
		return int64(ctx.TicksToDeadline), nil
	case "is_split":
		return boolToInt(ctx.IsSplit), nil
	case "is_overdue":
		return boolToInt(ctx.IsOverdue), nil
	default:
		return 0, fmt.Errorf("policyeval: unresolved field %q", name)
	}
}
