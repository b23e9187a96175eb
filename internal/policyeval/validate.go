package policyeval

import (
	"fmt"

	"kyd/internal/domain"
)

// ValidationError collects every violation found across a policy's trees,
// so setup can report a single structured error listing all of them
// (spec.md §4.3/§7) instead of failing on the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("policy validation failed with %d violation(s): %v", len(e.Violations), e.Violations)
}

// Validate type-checks every populated tree in policy before the first
// tick: node_id uniqueness across the whole policy, FieldRef/ParamRef
// resolution, and action-permitted-for-tree. Every arithmetic
// sub-expression already must be a Compute node by construction of the
// domain.Value AST, so that requirement is structural rather than checked
// here.
func Validate(policy domain.Policy) error {
	seenIDs := make(map[domain.NodeID]bool)
	var violations []string

	check := func(tree *domain.Tree) {
		if tree == nil {
			return
		}
		violations = append(violations, validateTree(tree, policy.Params, seenIDs)...)
	}

	check(policy.PaymentTree)
	check(policy.BankTree)
	check(policy.StrategicCollateralTree)
	check(policy.EndOfTickCollateralTree)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func validateTree(tree *domain.Tree, params map[string]int64, seenIDs map[domain.NodeID]bool) []string {
	var violations []string
	var walk func(n *domain.Node)
	walk = func(n *domain.Node) {
		if n == nil {
			return
		}
		if seenIDs[n.ID] {
			violations = append(violations, fmt.Sprintf("duplicate node_id %q", n.ID))
		}
		seenIDs[n.ID] = true

		if n.IsAction {
			if n.Action == nil {
				violations = append(violations, fmt.Sprintf("node %q marked action but has no Action", n.ID))
				return
			}
			if !domain.ActionPermitted(tree.Kind, n.Action.Kind) {
				violations = append(violations, fmt.Sprintf("action %q not permitted in tree %q (node %q)", n.Action.Kind, tree.Kind, n.ID))
			}
			if n.Action.Amount != nil {
				violations = append(violations, validateValue(n.Action.Amount, tree.Kind, params)...)
			}
			if n.Action.RegisterValue != nil {
				violations = append(violations, validateValue(n.Action.RegisterValue, tree.Kind, params)...)
			}
			return
		}

		violations = append(violations, validateCondition(n.Cond, tree.Kind, params)...)
		walk(n.OnTrue)
		walk(n.OnFalse)
	}
	walk(tree.Root)
	return violations
}

func validateCondition(c *domain.Condition, tree domain.TreeKind, params map[string]int64) []string {
	var violations []string
	if c == nil {
		return []string{"nil condition"}
	}
	if c.IsComparison {
		violations = append(violations, validateValue(c.Left, tree, params)...)
		violations = append(violations, validateValue(c.Right, tree, params)...)
		return violations
	}
	for _, arg := range c.Args {
		violations = append(violations, validateCondition(arg, tree, params)...)
	}
	return violations
}

func validateValue(v *domain.Value, tree domain.TreeKind, params map[string]int64) []string {
	var violations []string
	if v == nil {
		return []string{"nil value"}
	}
	switch v.Kind {
	case domain.ValueFieldRef:
		if !fieldValidForTree(tree, v.FieldRef) {
			violations = append(violations, fmt.Sprintf("field %q not valid for tree %q", v.FieldRef, tree))
		}
	case domain.ValueParamRef:
		if _, ok := params[v.ParamRef]; !ok {
			violations = append(violations, fmt.Sprintf("param %q not declared", v.ParamRef))
		}
	case domain.ValueCompute:
		violations = append(violations, validateValue(v.Left, tree, params)...)
		violations = append(violations, validateValue(v.Right, tree, params)...)
	}
	return violations
}

func fieldValidForTree(tree domain.TreeKind, name string) bool {
	if len(name) > len(domain.StateRegisterFieldPrefix) && name[:len(domain.StateRegisterFieldPrefix)] == domain.StateRegisterFieldPrefix {
		return true // state registers are readable from any tree
	}
	return domain.FieldValid(tree, name)
}
