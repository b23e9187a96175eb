// Package scenariovalidate validates an inbound domain.Scenario before any
// tick runs (spec.md §6/§7: "validation-class errors propagate out of
// new()"). Grounded on the teacher's go-playground/validator/v10 usage: a
// struct-tag pass for the mechanical field constraints (ticks_per_day>0,
// credit_limit>=0, max_cycle_length in [3,10], ...), followed by the
// cross-field checks struct tags can't express (agent id uniqueness,
// unknown counterparty references, arrival_config xor arrival_bands).
package scenariovalidate

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"kyd/internal/domain"
	"kyd/internal/policyeval"
)

var validate = validator.New()

// ValidationError collects every violation found across struct-tag and
// semantic validation, so setup reports one structured error listing all of
// them (spec.md §6) instead of failing on the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scenario validation failed with %d violation(s): %v", len(e.Violations), e.Violations)
}

// Validate runs struct-tag validation over scenario, then the semantic
// checks spec.md §6 names explicitly, then validates every agent's policy
// via policyeval.Validate. It returns a single *ValidationError listing
// every violation found, or nil.
func Validate(scenario domain.Scenario) error {
	var violations []string

	if err := validate.Struct(scenario); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				violations = append(violations, fmt.Sprintf("%s: failed %q (value=%v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			violations = append(violations, err.Error())
		}
	}

	violations = append(violations, semanticViolations(scenario)...)

	for _, ac := range scenario.Agents {
		if perr := policyeval.Validate(ac.Policy); perr != nil {
			if ve, ok := perr.(*policyeval.ValidationError); ok {
				for _, v := range ve.Violations {
					violations = append(violations, fmt.Sprintf("agent %q policy: %s", ac.ID, v))
				}
			} else {
				violations = append(violations, fmt.Sprintf("agent %q policy: %s", ac.ID, perr.Error()))
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func semanticViolations(scenario domain.Scenario) []string {
	var violations []string

	ids := make(map[domain.AgentID]bool, len(scenario.Agents))
	for _, ac := range scenario.Agents {
		if ids[ac.ID] {
			violations = append(violations, fmt.Sprintf("duplicate agent id %q", ac.ID))
		}
		ids[ac.ID] = true
	}

	for _, ac := range scenario.Agents {
		if ac.ArrivalConfig != nil && ac.ArrivalBands != nil {
			violations = append(violations, fmt.Sprintf("agent %q: arrival_config and arrival_bands are mutually exclusive", ac.ID))
		}
		for cp := range ac.BilateralLimits {
			if !ids[cp] {
				violations = append(violations, fmt.Sprintf("agent %q: bilateral_limit references unknown counterparty %q", ac.ID, cp))
			}
		}
		for _, cfg := range []*domain.ArrivalConfig{ac.ArrivalConfig} {
			if cfg == nil {
				continue
			}
			for _, cw := range cfg.Counterparties {
				if !ids[cw.AgentID] {
					violations = append(violations, fmt.Sprintf("agent %q: arrival_config references unknown counterparty %q", ac.ID, cw.AgentID))
				}
			}
		}
		if ac.ArrivalBands != nil {
			for _, band := range []*domain.ArrivalConfig{ac.ArrivalBands.Urgent, ac.ArrivalBands.Normal, ac.ArrivalBands.Low} {
				if band == nil {
					continue
				}
				for _, cw := range band.Counterparties {
					if !ids[cw.AgentID] {
						violations = append(violations, fmt.Sprintf("agent %q: arrival_bands references unknown counterparty %q", ac.ID, cw.AgentID))
					}
				}
			}
		}
	}

	if scenario.Global.EODRushThreshold.Den != 0 {
		f := scenario.Global.EODRushThreshold
		if f.Num < 0 || f.Num > f.Den {
			violations = append(violations, fmt.Sprintf("eod_rush_threshold %d/%d out of [0,1]", f.Num, f.Den))
		}
	}

	for _, se := range scenario.Events {
		if se.Kind == domain.ScenarioDirectTransfer || se.Kind == domain.ScenarioCollateralAdjustment {
			if se.FromAgent != "" && !ids[se.FromAgent] {
				violations = append(violations, fmt.Sprintf("scenario event references unknown agent %q", se.FromAgent))
			}
			if se.ToAgent != "" && !ids[se.ToAgent] {
				violations = append(violations, fmt.Sprintf("scenario event references unknown agent %q", se.ToAgent))
			}
		}
	}

	return violations
}
