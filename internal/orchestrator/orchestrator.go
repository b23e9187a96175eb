// Package orchestrator composes every core component into the phase-ordered
// tick loop of spec.md §4.10. Grounded on the teacher's
// internal/settlement/service.go phase-sequenced worker (recover → process
// → cleanup, each a bounded pass), restructured from a wall-clock ticker
// into a logical-tick loop that owns all state exclusively, per spec.md §5.
package orchestrator

import (
	"fmt"

	"kyd/internal/domain"
	"kyd/internal/rng"
	"kyd/internal/scenariovalidate"
)

// EventSink is invoked synchronously, once per emitted event, if set via
// WithEventSink. It must not re-enter the Orchestrator (spec.md §6).
type EventSink func(domain.Event)

// Orchestrator owns all simulation state exclusively (spec.md §5): agents,
// transactions, the central Q2, the RNG, and the emission sequence. It is
// not safe for concurrent use.
type Orchestrator struct {
	scenario domain.Scenario

	agents     map[domain.AgentID]*domain.Agent
	agentOrder []domain.AgentID
	configs    map[domain.AgentID]domain.AgentConfig // mutable working copy for rate/weight scenario events

	txs     map[domain.TxID]*domain.Transaction
	txOrder []domain.TxID // insertion order, for stable introspection only
	q2      []domain.TxID // central Q2 membership

	tick     int
	rngState rng.State
	idSeq    int
	seq      int

	daily domain.DailyStats

	q2ReleaseBudget int // remaining bounded release attempts this tick

	events []domain.Event
	sink   EventSink

	// per-tick scratch, reset at the start of each Tick
	deadlineHits  map[domain.AgentID]int
	splitChildren map[domain.AgentID]int
	submitted     []domain.TxID

	pendingStaggeredArrivals map[int][]domain.TxID
}

// New validates scenario (spec.md §6: struct-level constraints, unknown
// counterparty references, arrival_config/arrival_bands exclusivity, and
// every agent's policy trees) and constructs an Orchestrator from it.
// Validation failures abort setup with a structured error listing every
// violation found, before any tick runs (spec.md §4.3/§7); no Orchestrator
// is returned in that case.
func New(scenario domain.Scenario) (*Orchestrator, error) {
	if err := scenariovalidate.Validate(scenario); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		scenario: scenario,
		agents:   make(map[domain.AgentID]*domain.Agent),
		configs:  make(map[domain.AgentID]domain.AgentConfig),
		txs:      make(map[domain.TxID]*domain.Transaction),
		rngState: rng.Seed(scenario.RNGSeed),
		pendingStaggeredArrivals: make(map[int][]domain.TxID),
	}
	for _, ac := range scenario.Agents {
		if ac.ArrivalConfig != nil {
			cfgCopy := *ac.ArrivalConfig
			cfgCopy.Counterparties = append([]domain.CounterpartyWeight(nil), cfgCopy.Counterparties...)
			ac.ArrivalConfig = &cfgCopy
		}
		agent := domain.NewAgent(ac.ID, ac.OpeningBalance, ac.CreditLimit, ac.CollateralHaircut)
		agent.PostedCollateral = ac.PostedCollateral
		if ac.PostedCollateral > 0 {
			agent.HasPostedCollateral = true
		}
		agent.MultilateralLimitRemaining = ac.MultilateralLimit
		agent.MultilateralLimitConfigured = ac.MultilateralLimitConfigured
		for cp, limit := range ac.BilateralLimits {
			agent.BilateralLimits[cp] = limit
		}
		o.agents[ac.ID] = agent
		o.agentOrder = append(o.agentOrder, ac.ID)
		o.configs[ac.ID] = ac
	}
	return o, nil
}

// WithEventSink installs a synchronous per-event callback (spec.md §6).
func (o *Orchestrator) WithEventSink(sink EventSink) *Orchestrator {
	o.sink = sink
	return o
}

// CurrentTick returns the next tick index to be executed.
func (o *Orchestrator) CurrentTick() int { return o.tick }

func (o *Orchestrator) nextTxID() domain.TxID {
	o.idSeq++
	return domain.TxID(fmt.Sprintf("tx-%d", o.idSeq))
}

func (o *Orchestrator) emit(e domain.Event) {
	o.events = append(o.events, e)
	if o.sink != nil {
		o.sink(e)
	}
}

func (o *Orchestrator) base() domain.Base {
	b := domain.Base{Tick: o.tick, Sequence: o.seq}
	o.seq++
	return b
}

// Tick advances the simulation by one logical step, running the
// phase-ordered loop of spec.md §4.10, and returns every event emitted
// during it in emission order.
func (o *Orchestrator) Tick() []domain.Event {
	o.events = nil
	o.seq = 0
	o.q2ReleaseBudget = o.scenario.Global.MaxQ2ReleaseIterationsPerTick
	o.deadlineHits = make(map[domain.AgentID]int)
	o.splitChildren = make(map[domain.AgentID]int)
	o.submitted = nil

	o.stepApplyScenarioEvents()
	o.stepGenerateArrivals()
	o.stepBankAndStrategicCollateral()
	o.stepPaymentTree()
	o.stepRTGSSubmission()
	o.stepLSM()
	o.stepQ2ReleaseCascade()
	o.stepEndOfTickCollateral()
	o.stepDeferredCrediting()
	o.stepOverdueScan()
	o.stepCostAccrual()
	o.stepEndOfDay()

	o.tick++
	return o.events
}
