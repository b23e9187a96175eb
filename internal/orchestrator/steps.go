package orchestrator

import (
	"fmt"

	"kyd/internal/arrival"
	"kyd/internal/collateral"
	"kyd/internal/cost"
	"kyd/internal/domain"
	"kyd/internal/lsm"
	"kyd/internal/policyeval"
	"kyd/internal/queue"
	"kyd/internal/rtgs"
)

// ---- step 1: scenario events ----

func (o *Orchestrator) stepApplyScenarioEvents() {
	for i := range o.scenario.Events {
		se := &o.scenario.Events[i]
		if !se.Schedule.DueAt(o.tick) {
			continue
		}
		switch se.Kind {
		case domain.ScenarioDirectTransfer:
			o.applyDirectTransfer(se)
		case domain.ScenarioCustomArrival:
			o.applyCustomArrival(se)
		case domain.ScenarioCollateralAdjustment:
			o.applyCollateralAdjustment(se)
		case domain.ScenarioRateChange:
			o.applyRateChange(se)
		case domain.ScenarioWeightChange:
			o.applyWeightChange(se)
		case domain.ScenarioDeadlineChange:
			o.applyDeadlineChange(se)
		}
	}
}

func (o *Orchestrator) applyDirectTransfer(se *domain.ScenarioEvent) {
	from, to := o.agents[se.FromAgent], o.agents[se.ToAgent]
	if from == nil || to == nil {
		return
	}
	from.Balance -= se.Amount
	to.Balance += se.Amount
	o.emit(domain.ScenarioEventAppliedEvent{
		Base:        o.base(),
		Description: fmt.Sprintf("direct_transfer %s->%s %s", se.FromAgent, se.ToAgent, se.Amount),
	})
}

func (o *Orchestrator) applyCustomArrival(se *domain.ScenarioEvent) {
	if se.CustomTx == nil {
		return
	}
	o.InjectTransaction(*se.CustomTx)
	o.emit(domain.ScenarioEventAppliedEvent{
		Base:        o.base(),
		Description: fmt.Sprintf("custom_transaction_arrival %s", se.CustomTx.ID),
	})
}

func (o *Orchestrator) applyCollateralAdjustment(se *domain.ScenarioEvent) {
	agent := o.agents[se.FromAgent]
	if agent == nil {
		return
	}
	delta := collateral.ForceAdjust(agent, se.Amount, o.tick)
	reason := "scenario_collateral_adjustment"
	if se.Amount >= 0 {
		o.emit(domain.CollateralPostedEvent{Base: o.base(), AgentID: agent.ID, Amount: se.Amount, Reason: reason, HeadroomDelta: delta})
	} else {
		o.emit(domain.CollateralWithdrawnEvent{Base: o.base(), AgentID: agent.ID, Amount: -se.Amount, Reason: reason, HeadroomDelta: delta})
	}
	o.triggerRelease(agent.ID, domain.ReleaseCollateralPost)
}

func (o *Orchestrator) applyRateChange(se *domain.ScenarioEvent) {
	cfg, ok := o.configs[se.FromAgent]
	if !ok || cfg.ArrivalConfig == nil {
		return
	}
	cfg.ArrivalConfig.RatePerTick += se.RateDelta
	o.configs[se.FromAgent] = cfg
	o.emit(domain.ScenarioEventAppliedEvent{Base: o.base(), Description: fmt.Sprintf("rate_change %s %+.4f", se.FromAgent, se.RateDelta)})
}

func (o *Orchestrator) applyWeightChange(se *domain.ScenarioEvent) {
	cfg, ok := o.configs[se.FromAgent]
	if !ok || cfg.ArrivalConfig == nil {
		return
	}
	replaced := false
	for i, w := range cfg.ArrivalConfig.Counterparties {
		if w.AgentID == se.NewWeight.AgentID {
			cfg.ArrivalConfig.Counterparties[i] = se.NewWeight
			replaced = true
			break
		}
	}
	if !replaced {
		cfg.ArrivalConfig.Counterparties = append(cfg.ArrivalConfig.Counterparties, se.NewWeight)
	}
	o.configs[se.FromAgent] = cfg
	o.emit(domain.ScenarioEventAppliedEvent{Base: o.base(), Description: fmt.Sprintf("weight_change %s->%s", se.FromAgent, se.NewWeight.AgentID)})
}

// applyDeadlineChange targets the transaction named by se.CustomTx.ID: a
// ScenarioEvent carries no dedicated TxID field, so deadline_change reuses
// CustomTx purely as a TxID carrier.
func (o *Orchestrator) applyDeadlineChange(se *domain.ScenarioEvent) {
	if se.CustomTx == nil {
		return
	}
	tx, ok := o.txs[se.CustomTx.ID]
	if !ok {
		return
	}
	tx.DeadlineTick = se.NewDeadlineTick
	o.emit(domain.ScenarioEventAppliedEvent{Base: o.base(), Description: fmt.Sprintf("deadline_change %s -> tick %d", tx.ID, se.NewDeadlineTick)})
}

// placeArrival installs tx as newly arrived: in_q1 status, sender's Q1,
// and an arrival event.
func (o *Orchestrator) placeArrival(tx domain.Transaction) {
	tx.Status = domain.TransactionInQ1
	stored := tx
	o.txs[stored.ID] = &stored
	o.txOrder = append(o.txOrder, stored.ID)
	if sender := o.agents[stored.SenderID]; sender != nil {
		sender.Q1 = append(sender.Q1, stored.ID)
	}
	o.emit(domain.TransactionArrivalEvent{Base: o.base(), Tx: stored})
}

// InjectTransaction places a fully-specified transaction out of band
// (spec.md §6's control surface), bypassing the arrival generator.
func (o *Orchestrator) InjectTransaction(c domain.CustomArrival) {
	o.placeArrival(domain.Transaction{
		ID:              c.ID,
		SenderID:        c.SenderID,
		ReceiverID:      c.ReceiverID,
		Amount:          c.Amount,
		RemainingAmount: c.Amount,
		Priority:        c.Priority,
		ArrivalTick:     o.tick,
		DeadlineTick:    c.DeadlineTick,
		Divisible:       c.Divisible,
		Status:          domain.TransactionPending,
	})
}

// ---- step 2: arrivals ----

func (o *Orchestrator) stepGenerateArrivals() {
	configs := make([]domain.AgentConfig, len(o.agentOrder))
	for i, id := range o.agentOrder {
		configs[i] = o.configs[id]
	}
	var drawn []domain.Transaction
	drawn, o.rngState = arrival.Generate(o.tick, o.scenario.TicksPerDay, configs, o.rngState, o.nextTxID)
	for _, tx := range drawn {
		o.placeArrival(tx)
	}

	if pending, ok := o.pendingStaggeredArrivals[o.tick]; ok {
		for _, id := range pending {
			if tx, exists := o.txs[id]; exists {
				tx.Status = domain.TransactionInQ1
				if sender := o.agents[tx.SenderID]; sender != nil {
					sender.Q1 = append(sender.Q1, tx.ID)
				}
				o.emit(domain.TransactionArrivalEvent{Base: o.base(), Tx: *tx})
			}
		}
		delete(o.pendingStaggeredArrivals, o.tick)
	}
}

// ---- step 3: bank + strategic collateral trees ----

func (o *Orchestrator) stepBankAndStrategicCollateral() {
	for _, id := range o.agentOrder {
		agent := o.agents[id]
		cfg := o.configs[id]
		if cfg.Policy.BankTree != nil {
			o.evalBankTree(agent, cfg)
		}
		if cfg.Policy.StrategicCollateralTree != nil {
			o.evalCollateralTree(agent, cfg, cfg.Policy.StrategicCollateralTree, domain.TreeStrategicCollateral)
		}
	}
}

func (o *Orchestrator) evalBankTree(agent *domain.Agent, cfg domain.AgentConfig) {
	ctx := o.agentContext(domain.TreeBank, agent)
	action, err := policyeval.Evaluate(cfg.Policy.BankTree, ctx, cfg.Policy.Params)
	if err != nil {
		return
	}
	switch action.Kind {
	case domain.ActionSetReleaseBudget:
		amount, err := policyeval.EvalAmount(action.Amount, ctx, cfg.Policy.Params)
		if err != nil {
			return
		}
		agent.ReleaseBudget = amount
		agent.ReleaseBudgetSet = true
		o.emit(domain.BankBudgetSetEvent{Base: o.base(), AgentID: agent.ID, Budget: amount})
	case domain.ActionSetStateRegister:
		value, err := policyeval.EvalAmount(action.RegisterValue, ctx, cfg.Policy.Params)
		if err != nil {
			return
		}
		agent.StateRegisters[action.RegisterName] = int64(value)
		o.emit(domain.StateRegisterSetEvent{Base: o.base(), AgentID: agent.ID, Name: action.RegisterName, Value: int64(value)})
	}
}

func (o *Orchestrator) evalCollateralTree(agent *domain.Agent, cfg domain.AgentConfig, tree *domain.Tree, kind domain.TreeKind) {
	ctx := o.agentContext(kind, agent)
	action, err := policyeval.Evaluate(tree, ctx, cfg.Policy.Params)
	if err != nil {
		return
	}
	hyst := o.scenario.Global.Collateral
	outflows := o.pendingOutflows(agent.ID)
	switch action.Kind {
	case domain.ActionPostCollateral:
		gap := o.liquidityGap(agent, outflows)
		if !collateral.PostingEligible(gap, outflows, hyst.PostingThreshold) {
			return
		}
		amount, err := policyeval.EvalAmount(action.Amount, ctx, cfg.Policy.Params)
		if err != nil || amount <= 0 {
			return
		}
		res := collateral.Post(agent, amount, o.tick)
		o.emit(domain.CollateralPostedEvent{Base: o.base(), AgentID: agent.ID, Amount: amount, Reason: "strategic_collateral_tree", HeadroomDelta: res.HeadroomDelta})
		o.triggerRelease(agent.ID, domain.ReleaseCollateralPost)
	case domain.ActionWithdrawCollateral:
		excess := o.excessLiquidity(agent, outflows)
		if !collateral.WithdrawalEligible(excess, outflows, hyst.WithdrawalThreshold) {
			return
		}
		amount, err := policyeval.EvalAmount(action.Amount, ctx, cfg.Policy.Params)
		if err != nil || amount <= 0 {
			return
		}
		ticksHeld := o.tick - agent.CollateralPostedAtTick
		res := collateral.Withdraw(agent, amount, o.tick, hyst.MinHoldingTicks)
		if res.Applied {
			o.emit(domain.CollateralWithdrawnEvent{Base: o.base(), AgentID: agent.ID, Amount: amount, Reason: "strategic_collateral_tree", HeadroomDelta: res.HeadroomDelta, TicksHeld: ticksHeld})
		}
	case domain.ActionHoldCollateral:
		// no-op
	}
}

// pendingOutflows sums remaining_amount across every unsettled transaction
// agentID is the sender of, the denominator of both hysteresis ratios
// (spec.md §4.8 names the ratio but not its components explicitly).
func (o *Orchestrator) pendingOutflows(agentID domain.AgentID) domain.Money {
	var total domain.Money
	for _, id := range o.txOrder {
		tx := o.txs[id]
		if tx.SenderID != agentID {
			continue
		}
		switch tx.Status {
		case domain.TransactionInQ1, domain.TransactionInQ2, domain.TransactionOverdue, domain.TransactionPending:
			total += tx.RemainingAmount
		}
	}
	return total
}

func (o *Orchestrator) liquidityGap(agent *domain.Agent, pendingOutflows domain.Money) domain.Money {
	return domain.Max(pendingOutflows-agent.AvailableLiquidity(), 0)
}

func (o *Orchestrator) excessLiquidity(agent *domain.Agent, pendingOutflows domain.Money) domain.Money {
	return domain.Max(agent.AvailableLiquidity()-pendingOutflows, 0)
}

// ---- step 4: payment tree ----

func (o *Orchestrator) stepPaymentTree() {
	for _, id := range o.agentOrder {
		agent := o.agents[id]
		cfg := o.configs[id]
		if cfg.Policy.PaymentTree == nil {
			continue
		}
		order := queue.Q1Order(o.scenario.Global.Queue1Ordering, agent, o.txs, o.scenario.Global.PriorityEscalation, o.tick)
		remainingBudget := agent.ReleaseBudget
		for _, txID := range order {
			tx, ok := o.txs[txID]
			if !ok || (tx.Status != domain.TransactionInQ1 && tx.Status != domain.TransactionOverdue) {
				continue
			}
			ctx := o.txContext(agent, tx)
			action, err := policyeval.Evaluate(cfg.Policy.PaymentTree, ctx, cfg.Policy.Params)
			if err != nil {
				continue
			}
			switch action.Kind {
			case domain.ActionRelease:
				if agent.ReleaseBudgetSet && tx.RemainingAmount > remainingBudget {
					o.emit(domain.PolicyHoldEvent{Base: o.base(), TxID: tx.ID, Reason: "release_budget_exhausted"})
					continue
				}
				agent.RemoveFromQ1(tx.ID)
				o.submitted = append(o.submitted, tx.ID)
				if agent.ReleaseBudgetSet {
					remainingBudget -= tx.RemainingAmount
				}
				o.emit(domain.PolicySubmitEvent{Base: o.base(), TxID: tx.ID})
			case domain.ActionHold:
				o.emit(domain.PolicyHoldEvent{Base: o.base(), TxID: tx.ID, Reason: "policy_hold"})
			case domain.ActionDrop:
				agent.RemoveFromQ1(tx.ID)
				tx.Status = domain.TransactionDropped
				o.daily.DroppedCount++
				o.emit(domain.PolicyDropEvent{Base: o.base(), TxID: tx.ID, Reason: "policy_drop"})
			case domain.ActionSplit, domain.ActionStaggerSplit:
				o.applySplit(agent, tx, action)
			}
		}
	}
}

func (o *Orchestrator) applySplit(agent *domain.Agent, parent *domain.Transaction, action domain.Action) {
	if !parent.Divisible {
		o.emit(domain.PolicyHoldEvent{Base: o.base(), TxID: parent.ID, Reason: "non_divisible"})
		return
	}
	children, err := policyeval.SplitChildren(parent, action.NumSplits, func(i int) domain.TxID { return o.nextTxID() })
	if err != nil {
		return
	}
	if action.Kind == domain.ActionStaggerSplit && action.PriorityBoostChildren != 0 {
		for i := range children {
			children[i].Priority += action.PriorityBoostChildren
		}
	}
	agent.RemoveFromQ1(parent.ID)
	parent.RemainingAmount = 0
	parent.Status = domain.TransactionSettled

	var childIDs []domain.TxID
	var amounts []domain.Money
	firstThisTick := true
	gap := action.StaggerGapTicks
	if action.Kind == domain.ActionStaggerSplit {
		firstThisTick = action.FirstChildThisTick
	} else {
		gap = 0
	}
	schedule := policyeval.StaggerSchedule(o.tick, len(children), firstThisTick, gap)

	for i := range children {
		child := children[i]
		childIDs = append(childIDs, child.ID)
		amounts = append(amounts, child.Amount)
		if schedule[i] <= o.tick {
			o.placeArrival(child)
		} else {
			o.txs[child.ID] = &children[i]
			o.txOrder = append(o.txOrder, child.ID)
			children[i].Status = domain.TransactionPending
			o.pendingStaggeredArrivals[schedule[i]] = append(o.pendingStaggeredArrivals[schedule[i]], child.ID)
		}
	}
	o.splitChildren[agent.ID] += len(children)
	o.emit(domain.PolicySplitEvent{Base: o.base(), ParentID: parent.ID, ChildIDs: childIDs, Amounts: amounts})
}

// ---- step 5: RTGS submission ----

func (o *Orchestrator) stepRTGSSubmission() {
	submitted := o.submitted
	o.submitted = nil
	for _, txID := range submitted {
		tx := o.txs[txID]
		sender, receiver := o.agents[tx.SenderID], o.agents[tx.ReceiverID]
		wasOverdue := tx.Status == domain.TransactionOverdue
		res := rtgs.Attempt(tx, sender, receiver, o.scenario.Global.DeferredCrediting)
		if res.Settled {
			tx.RemainingAmount = 0
			tx.Status = domain.TransactionSettled
			o.emit(domain.RtgsImmediateSettlementEvent{
				Base: o.base(), TxID: tx.ID, SenderID: sender.ID, ReceiverID: receiver.ID,
				Amount: tx.Amount, SenderBalanceBefore: res.SenderBalanceBefore, SenderBalanceAfter: res.SenderBalanceAfter,
			})
			o.recordSettlement(tx, wasOverdue)
			if !res.DeferredCredit {
				o.triggerRelease(receiver.ID, domain.ReleaseIncomingPayment)
			}
		} else {
			if !wasOverdue {
				tx.Status = domain.TransactionInQ2
			}
			o.q2 = append(o.q2, tx.ID)
			sender.Q2Membership[tx.ID] = true
			if o.scenario.Global.LSM.EntryDispositionOffsetting {
				o.entryDispositionCheck(tx.ID)
			}
		}
	}
}

// entryDispositionCheck runs a narrow bilateral-offset pass scoped to only
// the pair of agents newID touches, as a tx enters Q2 (spec.md §9 open
// question (c)).
func (o *Orchestrator) entryDispositionCheck(newID domain.TxID) {
	tx := o.txs[newID]
	var scoped []domain.TxID
	for _, id := range o.q2 {
		t := o.txs[id]
		if t.Status != domain.TransactionInQ2 {
			continue
		}
		if (t.SenderID == tx.SenderID && t.ReceiverID == tx.ReceiverID) ||
			(t.SenderID == tx.ReceiverID && t.ReceiverID == tx.SenderID) {
			scoped = append(scoped, id)
		}
	}
	results := lsm.BilateralOffset(scoped, o.txs, o, "entry_disposition")
	for _, r := range results {
		o.emit(domain.LsmBilateralOffsetEvent{Base: o.base(), TxIDA: r.TxAB, TxIDB: r.TxBA, AmountA: r.AmountAB, AmountB: r.AmountBA, NetSettled: r.NetSettled, Reason: r.Reason})
	}
	if len(results) > 0 {
		o.pruneSettledFromQ2()
		o.triggerRelease(tx.SenderID, domain.ReleaseQ2EntryOffset)
		o.triggerRelease(tx.ReceiverID, domain.ReleaseQ2EntryOffset)
	}
}

// ---- step 6: LSM ----

func (o *Orchestrator) stepLSM() {
	lsmCfg := o.scenario.Global.LSM
	if lsmCfg.EnableBilateral {
		results := lsm.BilateralOffset(o.q2, o.txs, o, "phase")
		for _, r := range results {
			o.emit(domain.LsmBilateralOffsetEvent{Base: o.base(), TxIDA: r.TxAB, TxIDB: r.TxBA, AmountA: r.AmountAB, AmountB: r.AmountBA, NetSettled: r.NetSettled, Reason: r.Reason})
		}
		o.pruneSettledFromQ2()
	}
	if lsmCfg.EnableCycles {
		maxLen := lsmCfg.MaxCycleLength
		if maxLen <= 0 {
			maxLen = 10
		}
		maxCycles := lsmCfg.MaxCyclesPerTick
		if maxCycles <= 0 {
			maxCycles = 1
		}
		cycles := lsm.MultilateralCycles(o.q2, o.txs, o, maxLen, maxCycles)
		for _, c := range cycles {
			netPositions := make([]domain.Money, len(c.Agents))
			maxOutflowAgent := domain.AgentID("")
			if len(c.Agents) > 0 {
				maxOutflowAgent = c.Agents[0]
			}
			o.emit(domain.LsmCycleSettlementEvent{
				Base: o.base(), Agents: c.Agents, TxIDs: c.TxIDs, TxAmounts: c.TxAmounts,
				NetPositions: netPositions, MaxOutflowAgent: maxOutflowAgent, TotalValue: c.TotalValue,
			})
		}
		o.pruneSettledFromQ2()
	}
}

// ---- step 7: Q2 release cascade ----

func (o *Orchestrator) stepQ2ReleaseCascade() {
	for _, id := range o.agentOrder {
		o.triggerRelease(id, domain.ReleaseNewLiquidity)
	}

	// algorithm_sequencing=true interleaves one extra bilateral-offset pass
	// after the release cascade, since a release can free up a second
	// opposing-pair offset that the earlier step-6 pass couldn't see yet
	// (spec.md §9 open question (a)); =false leaves offsetting to its one
	// fixed point in the loop.
	if o.scenario.Global.AlgorithmSequencing && o.scenario.Global.LSM.EnableBilateral {
		results := lsm.BilateralOffset(o.q2, o.txs, o, "phase")
		for _, r := range results {
			o.emit(domain.LsmBilateralOffsetEvent{Base: o.base(), TxIDA: r.TxAB, TxIDB: r.TxBA, AmountA: r.AmountAB, AmountB: r.AmountBA, NetSettled: r.NetSettled, Reason: r.Reason})
		}
		if len(results) > 0 {
			o.pruneSettledFromQ2()
			for _, id := range o.agentOrder {
				o.triggerRelease(id, domain.ReleaseNewLiquidity)
			}
		}
	}
}

// triggerRelease attempts settlement of agentID's Q2-resident outgoing
// transactions in release-priority order, bounded by the shared per-tick
// release budget, cascading to the receiver of each settled transaction
// (unless deferred crediting defers the receiver's balance change).
func (o *Orchestrator) triggerRelease(agentID domain.AgentID, reason domain.Queue2ReleaseReason) {
	if o.q2ReleaseBudget <= 0 {
		return
	}
	for o.q2ReleaseBudget > 0 {
		ids := o.q2IDsForSender(agentID)
		if len(ids) == 0 {
			return
		}
		ordered := queue.Q2Order(ids, o.txs, o.scenario.Global.PriorityEscalation, o.tick)
		headID := ordered[0]
		tx := o.txs[headID]
		sender, receiver := o.agents[tx.SenderID], o.agents[tx.ReceiverID]
		wasOverdue := tx.Status == domain.TransactionOverdue
		o.q2ReleaseBudget--
		res := rtgs.ReleaseAttempt(tx, sender, receiver, o.scenario.Global.DeferredCrediting)
		if !res.Settled {
			return
		}
		tx.RemainingAmount = 0
		tx.Status = domain.TransactionSettled
		o.removeFromQ2(tx.ID)
		o.emit(domain.Queue2LiquidityReleaseEvent{
			Base: o.base(), TxID: tx.ID, SenderID: sender.ID, ReceiverID: receiver.ID,
			Amount: tx.Amount, QueueWaitTicks: o.tick - tx.ArrivalTick, Reason: reason,
		})
		o.recordSettlement(tx, wasOverdue)
		if !res.DeferredCredit {
			o.triggerRelease(receiver.ID, domain.ReleaseIncomingPayment)
		}
	}
}

func (o *Orchestrator) q2IDsForSender(agentID domain.AgentID) []domain.TxID {
	var ids []domain.TxID
	for _, id := range o.q2 {
		tx, ok := o.txs[id]
		if ok && (tx.Status == domain.TransactionInQ2 || tx.Status == domain.TransactionOverdue) && tx.SenderID == agentID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (o *Orchestrator) removeFromQ2(id domain.TxID) {
	for i, existing := range o.q2 {
		if existing == id {
			o.q2 = append(o.q2[:i], o.q2[i+1:]...)
			break
		}
	}
	if tx, ok := o.txs[id]; ok {
		delete(o.agents[tx.SenderID].Q2Membership, id)
	}
}

func (o *Orchestrator) pruneSettledFromQ2() {
	kept := o.q2[:0:0]
	for _, id := range o.q2 {
		tx := o.txs[id]
		if tx.Status == domain.TransactionSettled {
			delete(o.agents[tx.SenderID].Q2Membership, id)
			continue
		}
		kept = append(kept, id)
	}
	o.q2 = kept
}

// ---- step 8: end-of-tick collateral tree ----

func (o *Orchestrator) stepEndOfTickCollateral() {
	for _, id := range o.agentOrder {
		agent := o.agents[id]
		cfg := o.configs[id]
		if cfg.Policy.EndOfTickCollateralTree != nil {
			o.evalCollateralTree(agent, cfg, cfg.Policy.EndOfTickCollateralTree, domain.TreeEndOfTickCollateral)
		}
	}
}

// ---- step 9: deferred crediting ----

func (o *Orchestrator) stepDeferredCrediting() {
	if !o.scenario.Global.DeferredCrediting {
		return
	}
	for _, id := range o.agentOrder {
		agent := o.agents[id]
		if agent.DeferredCreditAccumulator <= 0 {
			continue
		}
		amount := agent.DeferredCreditAccumulator
		agent.Balance += amount
		agent.DeferredCreditAccumulator = 0
		o.emit(domain.DeferredCreditAppliedEvent{Base: o.base(), AgentID: agent.ID, Amount: amount})
		o.triggerRelease(agent.ID, domain.ReleaseIncomingPayment)
	}
}

// ---- step 10: overdue scan ----

func (o *Orchestrator) stepOverdueScan() {
	for _, id := range o.txOrder {
		tx := o.txs[id]
		switch tx.Status {
		case domain.TransactionPending, domain.TransactionInQ1, domain.TransactionInQ2:
			if tx.IsOverdue(o.tick) {
				tx.Status = domain.TransactionOverdue
				o.deadlineHits[tx.SenderID]++
				o.emit(domain.TransactionWentOverdueEvent{Base: o.base(), TxID: tx.ID})
			}
		}
	}
}

// ---- step 11: cost accrual ----

func (o *Orchestrator) stepCostAccrual() {
	var lines []domain.AgentCostLine
	for _, id := range o.agentOrder {
		agent := o.agents[id]
		residents := o.residentsFor(id)
		got := cost.Tick(agent.CreditUsed(), agent.PostedCollateral, residents, o.deadlineHits[id], o.splitChildren[id], o.scenario.Global.Cost)
		if got.Total() == 0 {
			continue
		}
		agent.AccumulatedCosts.Add(got)
		o.daily.TotalCosts.Add(got)
		lines = append(lines, domain.AgentCostLine{AgentID: id, Costs: got})
	}
	if len(lines) > 0 {
		o.emit(domain.CostAccrualEvent{Base: o.base(), Lines: lines})
	}
}

func (o *Orchestrator) residentsFor(agentID domain.AgentID) []cost.QueueResident {
	var out []cost.QueueResident
	for _, id := range o.txOrder {
		tx := o.txs[id]
		if tx.SenderID != agentID {
			continue
		}
		switch tx.Status {
		case domain.TransactionInQ1, domain.TransactionInQ2, domain.TransactionOverdue:
			out = append(out, cost.QueueResident{RemainingAmount: tx.RemainingAmount, Overdue: tx.Status == domain.TransactionOverdue})
		}
	}
	return out
}

// ---- step 12: end of day ----

func (o *Orchestrator) stepEndOfDay() {
	ticksPerDay := o.scenario.TicksPerDay
	if ticksPerDay <= 0 || (o.tick+1)%ticksPerDay != 0 {
		return
	}
	day := o.tick / ticksPerDay
	o.emit(domain.EndOfDayEvent{Base: o.base(), Day: day, Stats: o.daily})
	o.daily = domain.DailyStats{}
	o.resetDailyAccumulators()
}

func (o *Orchestrator) resetDailyAccumulators() {
	for _, id := range o.agentOrder {
		agent := o.agents[id]
		cfg := o.configs[id]
		agent.BilateralLimits = make(map[domain.AgentID]domain.Money)
		for cp, limit := range cfg.BilateralLimits {
			agent.BilateralLimits[cp] = limit
		}
		agent.MultilateralLimitRemaining = cfg.MultilateralLimit
	}
}

// recordSettlement updates daily aggregate stats for a just-settled
// transaction, emitting OverdueTransactionSettled if it had gone overdue
// before settling.
func (o *Orchestrator) recordSettlement(tx *domain.Transaction, wasOverdue bool) {
	o.daily.SettledCount++
	o.daily.TotalSettledValue += tx.Amount
	if wasOverdue {
		o.daily.OverdueCount++
		o.emit(domain.OverdueTransactionSettledEvent{Base: o.base(), TxID: tx.ID, TicksOverdue: o.tick - tx.DeadlineTick})
	}
}
