// Package arrival generates new transactions for each tick (spec.md §4.4).
// Generate is a pure function of (tick, scenario configuration, RNG state):
// it threads the RNG explicitly rather than holding any package-level
// state, so the orchestrator's tick loop stays the sole owner of
// determinism.
package arrival

import (
	"kyd/internal/domain"
	"kyd/internal/rng"
)

// IDGen mints a fresh external transaction id. The orchestrator supplies a
// deterministic generator (e.g. a per-scenario monotonic counter) so that
// replays mint identical ids.
type IDGen func() domain.TxID

// Generate draws the new transactions arriving at tick, for every agent
// configured with either arrival_config or arrival_bands, in stable
// (slice) agent order. It returns the drawn transactions and the advanced
// RNG state. Banded arrivals with neither a fixed priority nor a priority
// distribution draw their priority uniformly from the band's range
// (domain.BandUrgent, BandNormal, BandLow).
func Generate(tick, ticksPerDay int, agents []domain.AgentConfig, s rng.State, newID IDGen) ([]domain.Transaction, rng.State) {
	var out []domain.Transaction
	for _, ac := range agents {
		switch {
		case ac.ArrivalConfig != nil:
			var txs []domain.Transaction
			txs, s = generateForConfig(tick, ticksPerDay, ac.ID, agents, *ac.ArrivalConfig, nil, s, newID)
			out = append(out, txs...)
		case ac.ArrivalBands != nil:
			ranges := []domain.PriorityBand{domain.BandUrgent, domain.BandNormal, domain.BandLow}
			for i, band := range []*domain.ArrivalConfig{ac.ArrivalBands.Urgent, ac.ArrivalBands.Normal, ac.ArrivalBands.Low} {
				if band == nil {
					continue
				}
				var txs []domain.Transaction
				txs, s = generateForConfig(tick, ticksPerDay, ac.ID, agents, *band, &ranges[i], s, newID)
				out = append(out, txs...)
			}
		}
	}
	return out, s
}

func generateForConfig(tick, ticksPerDay int, sender domain.AgentID, allAgents []domain.AgentConfig, cfg domain.ArrivalConfig, band *domain.PriorityBand, s rng.State, newID IDGen) ([]domain.Transaction, rng.State) {
	count, s := rng.Poisson(s, cfg.RatePerTick)
	if count == 0 {
		return nil, s
	}
	txs := make([]domain.Transaction, 0, count)
	for i := 0; i < count; i++ {
		var amount domain.Money
		amount, s = drawAmount(cfg.Amount, s)

		var priority int
		priority, s = drawPriority(cfg, band, s)

		var receiver domain.AgentID
		var ok bool
		receiver, ok, s = drawCounterparty(sender, cfg.Counterparties, allAgents, s)
		if !ok {
			continue // no eligible counterparty; this draw is discarded, as in a self-only roster
		}

		var deadline int
		deadline, s = drawDeadline(tick, ticksPerDay, cfg, s)

		txs = append(txs, domain.Transaction{
			ID:              newID(),
			SenderID:        sender,
			ReceiverID:      receiver,
			Amount:          amount,
			RemainingAmount: amount,
			Priority:        priority,
			ArrivalTick:     tick,
			DeadlineTick:    deadline,
			Divisible:       true,
			Status:          domain.TransactionPending,
		})
	}
	return txs, s
}

// drawAmount samples the configured distribution and rounds to cents,
// truncating toward zero with a floor of one cent (spec.md §4.4).
func drawAmount(dist domain.ArrivalDistribution, s rng.State) (domain.Money, rng.State) {
	var raw float64
	switch dist.Kind {
	case domain.DistNormal:
		raw, s = rng.Normal(s, dist.Mean, dist.StdDev)
	case domain.DistLogNormal:
		raw, s = rng.LogNormal(s, dist.Mean, dist.StdDev)
	case domain.DistUniform:
		var u float64
		u, s = rng.UniformFloat(s)
		raw = dist.Min + u*(dist.Max-dist.Min)
	case domain.DistExponential:
		raw, s = rng.Exponential(s, dist.Rate)
	}
	cents := int64(raw) // truncates toward zero
	if cents < 1 {
		cents = 1
	}
	return domain.Money(cents), s
}

func drawPriority(cfg domain.ArrivalConfig, band *domain.PriorityBand, s rng.State) (int, rng.State) {
	if cfg.FixedPriority != nil {
		return *cfg.FixedPriority, s
	}
	if cfg.PriorityDist != nil {
		raw, next := drawAmount(*cfg.PriorityDist, s)
		p := int(raw)
		if p < 0 {
			p = 0
		}
		if p > 10 {
			p = 10
		}
		return p, next
	}
	lo, hi := 0, 10
	if band != nil {
		lo, hi = band.Min, band.Max
	}
	p, s := rng.UniformInt(s, lo, hi)
	return p, s
}

// drawCounterparty draws a receiver by normalized weight, excluding sender.
// If weights is empty, falls back to a uniform draw over every other
// configured agent.
func drawCounterparty(sender domain.AgentID, weights []domain.CounterpartyWeight, allAgents []domain.AgentConfig, s rng.State) (domain.AgentID, bool, rng.State) {
	var candidates []domain.AgentID
	var w []float64
	if len(weights) > 0 {
		for _, cw := range weights {
			if cw.AgentID == sender {
				continue
			}
			candidates = append(candidates, cw.AgentID)
			w = append(w, cw.Weight)
		}
	} else {
		for _, ac := range allAgents {
			if ac.ID == sender {
				continue
			}
			candidates = append(candidates, ac.ID)
			w = append(w, 1)
		}
	}
	if len(candidates) == 0 {
		return "", false, s
	}
	idx, next := rng.WeightedChoice(s, w)
	if idx < 0 {
		return "", false, next
	}
	return candidates[idx], true, next
}

// drawDeadline draws the deadline offset uniformly from [min,max], adds it
// to tick, and, if deadline_cap_at_eod is set, caps at the last tick of the
// current simulation day.
func drawDeadline(tick, ticksPerDay int, cfg domain.ArrivalConfig, s rng.State) (int, rng.State) {
	offset, next := rng.UniformInt(s, cfg.DeadlineOffsetMin, cfg.DeadlineOffsetMax)
	deadline := tick + offset
	if cfg.DeadlineCapAtEOD && ticksPerDay > 0 {
		dayOfTick := tick / ticksPerDay
		eodCap := (dayOfTick+1)*ticksPerDay - 1
		if deadline > eodCap {
			deadline = eodCap
		}
	}
	return deadline, next
}
