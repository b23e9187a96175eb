// Package lsm implements the two liquidity-saving phases that run over Q2
// after RTGS (spec.md §4.7): bilateral offset between transaction pairs,
// and bounded multilateral cycle detection/settlement. Grounded on the
// teacher's GridlockResolver (internal/blockchain/banking/lsm.go), whose
// insolvency-repair-by-removal heuristic is replaced here with the
// deterministic tie-broken cycle enumeration spec.md §4.7 requires — this
// engine never silently drops an obligation to reach solvency.
package lsm

import (
	"sort"

	"kyd/internal/domain"
	"kyd/internal/queue"
)

// Ledger is the subset of orchestrator-owned state LSM needs.
type Ledger interface {
	Agent(id domain.AgentID) *domain.Agent
}

// BilateralOffsetResult is one settled offset operation between a single
// A→B transaction and a single B→A transaction (spec.md §4.7).
type BilateralOffsetResult struct {
	TxAB, TxBA     domain.TxID
	AmountAB       domain.Money // portion of TxAB settled by this operation
	AmountBA       domain.Money // portion of TxBA settled by this operation
	NetSettled     domain.Money
	Reason         string // "phase" or "entry_disposition"
}

// BilateralOffset scans every unordered agent pair with opposing Q2
// transactions and greedily offsets the highest-priority pair of
// transactions until one side of that pair is exhausted, moving to the
// next pair, until no opposing pair remains (spec.md §4.7). ids must be the
// full current Q2 membership; txs and ledger are mutated in place. reason
// is stamped onto every emitted result ("phase" for the end-of-tick pass,
// "entry_disposition" for the lightweight on-entry check).
func BilateralOffset(ids []domain.TxID, txs map[domain.TxID]*domain.Transaction, ledger Ledger, reason string) []BilateralOffsetResult {
	var results []BilateralOffsetResult

	pairs := unorderedAgentPairs(ids, txs)
	for _, pair := range pairs {
		ab := outgoingQueue(ids, txs, pair.a, pair.b)
		ba := outgoingQueue(ids, txs, pair.b, pair.a)
		if len(ab) == 0 || len(ba) == 0 {
			continue
		}
		for len(ab) > 0 && len(ba) > 0 {
			head := txs[ab[0]]
			tail := txs[ba[0]]
			amount := domain.Min(head.RemainingAmount, tail.RemainingAmount)
			if amount <= 0 {
				break
			}

			settleAmount(head, amount, pair.a, pair.b, ledger)
			settleAmount(tail, amount, pair.b, pair.a, ledger)

			results = append(results, BilateralOffsetResult{
				TxAB:       head.ID,
				TxBA:       tail.ID,
				AmountAB:   amount,
				AmountBA:   amount,
				NetSettled: amount,
				Reason:     reason,
			})

			if head.RemainingAmount == 0 {
				ab = ab[1:]
			}
			if tail.RemainingAmount == 0 {
				ba = ba[1:]
			}
		}
	}
	return results
}

// settleAmount reduces tx.RemainingAmount by amount, moves the balance
// between sender and receiver (via Ledger lookup), and marks the
// transaction Settled once fully consumed. LSM settlement never requires a
// liquidity check (spec.md §4.7): the offsetting flow's net effect on both
// balances cancels within the same operation.
func settleAmount(tx *domain.Transaction, amount domain.Money, sender, receiver domain.AgentID, ledger Ledger) {
	s, r := ledger.Agent(sender), ledger.Agent(receiver)
	s.Balance -= amount
	r.Balance += amount
	tx.RemainingAmount -= amount
	if tx.RemainingAmount == 0 {
		tx.Status = domain.TransactionSettled
	}
}

type agentPair struct{ a, b domain.AgentID }

// unorderedAgentPairs returns every distinct unordered (a,b) pair, a<b
// lexicographically, that has at least one Q2 transaction in each
// direction, in lexicographic order for determinism.
func unorderedAgentPairs(ids []domain.TxID, txs map[domain.TxID]*domain.Transaction) []agentPair {
	seen := make(map[agentPair]bool)
	var out []agentPair
	for _, id := range ids {
		tx := txs[id]
		a, b := tx.SenderID, tx.ReceiverID
		if a == b {
			continue
		}
		if b < a {
			a, b = b, a
		}
		p := agentPair{a, b}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].a != out[j].a {
			return out[i].a < out[j].a
		}
		return out[i].b < out[j].b
	})
	return out
}

// outgoingQueue returns the Q2-resident transaction ids from sender to
// receiver, in Q2 release-priority order (spec.md §4.5), i.e. the
// "highest-priority pair" greedy match order.
func outgoingQueue(ids []domain.TxID, txs map[domain.TxID]*domain.Transaction, sender, receiver domain.AgentID) []domain.TxID {
	var matching []domain.TxID
	for _, id := range ids {
		tx := txs[id]
		if tx.SenderID == sender && tx.ReceiverID == receiver && tx.RemainingAmount > 0 {
			matching = append(matching, id)
		}
	}
	return queue.Q2Order(matching, txs, domain.PriorityEscalation{}, 0)
}

// Cycle is one accepted multilateral cycle settlement.
type Cycle struct {
	Agents     []domain.AgentID // ordered, cycle closes back to Agents[0]
	TxIDs      []domain.TxID    // settled transaction ids, one (or more, if an edge spans several txs) per edge, in edge order
	TxAmounts  []domain.Money   // amount settled for each corresponding TxIDs entry
	CycleMin   domain.Money
	TotalValue domain.Money
}

// MultilateralCycles enumerates and greedily accepts up to maxCycles
// directed simple cycles of length 3..maxLen over the condensed Q2 graph
// (spec.md §4.7), settling each accepted cycle's cycle_min along every
// edge. It mutates txs/ledger for every accepted cycle and returns them in
// acceptance order.
func MultilateralCycles(ids []domain.TxID, txs map[domain.TxID]*domain.Transaction, ledger Ledger, maxLen, maxCycles int) []Cycle {
	var accepted []Cycle
	remaining := append([]domain.TxID(nil), ids...)

	for i := 0; i < maxCycles; i++ {
		graph := buildGraph(remaining, txs)
		candidates := enumerateCycles(graph, maxLen)
		if len(candidates) == 0 {
			break
		}
		best := pickBest(candidates, graph, txs)
		if best == nil {
			break
		}
		if !solvent(*best, graph, ledger) {
			break
		}
		settledIDs, settledAmounts := applyCycle(*best, graph, txs, ledger)
		accepted = append(accepted, Cycle{
			Agents:     best.agents,
			TxIDs:      settledIDs,
			TxAmounts:  settledAmounts,
			CycleMin:   best.min,
			TotalValue: best.min * domain.Money(len(best.agents)),
		})
		remaining = filterSettled(remaining, txs)
	}
	return accepted
}

type graphEdge struct {
	txs      []domain.TxID // Q2 order, positive remaining_amount
	capacity domain.Money
}

type graph map[domain.AgentID]map[domain.AgentID]*graphEdge

func buildGraph(ids []domain.TxID, txs map[domain.TxID]*domain.Transaction) graph {
	g := make(graph)
	byPair := make(map[agentPair][]domain.TxID)
	for _, id := range ids {
		tx := txs[id]
		if tx.RemainingAmount <= 0 || tx.SenderID == tx.ReceiverID {
			continue
		}
		p := agentPair{tx.SenderID, tx.ReceiverID}
		byPair[p] = append(byPair[p], id)
	}
	for p, pairIDs := range byPair {
		ordered := queue.Q2Order(pairIDs, txs, domain.PriorityEscalation{}, 0)
		var cap domain.Money
		for _, id := range ordered {
			cap += txs[id].RemainingAmount
		}
		if g[p.a] == nil {
			g[p.a] = make(map[domain.AgentID]*graphEdge)
		}
		g[p.a][p.b] = &graphEdge{txs: ordered, capacity: cap}
	}
	return g
}

type cycleCandidate struct {
	agents []domain.AgentID
	min    domain.Money
}

// enumerateCycles performs a bounded DFS over g finding every simple
// directed cycle of length 3..maxLen whose lexicographically smallest node
// is the start node, so each cycle is discovered exactly once regardless
// of rotation (a loose, deterministic stand-in for Johnson's algorithm, as
// spec.md §4.7 permits).
func enumerateCycles(g graph, maxLen int) []cycleCandidate {
	var starts []domain.AgentID
	for a := range g {
		starts = append(starts, a)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var out []cycleCandidate
	for _, start := range starts {
		var path []domain.AgentID
		visited := make(map[domain.AgentID]bool)
		var dfs func(cur domain.AgentID, capMin domain.Money)
		dfs = func(cur domain.AgentID, capMin domain.Money) {
			if len(path) > maxLen {
				return
			}
			for next, edge := range g[cur] {
				if next < start {
					continue // only explore nodes >= start to dedup rotations
				}
				nextCapMin := domain.Min(capMin, edge.capacity)
				if next == start {
					if len(path) >= 3 {
						out = append(out, cycleCandidate{agents: append([]domain.AgentID(nil), path...), min: nextCapMin})
					}
					continue
				}
				if visited[next] {
					continue
				}
				visited[next] = true
				path = append(path, next)
				dfs(next, nextCapMin)
				path = path[:len(path)-1]
				visited[next] = false
			}
		}
		path = append(path, start)
		visited[start] = true
		dfs(start, domain.Max(0, 1<<62))
		visited[start] = false
	}
	return out
}

// pickBest applies the tie-break order of spec.md §4.7 plus the Open
// Question (b) decision recorded in DESIGN.md: total value desc, length
// asc, lexicographically smallest agent list, earliest minimum
// arrival_tick among the cycle's transactions, lexicographically smallest
// ordered tx-id list.
func pickBest(candidates []cycleCandidate, g graph, txs map[domain.TxID]*domain.Transaction) *cycleCandidate {
	type scored struct {
		c        cycleCandidate
		total    domain.Money
		length   int
		minArr   int
		txIDs    []domain.TxID
	}
	var scoredList []scored
	for _, c := range candidates {
		if c.min <= 0 {
			continue
		}
		txIDs := edgeTxIDsForCycle(c, g)
		minArr := 1 << 62
		for _, id := range txIDs {
			if a := txs[id].ArrivalTick; a < minArr {
				minArr = a
			}
		}
		scoredList = append(scoredList, scored{
			c:      c,
			total:  c.min * domain.Money(len(c.agents)),
			length: len(c.agents),
			minArr: minArr,
			txIDs:  txIDs,
		})
	}
	if len(scoredList) == 0 {
		return nil
	}
	sort.Slice(scoredList, func(i, j int) bool {
		si, sj := scoredList[i], scoredList[j]
		if si.total != sj.total {
			return si.total > sj.total
		}
		if si.length != sj.length {
			return si.length < sj.length
		}
		if cmp := compareAgentLists(si.c.agents, sj.c.agents); cmp != 0 {
			return cmp < 0
		}
		if si.minArr != sj.minArr {
			return si.minArr < sj.minArr
		}
		return compareTxIDLists(si.txIDs, sj.txIDs) < 0
	})
	best := scoredList[0].c
	return &best
}

func edgeTxIDsForCycle(c cycleCandidate, g graph) []domain.TxID {
	var ids []domain.TxID
	n := len(c.agents)
	for i := 0; i < n; i++ {
		a := c.agents[i]
		b := c.agents[(i+1)%n]
		if edge := g[a][b]; edge != nil {
			ids = append(ids, edge.txs...)
		}
	}
	return ids
}

func compareAgentLists(a, b []domain.AgentID) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func compareTxIDLists(a, b []domain.TxID) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// solvent checks spec.md §4.7's acceptance rule: every participating
// agent's available_liquidity + cycle_inflow >= cycle_outflow. For a
// simple cycle with a single uniform cycle_min on every edge, inflow and
// outflow are always equal, so this is always true; the check is computed
// explicitly rather than assumed, in case a future edge-weighting scheme
// breaks that symmetry.
func solvent(c cycleCandidate, g graph, ledger Ledger) bool {
	for _, a := range c.agents {
		agent := ledger.Agent(a)
		if agent.AvailableLiquidity()+c.min < c.min {
			return false
		}
	}
	return true
}

// applyCycle settles cycle_min along every edge of c, consuming
// transactions in Q2 order (partially settling the edge's last
// transaction if it does not divide evenly), and returns the ids touched
// with the amount settled against each.
func applyCycle(c cycleCandidate, g graph, txs map[domain.TxID]*domain.Transaction, ledger Ledger) ([]domain.TxID, []domain.Money) {
	var touchedIDs []domain.TxID
	var touchedAmounts []domain.Money
	n := len(c.agents)
	for i := 0; i < n; i++ {
		a := c.agents[i]
		b := c.agents[(i+1)%n]
		edge := g[a][b]
		remaining := c.min
		for _, id := range edge.txs {
			if remaining <= 0 {
				break
			}
			tx := txs[id]
			take := domain.Min(remaining, tx.RemainingAmount)
			settleAmount(tx, take, a, b, ledger)
			remaining -= take
			touchedIDs = append(touchedIDs, id)
			touchedAmounts = append(touchedAmounts, take)
		}
	}
	return touchedIDs, touchedAmounts
}

func filterSettled(ids []domain.TxID, txs map[domain.TxID]*domain.Transaction) []domain.TxID {
	out := ids[:0:0]
	for _, id := range ids {
		if txs[id].RemainingAmount > 0 {
			out = append(out, id)
		}
	}
	return out
}
