package okr

// equalShares splits 100 across n siblings: everyone gets floor(100/n) and
// the first 100%n siblings, in collection order, get one extra point. The
// shares always sum to exactly 100 for n >= 1.
func equalShares(n int) []int {
	if n <= 0 {
		return nil
	}
	base := 100 / n
	remainder := 100 - base*n
	shares := make([]int, n)
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares
}

// manualShares keeps the edited sibling at w (already clamped to [0,100])
// and splits the remaining 100-w across the others with the same
// base-plus-remainder rule, earliest sibling first. With no other siblings
// nothing moves.
func manualShares(n, edited, w int) []int {
	shares := make([]int, n)
	shares[edited] = w
	others := n - 1
	if others <= 0 {
		return shares
	}
	rest := 100 - w
	base := rest / others
	remainder := rest - base*others
	seen := 0
	for i := 0; i < n; i++ {
		if i == edited {
			continue
		}
		shares[i] = base
		if seen < remainder {
			shares[i]++
		}
		seen++
	}
	return shares
}

// BalanceObjectives assigns equal-balance weights to all objectives.
func (d *Document) BalanceObjectives() {
	for i, w := range equalShares(len(d.Objectives)) {
		d.Objectives[i].Weight = w
	}
}

// BalanceKeyResults assigns equal-balance weights to an objective's key
// results.
func (o *Objective) BalanceKeyResults() {
	for i, w := range equalShares(len(o.KeyResults)) {
		o.KeyResults[i].Weight = w
	}
}

// RebalanceObjectives keeps objective edited at weight w and redistributes
// the remainder across its siblings.
func (d *Document) RebalanceObjectives(edited int, w int) {
	if edited < 0 || edited >= len(d.Objectives) {
		return
	}
	for i, share := range manualShares(len(d.Objectives), edited, clampWeight(w)) {
		d.Objectives[i].Weight = share
	}
}

// RebalanceKeyResults keeps the key result at index edited at weight w and
// redistributes the remainder across its siblings.
func (o *Objective) RebalanceKeyResults(edited int, w int) {
	if edited < 0 || edited >= len(o.KeyResults) {
		return
	}
	for i, share := range manualShares(len(o.KeyResults), edited, clampWeight(w)) {
		o.KeyResults[i].Weight = share
	}
}
