package agent

// Budget tracks cumulative token consumption for one autonomous run against a
// hard ceiling. Usage only grows; once the ceiling is reached no further
// turns are attempted. The loop is single-threaded, so no locking is needed.
type Budget struct {
	used    int
	ceiling int
}

// NewBudget creates a budget with the given ceiling. A ceiling of zero or
// less means unlimited.
func NewBudget(ceiling int) *Budget {
	return &Budget{ceiling: ceiling}
}

// Add records tokens consumed by a completed turn. Negative values are
// ignored so the total never decreases.
func (b *Budget) Add(n int) {
	if n > 0 {
		b.used += n
	}
}

// Exhausted reports whether accumulated usage has reached the ceiling.
func (b *Budget) Exhausted() bool {
	return b.ceiling > 0 && b.used >= b.ceiling
}

// Used reports tokens consumed so far.
func (b *Budget) Used() int { return b.used }

// Ceiling reports the configured hard cap.
func (b *Budget) Ceiling() int { return b.ceiling }
