package opponent

// PoolCandidate is one move of the final candidate pool, with its
// score drop below the pool's best move.
type PoolCandidate struct {
	Move  string
	Score int
	Drop  int
}

// Meta is the decision trace of a single pick. It records every budget
// and widening step that shaped the choice, so a pick can be replayed
// and audited. Immutable once returned.
type Meta struct {
	Seed uint64

	Band       string
	HistoryLen int

	// Budgets actually used by the last analysis request, and the
	// final score-drop tolerance in force when the pool was built.
	TimeMs  int
	Lines   int
	DropTol int

	// Widening steps taken, in the order they were consumed.
	DropBumps []int
	LineBumps []int
	TimeBumps []int

	// BookLine names the opening line when book play produced the
	// move. The engine is never called on a book hit.
	BookLine string

	Pool []PoolCandidate

	// Imperfection names the mechanism that replaced the weighted
	// draw, empty when none fired.
	Imperfection string

	Temperature float64
}

// Result is a picked move together with a short machine-readable
// reason and the full decision trace.
type Result struct {
	Move   string
	Reason string
	Meta   Meta
}
