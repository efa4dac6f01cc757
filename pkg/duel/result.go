package duel

// Result represents the outcome of a single game from the challenger's
// point of view.
type Result int

const (
	Win  Result = +1
	Draw Result = 0
	Loss Result = -1
)

// String returns the conventional scoreline for the given Result.
func (result Result) String() string {
	switch result {
	case Win:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case Loss:
		return "0-1"
	default:
		return "?-?"
	}
}

// PairResult represents the combined outcome of a color-reversed game
// pair.
type PairResult int

const (
	WinWin   = PairResult(Win + Win)   // Challenger double kills
	WinDraw  = PairResult(Win + Draw)  // Challenger wins and holds
	DrawDraw = PairResult(Draw + Draw) // Win-loss or draw-draw
	DrawLoss = PairResult(Draw + Loss) // Defender wins and holds
	LossLoss = PairResult(Loss + Loss) // Defender double kills
)

// pairOf combines the challenger-perspective results of the two games
// of a pair.
func pairOf(first, second Result) PairResult {
	return PairResult(first + second)
}
