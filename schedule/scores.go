package schedule

// Side identifies which side of a match won, if any.
type Side int

const (
	NoSide Side = iota
	HomeSide
	AwaySide
)

// ComputeWinner tallies recorded per-game scores against a best-of count and
// returns the winning side once one side holds the majority of games.
// A bestOf of 0 or less is interpreted as best-of over the games submitted so
// far. Drawn games count for neither side; NoSide means the series is still
// undecided.
func ComputeWinner(games []GameScore, bestOf int) Side {
	if bestOf <= 0 {
		bestOf = len(games)
		if bestOf == 0 {
			return NoSide
		}
	}
	needed := bestOf/2 + 1

	var home, away int
	for _, g := range games {
		switch {
		case g.Home > g.Away:
			home++
		case g.Away > g.Home:
			away++
		}
	}
	switch {
	case home >= needed:
		return HomeSide
	case away >= needed:
		return AwaySide
	default:
		return NoSide
	}
}
