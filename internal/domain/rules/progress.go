package rules

// GoalProgress reports how far net worth has moved from the baseline captured
// at game start towards the financial goal, as a percentage clamped to
// [0, 100]. A goal at or below the baseline is degenerate: the game is either
// already at 100% or has nowhere to measure, so the clamp decides.
func GoalProgress(netWorth, initialNetWorth, goal int64) int {
	denom := goal - initialNetWorth
	if denom <= 0 {
		if netWorth >= goal {
			return 100
		}
		return 0
	}

	progress := float64(netWorth-initialNetWorth) / float64(denom) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return int(progress)
}

// RemainingMonths reports how many months are left on the horizon, the
// current month included.
func RemainingMonths(totalMonths, currentMonth int) int {
	remaining := totalMonths - currentMonth + 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MoveInMonth converts the monotonic move counter to the 1-based position
// within the current month, cycling over movesPerMonth. Before the first
// move it reports 0.
func MoveInMonth(move, movesPerMonth int) int {
	if move <= 0 {
		return 0
	}
	return (move-1)%movesPerMonth + 1
}

// MonthEndDue reports whether the move counter has crossed the current
// month's boundary and settlement must run.
func MonthEndDue(move, currentMonth, movesPerMonth int) bool {
	return move > currentMonth*movesPerMonth
}
