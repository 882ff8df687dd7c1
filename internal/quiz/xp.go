package quiz

// XP bonus tiers for finishing with budget to spare. Running out the clock
// grants no bonus.
const (
	xpBonusHalf    = 25 // >= 50% of the budget remaining
	xpBonusQuarter = 10 // >= 25% of the budget remaining
)

// ComputeXP derives the experience points for a completed attempt. The curve
// is monotonically non-decreasing in both the percentage and the time
// remaining: base XP equals the percentage, plus a flat bonus per remaining
// time tier. Always returns an integer >= 0.
func ComputeXP(percentage, timeRemaining, timeLimit int) int {
	if percentage < 0 {
		percentage = 0
	}
	xp := percentage

	if timeLimit > 0 && timeRemaining > 0 {
		switch {
		case timeRemaining*2 >= timeLimit:
			xp += xpBonusHalf
		case timeRemaining*4 >= timeLimit:
			xp += xpBonusQuarter
		}
	}

	return xp
}
