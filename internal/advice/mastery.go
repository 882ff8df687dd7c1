package advice

// Mastery EMA weights: the rolling score leans on history but moves with
// recent performance.
const (
	masteryOldWeight = 7
	masteryNewWeight = 3
)

// NextMastery folds a new attempt percentage into the rolling per-module
// mastery score. The first attempt sets the score directly; afterwards an
// exponential moving average (70/30) is applied, rounded half-up. The result
// always stays in [0,100].
func NextMastery(old, attempts, percentage int) int {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	if attempts <= 0 {
		return percentage
	}

	next := (masteryOldWeight*old + masteryNewWeight*percentage + 5) / 10
	if next < 0 {
		next = 0
	}
	if next > 100 {
		next = 100
	}
	return next
}
