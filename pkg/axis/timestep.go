package axis

import "time"

const day = 24 * time.Hour

// TimeSteps is the ascending catalogue of time axis tick intervals.
var TimeSteps = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	2 * time.Hour,
	4 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	day,
	2 * day,
	3 * day,
	7 * day,
	14 * day,
	30 * day,
}

// DayMs is one day in milliseconds, the boundary between time-of-day and
// date-only labels.
var DayMs = ms(day)

func ms(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}

// PickTimeStep returns, in milliseconds, the first TimeSteps entry that is at
// least rangeMs/targetTicks. Ranges too wide for the table get the largest
// entry, empty or negative ranges the smallest.
func PickTimeStep(rangeMs float64, targetTicks int) float64 {
	if !(rangeMs > 0) {
		return ms(TimeSteps[0])
	}
	if targetTicks < 1 {
		targetTicks = 1
	}

	rough := rangeMs / float64(targetTicks)
	for _, step := range TimeSteps {
		if ms(step) >= rough {
			return ms(step)
		}
	}

	return ms(TimeSteps[len(TimeSteps)-1])
}
