package domain

// Rating is a traffic-light verdict for a check or an assessment.
type Rating string

const (
	RatingGreen Rating = "GREEN"
	RatingAmber Rating = "AMBER"
	RatingRed   Rating = "RED"
)

// severity orders ratings for worst-of aggregation.
func (r Rating) severity() int {
	switch r {
	case RatingRed:
		return 2
	case RatingAmber:
		return 1
	default:
		return 0
	}
}

// WorseThan reports whether r is a more severe rating than other.
func (r Rating) WorseThan(other Rating) bool {
	return r.severity() > other.severity()
}

// WorstRating returns the most severe rating in the list, or GREEN for an
// empty list. Ratings are never averaged.
func WorstRating(ratings ...Rating) Rating {
	worst := RatingGreen
	for _, r := range ratings {
		if r.WorseThan(worst) {
			worst = r
		}
	}
	return worst
}
