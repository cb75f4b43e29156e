package progression

// EstimateOneRM estimates a one-rep max from a submaximal set using the Epley
// formula: weight × (1 + reps/30). A single rep returns the weight itself;
// non-positive inputs return 0.
func EstimateOneRM(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}
