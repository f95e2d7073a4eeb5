package overlay

// VerdictLabel maps the backend's sentiment bucket to its display label.
// The mapping is total: anything outside [-2,2] yields "Unknown" rather than
// a crash, since the backend contract does not stop a future version from
// widening the scale.
func VerdictLabel(verdict int) string {
	switch verdict {
	case -2:
		return "Mostly Negative"
	case -1:
		return "Negative"
	case 0:
		return "Neutral"
	case 1:
		return "Positive"
	case 2:
		return "Mostly Positive"
	default:
		return "Unknown"
	}
}

// VerdictIcon returns the asset path for the verdict's icon.
func VerdictIcon(verdict int) string {
	switch verdict {
	case -2:
		return "images/MostlyNegative.png"
	case -1:
		return "images/Negative.png"
	case 0:
		return "images/Neutral.png"
	case 1:
		return "images/Positive.png"
	case 2:
		return "images/MostlyPositive.png"
	default:
		return "images/Unknown.png"
	}
}
