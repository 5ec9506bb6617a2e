package xcorr

// Peak finds the index and value of the maximum in a correlation result.
//
// Ties are broken by the first occurrence: when several indices share the
// maximum value, the lowest index wins. This policy is relied upon by
// time-delay estimators and must not change.
func Peak(corr []float64) (index int, value float64) {
	if len(corr) == 0 {
		return -1, 0
	}

	index = 0
	value = corr[0]

	for i, v := range corr {
		if v > value {
			index = i
			value = v
		}
	}

	return index, value
}

// LagFromIndex converts a correlation result index to a sample lag.
// For a correlation of signals with lengths lenA and lenB,
// the lag at index i is i - (lenB - 1).
func LagFromIndex(index, lenB int) int {
	return index - (lenB - 1)
}

// IndexFromLag converts a sample lag to a correlation result index.
func IndexFromLag(lag, lenB int) int {
	return lag + (lenB - 1)
}
