package randomworld

// BuildNCM constructs the NCM named by kind ("knn" or "kde"). k is used
// only for "knn"; kernel/bandwidth are reserved for "kde" (see KDE doc).
func BuildNCM(kind string, k int, kernel string, bandwidth *float64) (NCM, error) {
	switch kind {
	case "knn":
		return NewKNN(k), nil
	case "kde":
		bw := 0.0
		if bandwidth != nil {
			bw = *bandwidth
		}
		return NewKDE(kernel, bw), nil
	default:
		return nil, Wrapper(ErrNCM, "BuildNCM: unknown ncm kind "+kind)
	}
}

// CountLabels returns 1 + the maximum label seen in targets, used to infer
// n_labels when it isn't supplied explicitly.
func CountLabels(targets []int) int {
	max := -1
	for _, y := range targets {
		if y > max {
			max = y
		}
	}

	return max + 1
}
