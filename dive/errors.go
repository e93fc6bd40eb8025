package dive

import "errors"

var (
	// ErrNoDiveData indicates the requested dive number has zero matching
	// samples. Callers surface this as a "no data found" message.
	ErrNoDiveData = errors.New("no data found for dive")

	// ErrNoFeatures indicates feature extraction produced an empty result
	// for samples that did exist (e.g. every dive lacked a rating).
	ErrNoFeatures = errors.New("could not extract features")
)
