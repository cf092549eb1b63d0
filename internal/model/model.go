// Package model loads the pre-trained iris classifier and maps its class
// indexes to human-readable labels.
//
// The classifier is treated as an opaque capability: callers only see the
// Classifier interface, which lets tests swap in stubs without an artifact.
package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Classifier predicts one class index per row of x.
//
// Implementations must be safe for concurrent use and must not mutate
// themselves after construction.
type Classifier interface {
	Predict(x [][]float64) ([]int, error)
}

// labels maps a class index to its species name.
var labels = [...]string{
	0: "setosa",
	1: "versicolor",
	2: "virginica",
}

// ErrUnknownClass is returned by Label when the classifier produced an index
// that has no label.
var ErrUnknownClass = errors.New("unknown class index")

// Label returns the species name for a class index.
func Label(index int) (string, error) {
	if index < 0 || index >= len(labels) {
		return "", fmt.Errorf("%w: %d", ErrUnknownClass, index)
	}
	return labels[index], nil
}

// Labels returns all species names ordered by class index.
func Labels() []string {
	out := make([]string, len(labels))
	copy(out, labels[:])
	return out
}
