package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Node is one entry of a flattened decision tree. The root is node 0.
//
// Internal nodes send a row left when row[Feature] <= Threshold and right
// otherwise. Leaves carry one weight per class (sample counts as exported
// from the training run); only their proportions matter.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Leaf      bool      `json:"leaf"`
	Value     []float64 `json:"value,omitempty"`
}

// Tree is a flattened decision tree.
type Tree []Node

// Forest is a random forest exported to JSON. Predictions average the
// normalised leaf distributions of every tree and pick the most probable
// class; ties go to the lowest class position.
type Forest struct {
	NFeatures int    `json:"n_features"`
	Classes   []int  `json:"classes"`
	Trees     []Tree `json:"trees"`
}

// Load reads and validates a forest artifact from path.
func Load(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open model artifact %s", path)
	}
	defer f.Close()

	forest, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load model artifact %s", path)
	}
	return forest, nil
}

// Decode reads a forest from r and validates its structure.
func Decode(r io.Reader) (*Forest, error) {
	var forest Forest
	if err := json.NewDecoder(r).Decode(&forest); err != nil {
		return nil, errors.Wrap(err, "decoding forest")
	}
	if err := forest.Validate(); err != nil {
		return nil, err
	}
	return &forest, nil
}

// Validate checks that every tree is walkable: children point forward and
// stay in range, split features exist and leaves have one weight per class.
// A forward-only tree cannot loop, so Predict always terminates.
func (f *Forest) Validate() error {
	if f.NFeatures <= 0 {
		return errors.New("forest must declare a positive n_features")
	}
	if len(f.Classes) == 0 {
		return errors.New("forest must declare at least one class")
	}
	if len(f.Trees) == 0 {
		return errors.New("forest must contain at least one tree")
	}

	for t, tree := range f.Trees {
		if len(tree) == 0 {
			return fmt.Errorf("tree %d is empty", t)
		}
		for i, node := range tree {
			if node.Leaf {
				if len(node.Value) != len(f.Classes) {
					return fmt.Errorf("tree %d node %d: leaf has %d weights, want %d", t, i, len(node.Value), len(f.Classes))
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= f.NFeatures {
				return fmt.Errorf("tree %d node %d: feature %d out of range", t, i, node.Feature)
			}
			if node.Left <= i || node.Left >= len(tree) || node.Right <= i || node.Right >= len(tree) {
				return fmt.Errorf("tree %d node %d: children (%d, %d) out of range", t, i, node.Left, node.Right)
			}
		}
	}
	return nil
}

// NumFeatures reports the row width the forest was trained on.
func (f *Forest) NumFeatures() int {
	return f.NFeatures
}

// Predict returns one class per row of x.
func (f *Forest) Predict(x [][]float64) ([]int, error) {
	out := make([]int, 0, len(x))
	for r, row := range x {
		if len(row) != f.NFeatures {
			return nil, fmt.Errorf("row %d has %d features, want %d", r, len(row), f.NFeatures)
		}
		out = append(out, f.predictRow(row))
	}
	return out, nil
}

func (f *Forest) predictRow(row []float64) int {
	proba := make([]float64, len(f.Classes))
	for _, tree := range f.Trees {
		leaf := tree.walk(row)

		var total float64
		for _, w := range leaf.Value {
			total += w
		}
		if total <= 0 {
			continue
		}
		for c, w := range leaf.Value {
			proba[c] += w / total
		}
	}

	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.Classes[best]
}

func (t Tree) walk(row []float64) Node {
	idx := 0
	for !t[idx].Leaf {
		node := t[idx]
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return t[idx]
}
