package registry

import "sort"

// Counts is a frequency table keyed by label.
type Counts map[string]int

// Count is one row of a frequency table.
type Count struct {
	Label string
	N     int
}

// Sorted returns the rows by descending count, ties alphabetically.
func (c Counts) Sorted() []Count {
	out := make([]Count, 0, len(c))
	for k, v := range c {
		out = append(out, Count{Label: k, N: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Summary is the server-computed aggregate over all registered models.
// An empty registry serializes as {} and decodes to the zero Summary.
type Summary struct {
	TotalModels  int    `json:"total_models"`
	Algorithms   Counts `json:"algorithms"`
	Functions    Counts `json:"functions"`
	Languages    Counts `json:"languages"`
	ModelTypes   Counts `json:"model_types"`
	TargetLevels Counts `json:"target_levels,omitempty"`
	Tools        Counts `json:"tools"`
}
