package models

import "fmt"

// Feature is what a cell selection triggers.
type Feature int

const (
	FeatureBFS Feature = iota
	FeatureAStar
	FeatureLinear
	FeatureCircular
)

var featureNames = map[Feature]string{
	FeatureBFS:      "bfs",
	FeatureAStar:    "astar",
	FeatureLinear:   "linear",
	FeatureCircular: "circular",
}

func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("feature(%d)", int(f))
}

// Valid reports whether f is one of the known features.
func (f Feature) Valid() bool {
	_, ok := featureNames[f]
	return ok
}

// IsPathing reports whether selections start and finish a path search.
func (f Feature) IsPathing() bool { return f == FeatureBFS || f == FeatureAStar }

// UserOptions are the per-player query settings.
type UserOptions struct {
	Feature   Feature `json:"feature"`
	Direction int     `json:"direction"`
	Spread    float64 `json:"spread"`
	Reach     float64 `json:"reach"`
}

// DefaultOptions returns BFS with direction 0, spread 1 and reach 1.
func DefaultOptions() UserOptions {
	return UserOptions{Feature: FeatureBFS, Direction: 0, Spread: 1, Reach: 1}
}
