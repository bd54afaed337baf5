// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// sample reduces a set of coordinates to a smaller set which
// represents it well.
package sample

import (
	"errors"
	"fmt"
	"math"

	"rescribe.xyz/rasterdrone"
)

var (
	ErrInvalidCellSize  = errors.New("grid cell size must be greater than zero")
	ErrNoStrategy       = errors.New("no sampling strategy set")
	ErrUnknownStrategy  = errors.New("unknown sampling strategy")
	ErrNegativeSampling = errors.New("sample count must not be negative")
)

// Strategy is a way of sampling coordinates; either FarthestPoint
// or Grid.
type Strategy interface {
	// unsampled is the largest number of coordinates which are
	// returned as they are, without sampling
	unsampled() int
	sample(coords []rasterdrone.Coordinate) ([]rasterdrone.Coordinate, error)
}

// FarthestPoint samples Count coordinates with FarthestPointSampling
type FarthestPoint struct {
	Count int
}

func (f FarthestPoint) unsampled() int {
	return f.Count
}

func (f FarthestPoint) sample(coords []rasterdrone.Coordinate) ([]rasterdrone.Coordinate, error) {
	if f.Count < 0 {
		return nil, ErrNegativeSampling
	}
	return FarthestPointSampling(coords, f.Count), nil
}

// Grid samples coordinates with GridSampling, using square cells
// CellSize pixels across. Sets of MaxUnsampled coordinates or fewer
// are returned unsampled.
type Grid struct {
	CellSize     uint32
	MaxUnsampled int
}

func (g Grid) unsampled() int {
	return g.MaxUnsampled
}

func (g Grid) sample(coords []rasterdrone.Coordinate) ([]rasterdrone.Coordinate, error) {
	return GridSampling(coords, g.CellSize)
}

// ParseStrategy creates a Strategy from its name, "farthest" or
// "grid". n is the count for farthest, and the cell size for grid.
func ParseStrategy(name string, n int) (Strategy, error) {
	switch name {
	case "farthest":
		return FarthestPoint{Count: n}, nil
	case "grid":
		if n <= 0 {
			return nil, ErrInvalidCellSize
		}
		return Grid{CellSize: uint32(n)}, nil
	}
	return nil, fmt.Errorf("%w %q, should be farthest or grid", ErrUnknownStrategy, name)
}

// Sample reduces coords with a Strategy. If there are no more
// coordinates than the strategy would leave unsampled, a copy of
// them is returned unchanged. coords is never modified.
func Sample(coords []rasterdrone.Coordinate, s Strategy) ([]rasterdrone.Coordinate, error) {
	if s == nil {
		return nil, ErrNoStrategy
	}
	if len(coords) <= s.unsampled() {
		return clone(coords), nil
	}
	return s.sample(coords)
}

func clone(coords []rasterdrone.Coordinate) []rasterdrone.Coordinate {
	c := make([]rasterdrone.Coordinate, len(coords))
	copy(c, coords)
	return c
}

// FarthestPointSampling picks n coordinates which are spread out as
// far as possible. It starts with the last coordinate, and then
// repeatedly picks the coordinate which is farthest from all of
// those already picked, preferring the earliest on a tie. The
// coordinates are returned in the order they were picked.
func FarthestPointSampling(coords []rasterdrone.Coordinate, n int) []rasterdrone.Coordinate {
	if n <= 0 {
		return []rasterdrone.Coordinate{}
	}
	if len(coords) <= n {
		return clone(coords)
	}

	// mindist of a picked coordinate is meaningless, so picked
	// ones are tracked separately
	mindist := make([]uint64, len(coords))
	picked := make([]bool, len(coords))
	for i := range mindist {
		mindist[i] = math.MaxUint64
	}

	samples := make([]rasterdrone.Coordinate, 0, n)
	next := len(coords) - 1
	for len(samples) < n {
		cur := coords[next]
		picked[next] = true
		samples = append(samples, cur)

		var best uint64
		next = -1
		for i, c := range coords {
			if picked[i] {
				continue
			}
			d := c.DistanceSquared(cur)
			if d < mindist[i] {
				mindist[i] = d
			}
			if next == -1 || mindist[i] > best {
				best = mindist[i]
				next = i
			}
		}
	}

	return samples
}

type cell struct {
	x, y uint32
}

// GridSampling keeps only the first coordinate in each square cell
// of a grid with cells of the given size, preserving their order.
func GridSampling(coords []rasterdrone.Coordinate, size uint32) ([]rasterdrone.Coordinate, error) {
	if size == 0 {
		return nil, ErrInvalidCellSize
	}

	seen := make(map[cell]bool)
	samples := []rasterdrone.Coordinate{}
	for _, c := range coords {
		k := cell{c.X / size, c.Y / size}
		if seen[k] {
			continue
		}
		seen[k] = true
		samples = append(samples, c)
	}
	return samples, nil
}
