// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

// Stage remembers the output of a computation along with the
// parameters it was run with, so that it is only rerun when the
// parameters change. The zero value is an empty Stage which has
// never been run.
type Stage[P comparable, R any] struct {
	applied P
	output  R
	valid   bool
}

// Run returns the cached output if p matches the parameters it was
// last run with, and otherwise (or if force is set) runs fn with p
// and caches the result. The bool returned reports whether fn was
// run. If fn returns an error the cache is left untouched, so the
// previous output is still available from Output.
func (s *Stage[P, R]) Run(p P, force bool, fn func(P) (R, error)) (R, bool, error) {
	if s.valid && !force && s.applied == p {
		return s.output, false, nil
	}

	r, err := fn(p)
	if err != nil {
		var zero R
		return zero, true, err
	}

	s.applied = p
	s.output = r
	s.valid = true
	return r, true, nil
}

// Output returns the cached output, which is the zero value of R if
// the stage has never run successfully
func (s *Stage[P, R]) Output() R {
	return s.output
}

// Applied returns the parameters the cached output was made with
func (s *Stage[P, R]) Applied() P {
	return s.applied
}

// Valid reports whether the stage holds an output
func (s *Stage[P, R]) Valid() bool {
	return s.valid
}

// Reset empties the stage, so the next Run always runs
func (s *Stage[P, R]) Reset() {
	*s = Stage[P, R]{}
}
