// Package trials generates digit sequences and evaluates participant choices.
//
// A trial is a sequence of sign-encoded samples: the absolute value is the
// digit (1 to 9), the sign is the color. Negative samples are red, positive
// samples are blue.
package trials

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	MinDigit = 1
	MaxDigit = 9

	// Midpoint is the reference value of the single stream task.
	Midpoint = 5
)

var (
	ErrSampleCount  = errors.New("number of samples must be positive and even")
	ErrPropRegen    = errors.New("prop_regen must be between 0 and 1")
	ErrInvalidTrial = errors.New("invalid trial")
)

// Trial holds the samples of one trial in presentation order.
type Trial []int

// Digits returns the absolute values of the samples.
func (t Trial) Digits() []float64 {
	out := make([]float64, len(t))
	for i, s := range t {
		out[i] = math.Abs(float64(s))
	}
	return out
}

// Colored splits the digits by color.
func (t Trial) Colored() (red, blue []float64) {
	for _, s := range t {
		if s < 0 {
			red = append(red, float64(-s))
		} else {
			blue = append(blue, float64(s))
		}
	}
	return red, blue
}

// Validate checks that every sample is a signed digit.
func (t Trial) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidTrial)
	}
	for i, s := range t {
		d := s
		if d < 0 {
			d = -d
		}
		if d < MinDigit || d > MaxDigit {
			return fmt.Errorf("%w: sample %d out of range: %d", ErrInvalidTrial, i+1, s)
		}
	}
	return nil
}

// Generate draws one trial of nSamples. Digits are drawn uniformly with
// replacement, colors are a permutation of equally many reds and blues.
func Generate(rng *rand.Rand, nSamples int) (Trial, error) {
	if nSamples <= 0 || nSamples%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrSampleCount, nSamples)
	}

	colors := make([]int, nSamples)
	for i := range colors {
		if i < nSamples/2 {
			colors[i] = -1
		} else {
			colors[i] = 1
		}
	}
	rng.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })

	trial := make(Trial, nSamples)
	for i := range trial {
		digit := MinDigit + rng.IntN(MaxDigit-MinDigit+1)
		trial[i] = digit * colors[i]
	}
	return trial, nil
}

// GenerateTrials draws nTrials trials and then regenerates the proportion
// propRegen of them for which single and dual stream difficulty differ most.
func GenerateTrials(rng *rand.Rand, nTrials, nSamples int, propRegen float64) ([]Trial, error) {
	if propRegen < 0 || propRegen > 1 {
		return nil, fmt.Errorf("%w: %v", ErrPropRegen, propRegen)
	}

	out := make([]Trial, nTrials)
	for i := range out {
		t, err := Generate(rng, nSamples)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}

	nRegen := int(math.RoundToEven(float64(nTrials) * propRegen))
	if nRegen == 0 {
		return out, nil
	}

	diffs, err := DifficultyDiffs(out)
	if err != nil {
		return nil, err
	}
	idxs := make([]int, len(diffs))
	floats.Argsort(diffs, idxs)

	// Argsort is ascending, the largest differences are at the end.
	for k := 0; k < nRegen; k++ {
		idx := idxs[len(idxs)-1-k]
		t, err := Generate(rng, nSamples)
		if err != nil {
			return nil, err
		}
		out[idx] = t
	}
	return out, nil
}

// DifficultyDiffs returns, per trial, the absolute difference between the
// single stream and the dual stream expected value differences.
func DifficultyDiffs(ts []Trial) ([]float64, error) {
	diffs := make([]float64, len(ts))
	for i, t := range ts {
		red, blue := t.Colored()
		if len(red) == 0 || len(blue) == 0 {
			return nil, fmt.Errorf("%w: trial %d lacks a color", ErrInvalidTrial, i)
		}
		evSingle := math.Abs(Midpoint - stat.Mean(t.Digits(), nil))
		evDual := math.Abs(stat.Mean(red, nil) - stat.Mean(blue, nil))
		diffs[i] = math.Abs(evSingle - evDual)
	}
	return diffs, nil
}
