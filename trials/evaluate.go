package trials

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

type Stream string

const (
	Single Stream = "single"
	Dual   Stream = "dual"
)

func ParseStream(s string) (Stream, error) {
	switch Stream(s) {
	case Single, Dual:
		return Stream(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStream, s)
}

type Choice string

const (
	Lower  Choice = "lower"
	Higher Choice = "higher"
	Blue   Choice = "blue"
	Red    Choice = "red"
	NA     Choice = "n/a"
)

// Correctness of a choice. The zero value means no choice was made.
type Correctness int

const (
	CorrectNA Correctness = iota
	Incorrect
	Correct
)

func (c Correctness) String() string {
	switch c {
	case Correct:
		return "true"
	case Incorrect:
		return "false"
	}
	return "n/a"
}

func boolCorrectness(ok bool) Correctness {
	if ok {
		return Correct
	}
	return Incorrect
}

var (
	ErrUnknownStream = errors.New("unknown stream")
	ErrInvalidChoice = errors.New("invalid choice for stream")
)

// Evaluate decides whether choice was correct for trial under stream.
//
// Ambiguous trials have no objectively correct answer, their correctness is
// drawn from rng. A choice of NA still reports ambiguity but its correctness
// is CorrectNA.
func Evaluate(rng *rand.Rand, trial Trial, choice Choice, stream Stream) (Correctness, bool, error) {
	if err := trial.Validate(); err != nil {
		return CorrectNA, false, err
	}

	var (
		ambiguous bool
		correct   bool
	)
	switch stream {
	case Single:
		if choice != NA && choice != Lower && choice != Higher {
			return CorrectNA, false, fmt.Errorf("%w: %q in %s", ErrInvalidChoice, choice, stream)
		}
		// mean == Midpoint, compared on integer sums
		sum := 0
		for _, s := range trial {
			sum += abs(s)
		}
		target := Midpoint * len(trial)
		ambiguous = sum == target
		correct = (sum > target && choice == Higher) || (sum < target && choice == Lower)
	case Dual:
		if choice != NA && choice != Blue && choice != Red {
			return CorrectNA, false, fmt.Errorf("%w: %q in %s", ErrInvalidChoice, choice, stream)
		}
		var sumRed, nRed, sumBlue, nBlue int
		for _, s := range trial {
			if s < 0 {
				sumRed += -s
				nRed++
			} else {
				sumBlue += s
				nBlue++
			}
		}
		if nRed == 0 || nBlue == 0 {
			return CorrectNA, false, fmt.Errorf("%w: dual stream trial needs both colors", ErrInvalidTrial)
		}
		// mean comparison without division
		red, blue := sumRed*nBlue, sumBlue*nRed
		ambiguous = red == blue
		correct = (red > blue && choice == Red) || (red < blue && choice == Blue)
	default:
		return CorrectNA, false, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}

	if choice == NA {
		return CorrectNA, ambiguous, nil
	}
	if ambiguous {
		return boolCorrectness(rng.IntN(2) == 1), true, nil
	}
	return boolCorrectness(correct), false, nil
}

type Key string

const (
	KeyLeft  Key = "left"
	KeyRight Key = "right"
)

// MapKeyToChoice translates a response key into a choice. State 0 places
// higher (single) or red (dual) on the left, state 1 swaps the sides.
func MapKeyToChoice(key Key, state int, stream Stream) (Choice, error) {
	var left, right Choice
	switch stream {
	case Single:
		left, right = Higher, Lower
	case Dual:
		left, right = Red, Blue
	default:
		return NA, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}
	if state == 1 {
		left, right = right, left
	} else if state != 0 {
		return NA, fmt.Errorf("state must be 0 or 1, got %d", state)
	}

	switch key {
	case KeyLeft:
		return left, nil
	case KeyRight:
		return right, nil
	}
	return NA, fmt.Errorf("unknown response key %q", key)
}

// Options returns the two choices shown for stream in screen order.
func Options(state int, stream Stream) (left, right Choice, err error) {
	if left, err = MapKeyToChoice(KeyLeft, state, stream); err != nil {
		return NA, NA, err
	}
	right, err = MapKeyToChoice(KeyRight, state, stream)
	return left, right, err
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
