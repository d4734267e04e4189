package monitor

import (
	"math"
	"math/rand/v2"
)

// DigitFrames is the number of frames a digit stays fully visible.
func DigitFrames(fps int, rate float64) int {
	return int(float64(fps) / rate)
}

// FadeFrames is the number of frames over which a digit fades to blank.
func FadeFrames(fps int, rate float64) int {
	return int(float64(fps) / rate)
}

// BlankFrames is the blank period between fixation offset and the first
// digit, half a second rounded up.
func BlankFrames(fps int) int {
	return int(math.Ceil(float64(fps) / 2))
}

// ITIRange returns the inclusive frame bounds of an inter-trial interval.
func ITIRange(minMS, maxMS, fps int) (low, high int) {
	low = int(math.Floor(float64(minMS) / 1000 * float64(fps)))
	high = int(math.Ceil(float64(maxMS) / 1000 * float64(fps)))
	return low, high
}

// DrawITI draws a uniformly distributed number of ITI frames.
func DrawITI(rng *rand.Rand, minMS, maxMS, fps int) int {
	low, high := ITIRange(minMS, maxMS, fps)
	if high <= low {
		return low
	}
	return low + rng.IntN(high-low+1)
}

func FramesToMS(frames, fps int) float64 {
	return float64(frames) / float64(fps) * 1000
}

// FadeAlphas returns n alpha values linearly spaced from opaque to
// transparent.
func FadeAlphas(n int) []uint8 {
	out := make([]uint8, n)
	if n == 1 {
		out[0] = 255
		return out
	}
	for i := range out {
		opacity := 1 - float64(i)/float64(n-1)
		out[i] = uint8(math.Round(opacity * 255))
	}
	return out
}
