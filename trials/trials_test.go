package trials_test

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/sappelhoff/ecomp-experiment/trials"
	. "github.com/smartystreets/goconvey/convey"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		rng := newRand(42)

		Convey("When generating a trial of 8 samples", func() {
			trial, err := trials.Generate(rng, 8)

			Convey("Then it has 4 red and 4 blue digits between 1 and 9", func() {
				So(err, ShouldBeNil)
				So(trial, ShouldHaveLength, 8)
				So(trial.Validate(), ShouldBeNil)
				red, blue := trial.Colored()
				So(red, ShouldHaveLength, 4)
				So(blue, ShouldHaveLength, 4)
			})
		})

		Convey("When the sample count is odd or zero", func() {
			_, errOdd := trials.Generate(rng, 9)
			_, errZero := trials.Generate(rng, 0)

			Convey("Then it is rejected", func() {
				So(errOdd, ShouldWrap, trials.ErrSampleCount)
				So(errZero, ShouldWrap, trials.ErrSampleCount)
			})
		})

		Convey("When generating the same seed twice", func() {
			a, _ := trials.GenerateTrials(newRand(7), 20, 10, 0.5)
			b, _ := trials.GenerateTrials(newRand(7), 20, 10, 0.5)

			Convey("Then the trials are identical", func() {
				So(a, ShouldResemble, b)
			})
		})
	})
}

func TestGenerateTrials(t *testing.T) {
	Convey("Given a request for 100 trials", t, func() {
		Convey("When prop_regen is out of range", func() {
			_, err := trials.GenerateTrials(newRand(1), 100, 8, 1.5)

			Convey("Then an error is returned", func() {
				So(err, ShouldWrap, trials.ErrPropRegen)
			})
		})

		Convey("When regenerating all trials", func() {
			ts, err := trials.GenerateTrials(newRand(1), 100, 8, 1)

			Convey("Then every trial is still valid", func() {
				So(err, ShouldBeNil)
				So(ts, ShouldHaveLength, 100)
				for _, tr := range ts {
					So(tr.Validate(), ShouldBeNil)
				}
			})
		})
	})
}

func TestRegeneration(t *testing.T) {
	cases := []struct {
		n       int
		p       float64
		changed int
	}{
		{n: 50, p: 0.2, changed: 10},
		{n: 5, p: 0.5, changed: 2},
		{n: 30, p: 0.05, changed: 2},
	}

	for _, c := range cases {
		Convey("Given the same seed with and without regeneration", t, func() {
			base, err := trials.GenerateTrials(newRand(11), c.n, 8, 0)
			So(err, ShouldBeNil)
			regen, err := trials.GenerateTrials(newRand(11), c.n, 8, c.p)
			So(err, ShouldBeNil)
			diffs, err := trials.DifficultyDiffs(base)
			So(err, ShouldBeNil)

			var changed, kept []float64
			for i := range base {
				if slices.Equal(base[i], regen[i]) {
					kept = append(kept, diffs[i])
				} else {
					changed = append(changed, diffs[i])
					So(regen[i].Validate(), ShouldBeNil)
				}
			}

			Convey("Then round half to even of n*p trials are replaced", func() {
				So(len(changed), ShouldEqual, int(math.RoundToEven(float64(c.n)*c.p)))
				So(len(changed), ShouldEqual, c.changed)
			})

			Convey("Then the replaced ones had the largest differences", func() {
				So(slices.Min(changed), ShouldBeGreaterThanOrEqualTo, slices.Max(kept))
			})
		})
	}
}

func TestDifficultyDiffs(t *testing.T) {
	Convey("Given a trial with known means", t, func() {
		// digit mean 1.5 -> |5-1.5| = 3.5; red 1, blue 2 -> 1
		trial := trials.Trial{-1, -1, -1, -1, 2, 2, 2, 2}

		diffs, err := trials.DifficultyDiffs([]trials.Trial{trial})

		Convey("Then the difference of expected value differences is 2.5", func() {
			So(err, ShouldBeNil)
			So(diffs[0], ShouldAlmostEqual, 2.5)
		})

		Convey("And a trial with one color only is rejected", func() {
			_, err := trials.DifficultyDiffs([]trials.Trial{{1, 2, 3, 4}})
			So(err, ShouldWrap, trials.ErrInvalidTrial)
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given an unambiguous trial", t, func() {
		rng := newRand(3)
		trial := trials.Trial{-1, -1, -1, -1, 2, 2, 2, 2}

		cases := []struct {
			choice  trials.Choice
			stream  trials.Stream
			correct trials.Correctness
		}{
			{trials.Lower, trials.Single, trials.Correct},
			{trials.Higher, trials.Single, trials.Incorrect},
			{trials.NA, trials.Single, trials.CorrectNA},
			{trials.Red, trials.Dual, trials.Incorrect},
			{trials.Blue, trials.Dual, trials.Correct},
			{trials.NA, trials.Dual, trials.CorrectNA},
		}
		for _, c := range cases {
			correct, ambiguous, err := trials.Evaluate(rng, trial, c.choice, c.stream)
			So(err, ShouldBeNil)
			So(correct, ShouldEqual, c.correct)
			So(ambiguous, ShouldBeFalse)
		}
	})

	Convey("Given an ambiguous trial", t, func() {
		rng := newRand(4)
		trial := trials.Trial{-5, -5, -5, -5, 5, 5, 5, 5}

		Convey("Then both streams report ambiguity", func() {
			_, ambSingle, err := trials.Evaluate(rng, trial, trials.Lower, trials.Single)
			So(err, ShouldBeNil)
			So(ambSingle, ShouldBeTrue)

			correct, ambDual, err := trials.Evaluate(rng, trial, trials.NA, trials.Dual)
			So(err, ShouldBeNil)
			So(ambDual, ShouldBeTrue)
			So(correct, ShouldEqual, trials.CorrectNA)
		})

		Convey("Then correctness is drawn at random", func() {
			seen := map[trials.Correctness]bool{}
			for i := 0; i < 100; i++ {
				correct, _, _ := trials.Evaluate(rng, trial, trials.Red, trials.Dual)
				seen[correct] = true
			}
			So(seen[trials.Correct], ShouldBeTrue)
			So(seen[trials.Incorrect], ShouldBeTrue)
			So(seen[trials.CorrectNA], ShouldBeFalse)
		})
	})

	Convey("Given uneven color counts", t, func() {
		// red mean 3, blue mean 3
		trial := trials.Trial{-3, -3, 2, 4, 3, 3}
		_, ambiguous, err := trials.Evaluate(newRand(5), trial, trials.Red, trials.Dual)

		Convey("Then equal means are still ambiguous", func() {
			So(err, ShouldBeNil)
			So(ambiguous, ShouldBeTrue)
		})
	})

	Convey("Given invalid input", t, func() {
		rng := newRand(6)
		trial := trials.Trial{-1, 2}

		Convey("Then a dual choice in the single stream is rejected", func() {
			_, _, err := trials.Evaluate(rng, trial, trials.Red, trials.Single)
			So(err, ShouldWrap, trials.ErrInvalidChoice)
		})

		Convey("Then an unknown stream is rejected", func() {
			_, _, err := trials.Evaluate(rng, trial, trials.Red, trials.Stream("triple"))
			So(err, ShouldWrap, trials.ErrUnknownStream)
		})

		Convey("Then out of range samples are rejected", func() {
			_, _, err := trials.Evaluate(rng, trials.Trial{-10, 2}, trials.Red, trials.Dual)
			So(err, ShouldWrap, trials.ErrInvalidTrial)
		})
	})

	Convey("Given many random trials and choices", t, func() {
		rng := newRand(42)
		ts, err := trials.GenerateTrials(rng, 100, 8, 0.5)
		So(err, ShouldBeNil)
		choices := map[trials.Stream][]trials.Choice{
			trials.Single: {trials.Lower, trials.Higher, trials.NA},
			trials.Dual:   {trials.Red, trials.Blue, trials.NA},
		}
		streams := []trials.Stream{trials.Single, trials.Dual}
		for _, tr := range ts {
			stream := streams[rng.IntN(2)]
			choice := choices[stream][rng.IntN(3)]
			_, _, err := trials.Evaluate(rng, tr, choice, stream)
			So(err, ShouldBeNil)
		}
	})
}

func TestMapKeyToChoice(t *testing.T) {
	Convey("Given every key, state and stream", t, func() {
		cases := []struct {
			key    trials.Key
			state  int
			stream trials.Stream
			want   trials.Choice
		}{
			{trials.KeyLeft, 0, trials.Single, trials.Higher},
			{trials.KeyLeft, 0, trials.Dual, trials.Red},
			{trials.KeyLeft, 1, trials.Single, trials.Lower},
			{trials.KeyLeft, 1, trials.Dual, trials.Blue},
			{trials.KeyRight, 0, trials.Single, trials.Lower},
			{trials.KeyRight, 0, trials.Dual, trials.Blue},
			{trials.KeyRight, 1, trials.Single, trials.Higher},
			{trials.KeyRight, 1, trials.Dual, trials.Red},
		}
		for _, c := range cases {
			got, err := trials.MapKeyToChoice(c.key, c.state, c.stream)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		Convey("Then an unknown state is an error", func() {
			_, err := trials.MapKeyToChoice(trials.KeyLeft, 2, trials.Single)
			So(err, ShouldNotBeNil)
		})
	})
}
