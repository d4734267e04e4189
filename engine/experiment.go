package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sappelhoff/ecomp-experiment/datalog"
	"github.com/sappelhoff/ecomp-experiment/logger"
	"github.com/sappelhoff/ecomp-experiment/monitor"
	"github.com/sappelhoff/ecomp-experiment/trials"
	"github.com/sappelhoff/ecomp-experiment/ttl"
)

// Experiment runs a sequence of trials on a display and logs every choice.
type Experiment struct {
	cfg     *Config
	display *Display
	sender  *ttl.Sender
	logFile string
	log     logger.Logger
	rng     *rand.Rand
}

func NewExperiment(cfg *Config, display *Display, sender *ttl.Sender, logFile string, rng *rand.Rand, log logger.Logger) *Experiment {
	return &Experiment{
		cfg:     cfg,
		display: display,
		sender:  sender,
		logFile: logFile,
		log:     log,
		rng:     rng,
	}
}

func (e *Experiment) trigger(ctx context.Context, event string) func() error {
	return func() error { return e.sender.Send(ctx, event) }
}

// secondsToFrames converts a duration in seconds to whole frames.
func secondsToFrames(s float64, fps int) int {
	return int(math.Round(s * float64(fps)))
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// IsHardBreak reports whether the block break numbered counter (from 1) can
// only be left by the experimenter.
func IsHardBreak(counter, hardBreak int) bool {
	return hardBreak > 0 && counter%hardBreak == 0
}

func BreakText(done, total, blockSize, accBlock, accOverall int, hard bool) string {
	text := fmt.Sprintf("You have completed %d of %d trials.\n\n", done, total)
	text += fmt.Sprintf("Your choices in the past %d trials were %d%% accurate.\n\n", blockSize, accBlock)
	text += fmt.Sprintf("Your overall accuracy in this task so far is %d%%.\n\n", accOverall)
	if hard {
		return text + "-> Please wait for the experimenter. <-"
	}
	return text + "Press any key to continue."
}

func FeedbackText(choice trials.Choice, c trials.Correctness) string {
	verdict := "wrong"
	if c == trials.Correct {
		verdict = "correct"
	}
	return fmt.Sprintf("Your choice (%s) was %s.", choice, verdict)
}

// Run shows all trials. It returns ErrAborted when the participant presses
// escape during a choice; rows logged so far stay on disk.
func (e *Experiment) Run(ctx context.Context, ts []trials.Trial) error {
	blockCounter := 1
	for i, trial := range ts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runTrial(ctx, i, trial); err != nil {
			return err
		}

		fmt.Printf("\rTrial: %d/%d ", i+1, len(ts))
		os.Stdout.Sync()

		if (i+1)%e.cfg.BlockSize == 0 && i+1 < len(ts) {
			if err := e.blockBreak(ctx, i+1, len(ts), blockCounter); err != nil {
				return err
			}
			blockCounter++
		}
	}
	fmt.Println()
	return nil
}

func (e *Experiment) runTrial(ctx context.Context, itrial int, trial trials.Trial) error {
	d := e.display
	fps := d.FPS
	stream := e.cfg.Stream
	state := e.rng.IntN(2)

	itiFrames := monitor.DrawITI(e.rng, e.cfg.MinITIMS, e.cfg.MaxITIMS, fps)
	fixation := func(int) error { d.DrawFixation(); return nil }
	if err := d.Frames(itiFrames, fixation, e.trigger(ctx, ttl.NewTrial)); err != nil {
		return err
	}
	if err := d.Frames(monitor.BlankFrames(fps), nil, e.trigger(ctx, ttl.FixstimOffset)); err != nil {
		return err
	}

	if err := e.showSamples(ctx, trial); err != nil {
		return err
	}

	promptNS, err := d.ShowTimed(func() error { return d.DrawChoices(state, stream) })
	if err != nil {
		return err
	}
	if err := e.sender.Send(ctx, ttl.ResponsePrompt); err != nil {
		return err
	}

	keys := []sdl.Keycode{sdl.K_LEFT, sdl.K_RIGHT, sdl.K_ESCAPE}
	maxWait := secondsDuration(e.cfg.MaxWaitResponseS)
	key, rt, ok, err := WaitKeys(keys, promptNS, maxWait)
	if err != nil {
		return err
	}

	choice := trials.NA
	if ok {
		if key == sdl.K_ESCAPE {
			fmt.Println("\n\nYou pressed the 'escape' key, quitting now ...")
			return ErrAborted
		}
		k := trials.KeyLeft
		if key == sdl.K_RIGHT {
			k = trials.KeyRight
		}
		if choice, err = trials.MapKeyToChoice(k, state, stream); err != nil {
			return err
		}
		err = e.sender.Send(ctx, ttl.Response(string(choice)))
	} else {
		err = e.sender.Send(ctx, ttl.ResponseTimeout)
	}
	if err != nil {
		return err
	}

	correct, ambiguous, err := trials.Evaluate(e.rng, trial, choice, stream)
	if err != nil {
		return err
	}

	if err := e.feedback(ctx, choice, correct); err != nil {
		return err
	}

	rec := datalog.Record{
		Trial:     itrial,
		Choice:    string(choice),
		Ambiguous: ambiguous,
		RT:        rt.Seconds(),
		Valid:     ok,
		ITIMS:     monitor.FramesToMS(itiFrames, fps),
		Correct:   correct.String(),
		Stream:    string(stream),
		State:     state,
		Samples:   trial,
	}
	if err := datalog.Append(e.logFile, rec); err != nil {
		return err
	}
	e.log.Debug(ctx, "trial done",
		logger.Int("trial", itrial),
		logger.String("choice", string(choice)),
		logger.String("correct", correct.String()),
		logger.Bool("ambiguous", ambiguous))
	return nil
}

// showSamples flashes each digit, then fades it out.
func (e *Experiment) showSamples(ctx context.Context, trial trials.Trial) error {
	d := e.display
	digitFrames := monitor.DigitFrames(d.FPS, e.cfg.DigitRate)
	alphas := monitor.FadeAlphas(monitor.FadeFrames(d.FPS, e.cfg.FadeRate))
	cx, cy := float32(d.W)/2, float32(d.H)/2

	for _, sample := range trial {
		tex, err := d.digitTexture(sample)
		if err != nil {
			return err
		}
		draw := func(int) error { d.drawCentered(tex, cx, cy); return nil }
		if err := d.Frames(digitFrames, draw, e.trigger(ctx, ttl.Digit(sample))); err != nil {
			return err
		}

		fade := func(frame int) error {
			tex.Texture.SetAlphaMod(alphas[frame])
			d.drawCentered(tex, cx, cy)
			return nil
		}
		err = d.Frames(len(alphas), fade, nil)
		tex.Texture.SetAlphaMod(255)
		if err != nil {
			return err
		}
	}
	return nil
}

// feedback shows the timeout warning, and in training runs whether the
// choice was correct.
func (e *Experiment) feedback(ctx context.Context, choice trials.Choice, correct trials.Correctness) error {
	d := e.display
	if choice == trials.NA {
		draw := func(int) error { return d.DrawText("Too slow!", e.cfg.WarnColor) }
		frames := secondsToFrames(e.cfg.TimeoutWarningS, d.FPS)
		return d.Frames(frames, draw, e.trigger(ctx, ttl.FeedbackTimeout))
	}
	if e.cfg.RunType != datalog.Training {
		return nil
	}

	event := ttl.FeedbackWrong
	if correct == trials.Correct {
		event = ttl.FeedbackCorrect
	}
	msg := FeedbackText(choice, correct)
	draw := func(int) error { return d.DrawText(msg, e.cfg.TextColor) }
	return d.Frames(secondsToFrames(e.cfg.FeedbackS, d.FPS), draw, e.trigger(ctx, event))
}

func (e *Experiment) blockBreak(ctx context.Context, done, total, counter int) error {
	d := e.display
	hard := IsHardBreak(counter, e.cfg.HardBreak)
	overall, block, err := datalog.Accuracy(e.logFile, e.cfg.BlockSize)
	if err != nil {
		return err
	}
	text := BreakText(done, total, e.cfg.BlockSize, block, overall, hard)
	e.log.Info(ctx, "block break",
		logger.Int("trial", done),
		logger.Int("accuracy_block", block),
		logger.Int("accuracy_overall", overall),
		logger.Bool("hard", hard))

	if err := d.Show(func() error { return d.DrawText(text, e.cfg.TextColor) }); err != nil {
		return err
	}
	if err := e.sender.Send(ctx, ttl.BreakBegin); err != nil {
		return err
	}

	var keys []sdl.Keycode
	if hard {
		keys = []sdl.Keycode{sdl.K_ESCAPE}
	}
	if _, _, _, err := WaitKeys(keys, 0, 0); err != nil {
		return err
	}
	return e.sender.Send(ctx, ttl.BreakEnd)
}
