package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sappelhoff/ecomp-experiment/trials"
)

// InstructionPages returns the participant instructions for stream, one
// page per screen.
func InstructionPages(stream trials.Stream, cfg *Config) []string {
	start := []string{
		"In this study, we want to investigate how humans average numerical values " +
			"when making decisions from rapid sequential samples.",
		"At the beginning of each trial you will see a gray fixation stimulus in " +
			"the middle of the screen.",
		fmt.Sprintf("After approximately %.1f to %.1f seconds, the trial will start and we will "+
			"present to you a rapid sequence of numbers, one after the other. "+
			"Specifically, you will always see %d numbers between %d and %d. Half of them "+
			"are in red color, the other half of them are in blue color.",
			float64(cfg.MinITIMS)/1000, float64(cfg.MaxITIMS)/1000,
			cfg.NSamples, trials.MinDigit, trials.MaxDigit),
	}
	single := []string{
		fmt.Sprintf("We will then ask you if the average of the shown numbers is smaller "+
			"or larger than %d.", trials.Midpoint),
		"The display will show you an upwards (larger), and a downwards (smaller) " +
			"arrow on the left and right side of the screen. " +
			"You can use the left and right keys in front of you to select the upwards " +
			"or downwards arrow and to indicate whether the average of the shown " +
			fmt.Sprintf("numbers is smaller or larger than %d.", trials.Midpoint),
		"Please note that on each trial, the location of the upwards and " +
			"downwards arrow changes. " +
			"In other words, you have to check on each trial which key, left or right, " +
			"means which answer, upwards arrow (larger) or downwards arrow (smaller).",
	}
	dual := []string{
		"We will then ask you which color had the larger average. " +
			"The display will show you a blue and a red upwards arrow on the left and " +
			"right side of the screen. " +
			"You can use the left and right keys in front of you to select the blue or " +
			"red upwards arrow and to indicate whether the average of the blue or of " +
			"the red numbers is larger.",
		"Please note that on each trial, the location of the blue and red upwards " +
			"arrow changes. " +
			"In other words, you have to check on each trial which key, left or " +
			"right, means which answer, blue or red upwards arrow.",
	}
	end := []string{
		fmt.Sprintf("You have %g seconds to answer. If you do not answer in time, there will be "+
			"a timeout message and your answer is counted as wrong.", cfg.MaxWaitResponseS),
		"The study will then automatically proceed to the next trial after a " +
			"short time.",
		fmt.Sprintf("Every %d trials you will receive information about how accurate your "+
			"choices were.", cfg.BlockSize),
		"Remember that over the whole you can earn a bonus of up to 10 Euros, " +
			"depending on your accuracy (Note that less than 60% accuracy results " +
			"in no bonus).",
		"Press the right key to end the instructions.",
	}

	pages := append([]string{}, start...)
	if stream == trials.Dual {
		pages = append(pages, dual...)
	} else {
		pages = append(pages, single...)
	}
	return append(pages, end...)
}

// NextPage moves through the instruction pages. done is true when the
// participant leaves the instructions.
func NextPage(page, n int, key sdl.Keycode) (next int, done bool) {
	switch key {
	case sdl.K_ESCAPE:
		return page, true
	case sdl.K_LEFT:
		return max(0, page-1), false
	case sdl.K_RIGHT:
		if page+1 >= n {
			return page, true
		}
		return page + 1, false
	}
	return page, false
}

// ShowInstructions pages through the instructions with the left and right
// keys until the last page is passed or escape is pressed.
func (d *Display) ShowInstructions(stream trials.Stream) error {
	pages := InstructionPages(stream, d.cfg)
	keys := []sdl.Keycode{sdl.K_LEFT, sdl.K_RIGHT, sdl.K_ESCAPE}
	page := 0
	for {
		text := pages[page]
		if err := d.Show(func() error { return d.DrawText(text, d.cfg.TextColor) }); err != nil {
			return err
		}
		key, _, _, err := WaitKeys(keys, 0, 0)
		if err != nil {
			return err
		}
		var done bool
		if page, done = NextPage(page, len(pages), key); done {
			return nil
		}
	}
}
