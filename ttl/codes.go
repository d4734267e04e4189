// Package ttl maps experiment events to TTL trigger codes and writes them to
// the EEG trigger hardware.
//
// The single and dual stream tasks are recorded separately and may be
// concatenated for analysis, so both use the same events. Dual stream codes
// are the single stream codes shifted by DualStreamOffset.
package ttl

import (
	"fmt"
	"strings"
)

const DualStreamOffset = 100

// Event names, without the stream prefix.
const (
	BeginExperiment = "begin_experiment"
	EndExperiment   = "end_experiment"
	NewTrial        = "new_trl"
	FixstimOffset   = "fixstim_offset"
	ResponsePrompt  = "response_prompt"
	ResponseTimeout = "response_timeout"
	FeedbackCorrect = "feedback_correct"
	FeedbackWrong   = "feedback_wrong"
	FeedbackTimeout = "feedback_timeout"
	BreakBegin      = "feedback_break_begin"
	BreakEnd        = "feedback_break_end"
)

// Digit is the event of showing sample s (negative: red, positive: blue).
func Digit(s int) string {
	return fmt.Sprintf("digit_%d", s)
}

// Response is the event of a valid choice.
func Response(choice string) string {
	return "response_" + choice
}

func singleCodes() map[string]byte {
	codes := map[string]byte{
		// Bracket the meaningful EEG data; record some time before and
		// after so that filtering does not introduce edge artifacts.
		BeginExperiment: 80,
		EndExperiment:   90,

		NewTrial:      1,
		FixstimOffset: 2,

		ResponsePrompt:  3,
		ResponseTimeout: 30,

		Response("lower"):  31,
		Response("higher"): 32,
		Response("blue"):   33,
		Response("red"):    34,

		FeedbackCorrect: 4,
		FeedbackWrong:   5,
		FeedbackTimeout: 6,

		BreakBegin: 7,
		BreakEnd:   8,
	}
	for d := 1; d <= 9; d++ {
		codes[Digit(d)] = byte(10 + d)
		codes[Digit(-d)] = byte(20 + d)
	}
	return codes
}

// Table returns all codes keyed by "<stream>_<event>".
func Table() map[string]byte {
	single := singleCodes()
	out := make(map[string]byte, 2*len(single))
	for event, code := range single {
		out["single_"+event] = code
		out["dual_"+event] = code + DualStreamOffset
	}
	return out
}

// Codes resolves events for one stream.
type Codes struct {
	stream string
	table  map[string]byte
}

func NewCodes(stream string) (*Codes, error) {
	if stream != "single" && stream != "dual" {
		return nil, fmt.Errorf("unknown stream %q", stream)
	}
	return &Codes{stream: stream, table: Table()}, nil
}

func (c *Codes) Lookup(event string) (byte, error) {
	key := c.stream + "_" + strings.TrimPrefix(event, c.stream+"_")
	code, ok := c.table[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEvent, key)
	}
	return code, nil
}
