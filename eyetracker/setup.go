package eyetracker

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	calibrationArea = 0.7
	sampleRate      = 1000

	fileSampleData  = "LEFT,RIGHT,GAZE,GAZERES,HREF,HTARGET,PUPIL,AREA,STATUS,INPUT"
	fileEventData   = "GAZE,GAZERES,AREA,HREF,VELOCITY"
	fileEventFilter = "LEFT,RIGHT,FIXATION,SACCADE,BLINK,MESSAGE,INPUT"
)

// The host only accepts up to 8 letters, digits and underscores.
var edfNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,8}\.edf$`)

func ValidateEDFName(name string) error {
	if !edfNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrEDFName, name)
	}
	return nil
}

// EDFName derives a host file name from the recording time, MMDDhhmm.edf.
func EDFName(t time.Time) string {
	return t.Format("01021504") + ".edf"
}

// Options configure a recording.
type Options struct {
	ScreenW, ScreenH int
	EDFName          string
	CalibrationType  string
	Preamble         string
}

// Commands lists the configuration commands sent to the host before
// calibration.
func Commands(o Options) []string {
	return []string{
		fmt.Sprintf("sample_rate %d", sampleRate),
		fmt.Sprintf("screen_pixel_coords = 0 0 %d %d", o.ScreenW-1, o.ScreenH-1),
		"add_file_preamble_text " + o.Preamble,
		"recording_parse_type = GAZE",
		"calibration_type = " + o.CalibrationType,
		fmt.Sprintf("calibration_area_proportion %.1f %.1f", calibrationArea, calibrationArea),
		fmt.Sprintf("validation_area_proportion  %.1f %.1f", calibrationArea, calibrationArea),
		"file_sample_data  = " + fileSampleData,
		"file_event_data  = " + fileEventData,
		"file_event_filter = " + fileEventFilter,
	}
}

// Setup opens the data file and configures the tracker. The tracker is left
// in offline mode, ready for calibration.
func Setup(tk Tracker, o Options) error {
	if _, err := CalibrationPoints(o.CalibrationType, o.ScreenW, o.ScreenH); err != nil {
		return err
	}
	if o.Preamble == "" {
		o.Preamble = "eComp"
	}
	if err := tk.OpenDataFile(o.EDFName); err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	if err := tk.SetOfflineMode(); err != nil {
		return err
	}
	// Data Viewer integration
	msg := fmt.Sprintf("DISPLAY_COORDS = 0 0 %d %d", o.ScreenW-1, o.ScreenH-1)
	if err := tk.SendMessage(msg); err != nil {
		return err
	}
	for _, cmd := range Commands(o) {
		if err := tk.SendCommand(cmd); err != nil {
			return fmt.Errorf("command %q: %w", strings.Fields(cmd)[0], err)
		}
	}
	return nil
}

// StartRecording starts recording samples, events and link data.
func StartRecording(tk Tracker) error {
	if err := tk.StartRecording(); err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	return tk.SendMessage("recording_start")
}

// StopRecording stops recording, closes the data file on the host and
// copies it to dst.
func StopRecording(tk Tracker, edfName, dst string) error {
	if err := tk.SendMessage("recording_stop"); err != nil {
		return err
	}
	if err := tk.StopRecording(); err != nil {
		return fmt.Errorf("stop recording: %w", err)
	}
	if err := tk.SetOfflineMode(); err != nil {
		return err
	}
	if err := tk.CloseDataFile(); err != nil {
		return fmt.Errorf("close data file: %w", err)
	}
	if err := tk.ReceiveDataFile(edfName, dst); err != nil {
		return fmt.Errorf("receive %s: %w", edfName, err)
	}
	return nil
}
