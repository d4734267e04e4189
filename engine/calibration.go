package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sappelhoff/ecomp-experiment/eyetracker"
)

// Calibrate walks the participant through the calibration targets. Each
// target stays up until a key is pressed; escape skips the rest.
func (d *Display) Calibrate(tk eyetracker.Tracker, calType string) error {
	points, err := eyetracker.CalibrationPoints(calType, d.W, d.H)
	if err != nil {
		return err
	}

	prompt := "Press ENTER twice to calibrate the eye-tracker."
	if err := d.Show(func() error { return d.DrawText(prompt, d.cfg.TextColor) }); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if _, _, _, err := WaitKeys([]sdl.Keycode{sdl.K_RETURN}, 0, 0); err != nil {
			return err
		}
	}

	outer, inner := d.DegToPix(0.6)/2, d.DegToPix(0.2)/2
	for i, p := range points {
		draw := func() error {
			d.fillSpans(CircleSpans(p.X, p.Y, outer), d.cfg.FixationColor)
			d.fillSpans(CircleSpans(p.X, p.Y, inner), d.cfg.BGColor)
			return nil
		}
		if err := d.Show(draw); err != nil {
			return err
		}
		if err := tk.SendMessage(fmt.Sprintf("CALIBRATION_POINT %d %.0f %.0f", i, p.X, p.Y)); err != nil {
			return err
		}
		key, _, _, err := WaitKeys(nil, 0, 0)
		if err != nil {
			return err
		}
		if key == sdl.K_ESCAPE {
			break
		}
	}

	done := "Calibration done. Press any key to continue."
	if err := d.Show(func() error { return d.DrawText(done, d.cfg.TextColor) }); err != nil {
		return err
	}
	_, _, _, err = WaitKeys(nil, 0, 0)
	return err
}
