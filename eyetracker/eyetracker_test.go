package eyetracker_test

import (
	"testing"
	"time"

	"github.com/sappelhoff/ecomp-experiment/eyetracker"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDummy(t *testing.T) {
	Convey("Given dummy mode", t, func() {
		tk, err := eyetracker.Open(true, "100.1.1.1")
		So(err, ShouldBeNil)
		d := tk.(*eyetracker.Dummy)

		Convey("When setting up and recording", func() {
			err := eyetracker.Setup(tk, eyetracker.Options{
				ScreenW: 2560, ScreenH: 1440,
				EDFName:         "10191200.edf",
				CalibrationType: "HV5",
			})
			So(err, ShouldBeNil)
			So(eyetracker.StartRecording(tk), ShouldBeNil)
			recording := d.Recording()
			So(tk.SendMessage("80"), ShouldBeNil)
			So(eyetracker.StopRecording(tk, "10191200.edf", t.TempDir()), ShouldBeNil)

			Convey("Then the configuration and the messages are recorded", func() {
				So(recording, ShouldBeTrue)
				So(d.Recording(), ShouldBeFalse)
				So(d.Messages(), ShouldResemble, []string{
					"DISPLAY_COORDS = 0 0 2559 1439",
					"recording_start",
					"80",
					"recording_stop",
				})
				cmds := d.Commands()
				So(cmds, ShouldContain, "screen_pixel_coords = 0 0 2559 1439")
				So(cmds, ShouldContain, "calibration_type = HV5")
				So(cmds, ShouldContain, "add_file_preamble_text eComp")
				So(cmds, ShouldContain, "calibration_area_proportion 0.7 0.7")
			})
		})

		Convey("When the calibration type is unknown", func() {
			err := eyetracker.Setup(tk, eyetracker.Options{ScreenW: 10, ScreenH: 10, EDFName: "a.edf", CalibrationType: "HV7"})
			So(err, ShouldWrap, eyetracker.ErrCalibrationType)
		})
	})

	Convey("Given a hardware tracker request", t, func() {
		_, err := eyetracker.Open(false, "100.1.1.1")
		So(err, ShouldWrap, eyetracker.ErrNoDriver)
	})
}

func TestEDFName(t *testing.T) {
	Convey("Given EDF file names", t, func() {
		So(eyetracker.ValidateEDFName("sub_01.edf"), ShouldBeNil)
		So(eyetracker.ValidateEDFName("subject01.edf"), ShouldWrap, eyetracker.ErrEDFName)
		So(eyetracker.ValidateEDFName("sub-01.edf"), ShouldWrap, eyetracker.ErrEDFName)
		So(eyetracker.ValidateEDFName("sub01.txt"), ShouldWrap, eyetracker.ErrEDFName)

		Convey("Then names derived from time are valid", func() {
			name := eyetracker.EDFName(time.Date(2026, 3, 7, 9, 5, 0, 0, time.UTC))
			So(name, ShouldEqual, "03070905.edf")
			So(eyetracker.ValidateEDFName(name), ShouldBeNil)
		})
	})
}

func TestCalibrationPoints(t *testing.T) {
	Convey("Given a 1000 x 800 screen", t, func() {
		Convey("When using HV5", func() {
			pts, err := eyetracker.CalibrationPoints("HV5", 1000, 800)

			Convey("Then the center comes first and targets stay in the 70% area", func() {
				So(err, ShouldBeNil)
				So(pts, ShouldHaveLength, 5)
				So(pts[0], ShouldResemble, eyetracker.Point{X: 500, Y: 400})
				So(pts[1], ShouldResemble, eyetracker.Point{X: 500, Y: 120})
				So(pts[4], ShouldResemble, eyetracker.Point{X: 850, Y: 400})
			})
		})

		Convey("When using HV9", func() {
			pts, err := eyetracker.CalibrationPoints("HV9", 1000, 800)
			So(err, ShouldBeNil)
			So(pts, ShouldHaveLength, 9)
			So(pts[8], ShouldResemble, eyetracker.Point{X: 850, Y: 680})
		})
	})
}
