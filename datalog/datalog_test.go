package datalog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sappelhoff/ecomp-experiment/datalog"
	. "github.com/smartystreets/goconvey/convey"
)

func record(trial int, correct string) datalog.Record {
	return datalog.Record{
		Trial:   trial,
		Choice:  "red",
		RT:      0.5125,
		Valid:   true,
		ITIMS:   750,
		Correct: correct,
		Stream:  "dual",
		State:   1,
		Samples: []int{-1, 2, -3, 4, -5, 6, -7, 8},
	}
}

func TestAppend(t *testing.T) {
	Convey("Given an empty stream directory", t, func() {
		path := filepath.Join(t.TempDir(), datalog.FileName)

		Convey("When appending two trials", func() {
			So(datalog.Append(path, record(0, "true")), ShouldBeNil)
			timeout := record(1, "n/a")
			timeout.Valid = false
			timeout.Choice = "n/a"
			So(datalog.Append(path, timeout), ShouldBeNil)

			Convey("Then the header is written once and rows are tab separated", func() {
				b, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(string(b)), "\n")
				So(lines, ShouldHaveLength, 3)
				So(lines[0], ShouldStartWith, "trial\tchoice\tambiguous\trt\tvalidity\titi\tcorrect\tstream\tstate\tsample1")
				So(lines[0], ShouldEndWith, "sample8")
				So(lines[1], ShouldEqual, "0\tred\tfalse\t0.5125\ttrue\t750\ttrue\tdual\t1\t-1\t2\t-3\t4\t-5\t6\t-7\t8")
				So(lines[2], ShouldStartWith, "1\tn/a\tfalse\tn/a\tfalse\t")
			})

			Convey("Then the rows can be read back by column", func() {
				rows, err := datalog.Read(path)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[1]["rt"], ShouldEqual, "n/a")
				So(rows[0]["sample8"], ShouldEqual, "8")
			})
		})
	})
}

func TestAccuracy(t *testing.T) {
	Convey("Given a log with 3 correct out of 4 trials", t, func() {
		path := filepath.Join(t.TempDir(), datalog.FileName)
		for i, c := range []string{"true", "true", "n/a", "True"} {
			So(datalog.Append(path, record(i, c)), ShouldBeNil)
		}

		Convey("When the block is the last two trials", func() {
			overall, block, err := datalog.Accuracy(path, 2)

			Convey("Then timeouts count as wrong", func() {
				So(err, ShouldBeNil)
				So(overall, ShouldEqual, 75)
				So(block, ShouldEqual, 50)
			})
		})

		Convey("When the block is larger than the log", func() {
			overall, block, err := datalog.Accuracy(path, 10)
			So(err, ShouldBeNil)
			So(block, ShouldEqual, overall)
		})
	})

	Convey("Given a missing log", t, func() {
		_, _, err := datalog.Accuracy(filepath.Join(t.TempDir(), "nope.tsv"), 1)
		So(err, ShouldNotBeNil)
	})
}

func TestPrepare(t *testing.T) {
	Convey("Given a data directory", t, func() {
		dataDir := t.TempDir()
		now := time.Date(2026, 10, 19, 14, 3, 2, 0, time.UTC)
		p := datalog.Participant{ID: 7, Age: 25, Sex: "Female", Handedness: "Right"}

		Convey("When preparing an experiment run", func() {
			s, err := datalog.Prepare(dataDir, datalog.Experiment, "single", p, "0.1.0", now)

			Convey("Then the subject and stream directories exist", func() {
				So(err, ShouldBeNil)
				So(s.StreamDir, ShouldEqual, filepath.Join(dataDir, "sub-07", "single"))
				So(s.LogFile(), ShouldEqual, filepath.Join(dataDir, "sub-07", "single", "data.tsv"))
				_, err := os.Stat(s.StreamDir)
				So(err, ShouldBeNil)
			})

			Convey("Then the info file holds the participant", func() {
				b, err := os.ReadFile(s.InfoFile)
				So(err, ShouldBeNil)
				var info map[string]any
				So(json.Unmarshal(b, &info), ShouldBeNil)
				So(info["Age"], ShouldEqual, 25.0)
				So(info["stream"], ShouldEqual, "single")
				So(info["recording_datetime"], ShouldEqual, "2026-10-19T14:03:02.000000")
				So(info["session_id"], ShouldEqual, s.ID.String())
				So(string(b), ShouldStartWith, "{\n    \"Age\"")
			})

			Convey("Then a second experiment run is refused", func() {
				_, err := datalog.Prepare(dataDir, datalog.Experiment, "single", p, "0.1.0", now)
				So(err, ShouldWrap, datalog.ErrDataExists)
			})

			Convey("Then the other stream is still allowed", func() {
				_, err := datalog.Prepare(dataDir, datalog.Experiment, "dual", p, "0.1.0", now)
				So(err, ShouldBeNil)
			})
		})

		Convey("When preparing test runs twice", func() {
			_, err1 := datalog.Prepare(dataDir, datalog.Test, "dual", p, "0.1.0", now)
			s, err2 := datalog.Prepare(dataDir, datalog.Training, "dual", p, "0.1.0", now)

			Convey("Then both go to sub-test and overwrite", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(s.SubjectDir, ShouldEqual, filepath.Join(dataDir, "sub-test"))
			})
		})

		Convey("When the data directory is missing", func() {
			_, err := datalog.Prepare(filepath.Join(dataDir, "missing"), datalog.Test, "dual", p, "0.1.0", now)
			So(err, ShouldWrap, datalog.ErrNoDataDir)
		})
	})

	Convey("Given run type strings", t, func() {
		rt, err := datalog.ParseRunType("training")
		So(err, ShouldBeNil)
		So(rt, ShouldEqual, datalog.Training)
		_, err = datalog.ParseRunType("pilot")
		So(err, ShouldNotBeNil)
	})
}
