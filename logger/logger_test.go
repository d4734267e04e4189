package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sappelhoff/ecomp-experiment/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		logger.InitWriter(&buf)
		logger.SetLevel(slog.LevelInfo)
		ctx := context.Background()
		log := logger.Named("ttl")

		Convey("When logging at info level", func() {
			log.Info(ctx, "trigger", logger.Int("code", 80), logger.Error(errors.New("boom")))

			Convey("Then fields, component and source are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "msg=trigger")
				So(out, ShouldContainSubstring, "code=80")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "component=ttl")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When debug is below the level", func() {
			log.Debug(ctx, "hidden")
			So(buf.String(), ShouldBeEmpty)
		})

		Convey("When the level is lowered to debug", func() {
			So(logger.SetLevelString("DEBUG"), ShouldBeNil)
			log.Debug(ctx, "shown")
			So(buf.String(), ShouldContainSubstring, "msg=shown")
		})

		Convey("When the level string is unknown", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestLevelBeforeInit(t *testing.T) {
	Convey("Given a level configured before the logger is installed", t, func() {
		So(logger.SetLevelString("debug"), ShouldBeNil)
		var buf bytes.Buffer
		logger.InitWriter(&buf)
		defer logger.SetLevel(slog.LevelInfo)

		Convey("When a named logger writes a debug record", func() {
			logger.Named("engine").Debug(context.Background(), "frame rate check")

			Convey("Then the configured level is kept", func() {
				So(buf.String(), ShouldContainSubstring, "msg=\"frame rate check\"")
				So(buf.String(), ShouldContainSubstring, "component=engine")
			})
		})
	})
}
