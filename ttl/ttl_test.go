package ttl_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sappelhoff/ecomp-experiment/logger"
	"github.com/sappelhoff/ecomp-experiment/ttl"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingPort struct {
	bytes.Buffer
	reply  []byte
	closed bool
	fail   bool
}

func (p *recordingPort) Write(b []byte) (int, error) {
	if p.fail {
		return 0, errors.New("unplugged")
	}
	return p.Buffer.Write(b)
}

func (p *recordingPort) Read(b []byte) (int, error) {
	if len(p.reply) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.reply)
	p.reply = p.reply[n:]
	return n, nil
}

func (p *recordingPort) Close() error {
	p.closed = true
	return nil
}

type messages []string

func (m *messages) SendMessage(msg string) error {
	*m = append(*m, msg)
	return nil
}

func TestTable(t *testing.T) {
	Convey("Given the trigger table", t, func() {
		table := ttl.Table()

		Convey("Then dual codes are single codes plus the offset", func() {
			for key, val := range table {
				if !strings.HasPrefix(key, "single_") {
					continue
				}
				dual, ok := table[strings.Replace(key, "single_", "dual_", 1)]
				So(ok, ShouldBeTrue)
				So(int(dual)-ttl.DualStreamOffset, ShouldEqual, int(val))
			}
		})

		Convey("Then all codes are unique and non-zero", func() {
			seen := map[byte]string{}
			for key, val := range table {
				_, dup := seen[val]
				So(dup, ShouldBeFalse)
				So(val, ShouldNotEqual, byte(0))
				seen[val] = key
			}
			So(len(seen), ShouldEqual, len(table))
		})

		Convey("Then digits are coded by color and value", func() {
			codes, err := ttl.NewCodes("single")
			So(err, ShouldBeNil)
			c, _ := codes.Lookup(ttl.Digit(7))
			So(c, ShouldEqual, byte(17))
			c, _ = codes.Lookup(ttl.Digit(-3))
			So(c, ShouldEqual, byte(23))

			dual, _ := ttl.NewCodes("dual")
			c, _ = dual.Lookup(ttl.BeginExperiment)
			So(c, ShouldEqual, byte(180))
			c, _ = dual.Lookup(ttl.Response("red"))
			So(c, ShouldEqual, byte(134))
		})

		Convey("Then unknown events and streams are errors", func() {
			codes, _ := ttl.NewCodes("single")
			_, err := codes.Lookup("digit_0")
			So(err, ShouldWrap, ttl.ErrUnknownEvent)

			_, err = ttl.NewCodes("triple")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestResettingPort(t *testing.T) {
	Convey("Given a resetting port with a 20ms wait", t, func() {
		port := &recordingPort{}
		wait := 20 * time.Millisecond
		p := ttl.NewResettingPort(port, wait)

		Convey("When sending a code", func() {
			start := time.Now()
			err := p.Send(11)
			elapsed := time.Since(start)

			Convey("Then the code is followed by a zero after both waits", func() {
				So(err, ShouldBeNil)
				So(port.Bytes(), ShouldResemble, []byte{11, 0})
				So(elapsed, ShouldBeGreaterThanOrEqualTo, 2*wait)
			})
		})

		Convey("When the port fails", func() {
			port.fail = true
			So(p.Send(11), ShouldNotBeNil)
		})

		Convey("When closing", func() {
			So(p.Close(), ShouldBeNil)
			So(port.closed, ShouldBeTrue)
		})
	})
}

func TestDLPIO8G(t *testing.T) {
	Convey("Given the line commands", t, func() {
		Convey("Then bits map to lines 1 to 8", func() {
			So(string(ttl.LineCommands(0)), ShouldEqual, "QWERTYUI")
			So(string(ttl.LineCommands(1)), ShouldEqual, "1WERTYUI")
			So(string(ttl.LineCommands(80)), ShouldEqual, "QWER5Y7I")
			So(string(ttl.LineCommands(255)), ShouldEqual, "12345678")
		})
	})

	Convey("Given a device answering the ping", t, func() {
		port := &recordingPort{reply: []byte{'Q'}}
		d, err := ttl.NewDLPIO8G(port, 0)
		So(err, ShouldBeNil)

		Convey("When sending a code", func() {
			port.Reset()
			So(d.Send(3), ShouldBeNil)

			Convey("Then the lines are set and then cleared", func() {
				So(port.String(), ShouldEqual, "12ERTYUI"+"QWERTYUI")
			})
		})
	})

	Convey("Given a device that stays silent", t, func() {
		_, err := ttl.NewDLPIO8G(&recordingPort{}, 0)
		So(err, ShouldNotBeNil)
	})
}

func TestSender(t *testing.T) {
	Convey("Given a sender with a fake device and a mirror", t, func() {
		ctx := context.Background()
		codes, _ := ttl.NewCodes("dual")
		dev := &ttl.FakeDevice{}
		var mirror messages
		s := ttl.NewSender(codes, dev, &mirror, logger.Nop())

		Convey("When sending the new trial event", func() {
			err := s.Send(ctx, ttl.NewTrial)

			Convey("Then both the device and the mirror get the code", func() {
				So(err, ShouldBeNil)
				So(dev.Sent, ShouldResemble, []byte{101})
				So([]string(mirror), ShouldResemble, []string{"101"})
			})
		})

		Convey("When sending an unknown event", func() {
			err := s.Send(ctx, "lunch")
			So(err, ShouldWrap, ttl.ErrUnknownEvent)
			So(dev.Sent, ShouldBeEmpty)
		})
	})

	Convey("Given no trigger address", t, func() {
		dev, err := ttl.Open("serial", "", time.Millisecond)
		So(err, ShouldBeNil)
		_, fake := dev.(*ttl.FakeDevice)
		So(fake, ShouldBeTrue)

		_, err = ttl.Open("parallel", "LPT1", time.Millisecond)
		So(err, ShouldWrap, ttl.ErrUnknownDevice)
	})
}
