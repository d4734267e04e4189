// Package datalog writes the behavioral data of a session: one tab separated
// row per trial plus a JSON sidecar describing the participant.
package datalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

const FileName = "data.tsv"

var ErrMalformedLog = errors.New("malformed data log")

// Record is one trial as it is logged.
type Record struct {
	Trial     int
	Choice    string
	Ambiguous bool
	// RT in seconds, only meaningful if Valid.
	RT      float64
	Valid   bool
	ITIMS   float64
	Correct string
	Stream  string
	State   int
	Samples []int
}

// Header returns the column names for n samples.
func Header(nSamples int) []string {
	h := []string{"trial", "choice", "ambiguous", "rt", "validity", "iti", "correct", "stream", "state"}
	for i := 1; i <= nSamples; i++ {
		h = append(h, "sample"+strconv.Itoa(i))
	}
	return h
}

func (r Record) row() []string {
	rt := "n/a"
	if r.Valid {
		rt = strconv.FormatFloat(r.RT, 'f', -1, 64)
	}
	row := []string{
		strconv.Itoa(r.Trial),
		r.Choice,
		strconv.FormatBool(r.Ambiguous),
		rt,
		strconv.FormatBool(r.Valid),
		strconv.FormatFloat(r.ITIMS, 'f', -1, 64),
		r.Correct,
		r.Stream,
		strconv.Itoa(r.State),
	}
	for _, s := range r.Samples {
		row = append(row, strconv.Itoa(s))
	}
	return row
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	return cr
}

// Append adds rec to the log at path, writing the header first if the file
// is new. The file is closed after every trial so an aborted session keeps
// all completed trials.
func Append(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := newWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header(len(rec.Samples))); err != nil {
			return err
		}
	}
	if err := w.Write(rec.row()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// Read loads the log at path as column-name keyed rows.
func Read(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := newReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLog, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrMalformedLog, i+2, len(rec), len(header))
		}
		row := make(map[string]string, len(header))
		for j, name := range header {
			row[name] = rec[j]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Accuracy returns the overall accuracy and the accuracy over the last
// blockSize trials, in rounded percent. Trials without a choice count as
// wrong.
func Accuracy(path string, blockSize int) (overall, block int, err error) {
	rows, err := Read(path)
	if err != nil {
		return 0, 0, err
	}
	if blockSize <= 0 || blockSize > len(rows) {
		blockSize = len(rows)
	}
	return percentCorrect(rows), percentCorrect(rows[len(rows)-blockSize:]), nil
}

func percentCorrect(rows []map[string]string) int {
	if len(rows) == 0 {
		return 0
	}
	n := 0
	for _, r := range rows {
		if ok, err := strconv.ParseBool(r["correct"]); err == nil && ok {
			n++
		}
	}
	return int(math.Round(100 * float64(n) / float64(len(rows))))
}
