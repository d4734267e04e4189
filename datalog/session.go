package datalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunType is the mode the experiment runs in.
type RunType string

const (
	// Experiment runs a participant. Existing data is never overwritten.
	Experiment RunType = "experiment"
	// Training shows feedback after every choice.
	Training RunType = "training"
	// Test behaves like Experiment but writes to sub-test.
	Test RunType = "test"
	// Instructions only shows the participant instructions.
	Instructions RunType = "instructions"
)

func ParseRunType(s string) (RunType, error) {
	switch RunType(s) {
	case Experiment, Training, Test, Instructions:
		return RunType(s), nil
	}
	return "", fmt.Errorf("unknown run type %q", s)
}

var (
	ErrNoDataDir  = errors.New("data directory does not exist")
	ErrDataExists = errors.New("data already exists")
)

// Participant holds the survey answers. Only ID is required.
type Participant struct {
	ID         int
	Age        int
	Sex        string
	Handedness string
}

// Session locates the output of one run.
type Session struct {
	ID         uuid.UUID
	SubjectDir string
	StreamDir  string
	InfoFile   string
}

// LogFile is the per-trial data log of the session.
func (s *Session) LogFile() string {
	return filepath.Join(s.StreamDir, FileName)
}

// SubjectLabel is the zero padded ID for experiment runs and "test"
// otherwise.
func SubjectLabel(rt RunType, p Participant) string {
	if rt == Experiment {
		return fmt.Sprintf("%02d", p.ID)
	}
	return "test"
}

// Prepare creates the subject and stream directories below dataDir and
// writes the experiment info sidecar. Experiment runs refuse to touch an
// existing stream directory or info file.
func Prepare(dataDir string, rt RunType, stream string, p Participant, version string, now time.Time) (*Session, error) {
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoDataDir, dataDir)
	}

	label := SubjectLabel(rt, p)
	subjDir := filepath.Join(dataDir, "sub-"+label)
	streamDir := filepath.Join(subjDir, stream)

	if _, err := os.Stat(streamDir); err == nil && rt == Experiment {
		return nil, fmt.Errorf("%w: stream directory %s for subject ID %s", ErrDataExists, stream, label)
	}

	infoFile := filepath.Join(subjDir, fmt.Sprintf("experiment_info_stream-%s.json", stream))
	if _, err := os.Stat(infoFile); err == nil && rt == Experiment {
		return nil, fmt.Errorf("%w: %s", ErrDataExists, infoFile)
	}

	if err := os.MkdirAll(streamDir, 0o755); err != nil {
		return nil, err
	}

	s := &Session{
		ID:         uuid.New(),
		SubjectDir: subjDir,
		StreamDir:  streamDir,
		InfoFile:   infoFile,
	}

	data := map[string]any{
		"experiment_version": version,
		"recording_datetime": now.Format("2006-01-02T15:04:05.000000"),
		"stream":             stream,
		"session_id":         s.ID.String(),
	}
	if rt == Experiment {
		data["ID"] = p.ID
		data["Age"] = p.Age
		data["Sex"] = p.Sex
		data["Handedness"] = p.Handedness
	} else {
		data["ID"] = label
	}

	// map keys are marshaled sorted
	b, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(infoFile, append(b, '\n'), 0o644); err != nil {
		return nil, err
	}
	return s, nil
}
