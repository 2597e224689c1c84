package metrics

import (
	"encoding/json"
	"time"

	"github.com/sansa-eo/spot-eo3/utils"
)

type FailureInfo struct {
	Path  string          `json:"path"`
	Kind  utils.ErrorKind `json:"kind"`
	Error string          `json:"error"`
}

// RunInfo summarises one pass over an input directory.
type RunInfo struct {
	Directory  string         `json:"directory"`
	StartTime  time.Time      `json:"start_time"`
	Duration   time.Duration  `json:"duration"`
	NumScanned int            `json:"num_scanned"`
	NumWritten int            `json:"num_written"`
	NumIndexed int            `json:"num_indexed"`
	Failures   []*FailureInfo `json:"failures,omitempty"`
}

type RunCollector struct {
	Info   *RunInfo
	logger Logger
}

func NewRunCollector(directory string, logger Logger) *RunCollector {
	return &RunCollector{
		Info:   &RunInfo{Directory: directory, StartTime: time.Now().UTC()},
		logger: logger,
	}
}

func (m *RunCollector) Fail(path string, err error) {
	m.Info.Failures = append(m.Info.Failures, &FailureInfo{
		Path:  path,
		Kind:  utils.KindOf(err),
		Error: err.Error(),
	})
}

func (m *RunCollector) Log() {
	m.Info.Duration = time.Since(m.Info.StartTime)
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

func (i *RunInfo) NumFailed() int {
	return len(i.Failures)
}

func (i *RunInfo) ToJSON() (string, error) {
	out, err := json.Marshal(i)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
