package metrics

import (
	"github.com/sirupsen/logrus"
)

type Logger interface {
	Log(info *RunInfo)
}

// LogrusLogger writes run summaries as a single JSON log line.
type LogrusLogger struct {
	log logrus.FieldLogger
}

func NewLogrusLogger(log logrus.FieldLogger) *LogrusLogger {
	return &LogrusLogger{log: log}
}

func (l *LogrusLogger) Log(info *RunInfo) {
	infoStr, err := info.ToJSON()
	if err != nil {
		l.log.Errorf("run summary: %v", err)
		return
	}
	l.log.Infof("Run summary: %s", infoStr)
}
