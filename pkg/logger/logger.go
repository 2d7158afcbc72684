package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus logger
type Logger struct {
	*logrus.Logger
}

// New creates a logger for serviceName at the given level ("debug", "info",
// "warn", "error") and format ("json" or "text").
func New(serviceName, level, format string) *Logger {
	return NewWithOutput(serviceName, level, format, os.Stdout)
}

// NewWithOutput is New writing to out.
func NewWithOutput(serviceName, level, format string, out io.Writer) *Logger {
	log := logrus.New()

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	log.SetOutput(out)

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.AddHook(serviceHook{service: serviceName})

	return &Logger{Logger: log}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log}
}

// WithDonor adds the donor ID to log entries
func (l *Logger) WithDonor(donorID int64) *logrus.Entry {
	return l.WithField("donor_id", donorID)
}

// WithAgent adds the agent ID to log entries
func (l *Logger) WithAgent(agentID int64) *logrus.Entry {
	return l.WithField("agent_id", agentID)
}

// serviceHook stamps every entry with the service name.
type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}
