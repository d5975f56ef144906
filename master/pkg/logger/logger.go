package logger

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
)

// New returns an echo logger that writes through the standard logrus logger, tagging every
// entry with the given context.
func New(ctx Context) echo.Logger {
	return &echoLogger{
		log:   logrus.StandardLogger(),
		entry: logrus.WithFields(ctx.Fields()),
	}
}

type echoLogger struct {
	log   *logrus.Logger
	entry *logrus.Entry
}

func marshalJSON(j log.JSON) string {
	b, err := json.Marshal(j)
	if err != nil {
		return fmt.Sprintf("%v", map[string]interface{}(j))
	}
	return string(b)
}

// SetLevel is a no-op; the level is owned by logrus (see SetLogrus).
func (l *echoLogger) SetLevel(v log.Lvl) {}

func (l *echoLogger) Level() log.Lvl {
	switch l.log.GetLevel() {
	case logrus.TraceLevel, logrus.DebugLevel:
		return log.DEBUG
	case logrus.InfoLevel:
		return log.INFO
	case logrus.WarnLevel:
		return log.WARN
	default:
		return log.ERROR
	}
}

func (l *echoLogger) SetOutput(w io.Writer) { l.log.SetOutput(w) }
func (l *echoLogger) Output() io.Writer     { return l.log.Out }
func (l *echoLogger) SetPrefix(p string)    {}
func (l *echoLogger) Prefix() string        { return "" }
func (l *echoLogger) SetHeader(h string)    {}

func (l *echoLogger) Print(i ...interface{})                    { l.entry.Print(i...) }
func (l *echoLogger) Printf(format string, args ...interface{}) { l.entry.Printf(format, args...) }
func (l *echoLogger) Printj(j log.JSON)                         { l.entry.Print(marshalJSON(j)) }
func (l *echoLogger) Debug(i ...interface{})                    { l.entry.Debug(i...) }
func (l *echoLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *echoLogger) Debugj(j log.JSON)                         { l.entry.Debug(marshalJSON(j)) }
func (l *echoLogger) Info(i ...interface{})                     { l.entry.Info(i...) }
func (l *echoLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *echoLogger) Infoj(j log.JSON)                          { l.entry.Info(marshalJSON(j)) }
func (l *echoLogger) Warn(i ...interface{})                     { l.entry.Warn(i...) }
func (l *echoLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *echoLogger) Warnj(j log.JSON)                          { l.entry.Warn(marshalJSON(j)) }
func (l *echoLogger) Error(i ...interface{})                    { l.entry.Error(i...) }
func (l *echoLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *echoLogger) Errorj(j log.JSON)                         { l.entry.Error(marshalJSON(j)) }
func (l *echoLogger) Fatal(i ...interface{})                    { l.entry.Fatal(i...) }
func (l *echoLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }
func (l *echoLogger) Fatalj(j log.JSON)                         { l.entry.Fatal(marshalJSON(j)) }
func (l *echoLogger) Panic(i ...interface{})                    { l.entry.Panic(i...) }
func (l *echoLogger) Panicf(format string, args ...interface{}) { l.entry.Panicf(format, args...) }
func (l *echoLogger) Panicj(j log.JSON)                         { l.entry.Panic(marshalJSON(j)) }
