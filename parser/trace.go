package parser

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type tracer struct {
	logger *logrus.Logger
	indent string
	msg    string
}

func (s Scope) logger() *logrus.Logger {
	if l := s.budget().logger; l != nil {
		return l
	}
	return logrus.StandardLogger()
}

// enterf logs entry into a parse step at trace level. The returned tracer logs the
// matching exit; it does nothing unless tracing is enabled.
func (s Scope) enterf(format string, args ...interface{}) *tracer {
	logger := s.logger()
	if !logger.IsLevelEnabled(logrus.TraceLevel) {
		return nil
	}
	t := &tracer{
		logger: logger,
		indent: strings.Repeat("  ", s.GetCallStack().Depth()),
		msg:    fmt.Sprintf(format, args...),
	}
	logger.Tracef("%s--> %s", t.indent, t.msg)
	return t
}

func (t *tracer) exit(out *Node, err *error) {
	if t == nil {
		return
	}
	if *err != nil {
		entry := t.logger.WithField("error", shortError(*err))
		entry.Tracef("%s<-- %s", t.indent, t.msg)
		return
	}
	t.logger.WithField("range", out.Range()).Tracef("%s<-- %s = %q", t.indent, t.msg, out.Raw())
}

func shortError(err error) string {
	if pe, ok := err.(*ParseError); ok {
		return pe.summary()
	}
	return err.Error()
}
