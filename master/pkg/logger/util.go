package logger

import "github.com/sirupsen/logrus"

// Context is a set of structured fields attached to a component's log entries.
type Context logrus.Fields

// Fields converts the context for use with logrus.WithFields.
func (c Context) Fields() logrus.Fields {
	return logrus.Fields(c)
}

// With returns a copy of the context with one more field set.
func (c Context) With(key string, value interface{}) Context {
	return MergeContexts(c, Context{key: value})
}

// MergeContexts returns a new merged Context object from the inputs, prefering later inputs.
func MergeContexts(xs ...Context) Context {
	ys := Context{}
	for _, x := range xs {
		for k, v := range x {
			ys[k] = v
		}
	}
	return ys
}
