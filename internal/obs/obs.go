// Package obs provides the structured logging used across the module
// subsystem: every call site logs through a logger scoped with a
// consistent "component" field.
package obs

import "github.com/sirupsen/logrus"

var base = logrus.StandardLogger()

func init() {
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// For returns a logger entry scoped to one component.
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetLevel adjusts the package-wide log level.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}
