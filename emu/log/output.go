package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

// SetOutput sets the destination of all log entries.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// SetColors selects the colored text formatter, or the plain one.
func SetColors(colors bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   colors,
		DisableColors: !colors,
		FullTimestamp: false,
	})
}

func init() {
	// Entries are filtered per module before reaching logrus.
	logrus.SetLevel(logrus.DebugLevel)
}
