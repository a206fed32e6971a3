// logger setup, one plain line per event w no decoration
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

// lineFormatter emits just the message, every line's shape is already
// fixed by the caller
type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	return append([]byte(e.Message), '\n'), nil
}

// New builds the server logger, empty path logs to stderr
// logrus serializes writes internally so the sink is safe to share
// between the event loop and the workers
func New(path string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(lineFormatter{})
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		log.SetOutput(f)
	}
	return log, nil
}
