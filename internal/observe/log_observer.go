package observe

import (
	"context"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// progress and completion messages per verb.
var verbMessages = map[types.Verb][2]string{
	types.VerbCreateDirectory: {"creating directory at", "created directory at"},
	types.VerbReadDirectory:   {"reading directory at", "read directory at"},
	types.VerbWriteFile:       {"writing file at", "wrote file at"},
	types.VerbReadFile:        {"reading file at", "read file at"},
	types.VerbDelete:          {"deleting object at", "deleted object at"},
}

// LogObserver logs storage operations at debug level. Failures are logged at
// debug level too: the index treats most of them as empty results.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an observer writing to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// OnOperation implements types.Observer.
func (o *LogObserver) OnOperation(verb types.Verb, path string) {
	o.logger.Debug(message(verb, 0), "path", path)
}

// OnOperationDone implements types.Observer.
func (o *LogObserver) OnOperationDone(verb types.Verb, path string, elapsed time.Duration, err error) {
	if err != nil {
		o.logger.Debug(string(verb)+" failed", "path", path, "err", err)
		return
	}
	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	o.logger.Debug(message(verb, 1), "path", path, "elapsed", elapsed)
}

func message(verb types.Verb, i int) string {
	if m, ok := verbMessages[verb]; ok {
		return m[i]
	}
	return string(verb)
}
