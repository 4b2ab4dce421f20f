package logs

import (
	"io"
	"os"

	"github.com/reusee/quizrun/cmds"
)

// Writer receives human readable log lines.
type Writer io.Writer

func (Module) Writer() Writer {
	return os.Stderr
}

var logFileFlag = cmds.Var[string]("-log-file")

// FileWriter receives JSON log lines when -log-file is given. Nil means no
// log file.
type FileWriter io.Writer

func (Module) FileWriter() FileWriter {
	if *logFileFlag == "" {
		return nil
	}
	f, err := os.OpenFile(*logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		panic(err)
	}
	return f
}
