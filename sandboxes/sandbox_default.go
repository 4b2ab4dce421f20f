//go:build !linux

package sandboxes

import "github.com/reusee/quizrun/logs"

func restrict(logger logs.Logger, paths []string) error {
	logger.Warn("filesystem sandbox not supported on this platform")
	return nil
}
