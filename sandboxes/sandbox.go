package sandboxes

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/reusee/quizrun/cmds"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/quizconfigs"
)

var safeFlag = cmds.Switch("-safe")

// Enabled reports whether the filesystem sandbox should be applied.
type Enabled bool

func (Module) Enabled() Enabled {
	return Enabled(*safeFlag)
}

// WritablePaths are the only directory trees the process may modify once
// sandboxed. Child processes inherit the restriction.
type WritablePaths []string

func (Module) WritablePaths(
	loader configs.Loader,
	files quizconfigs.FilesDir,
	outputs quizconfigs.OutputsDir,
) (ret WritablePaths) {
	ret = append(ret,
		".",
		string(files),
		string(outputs),
		os.TempDir(),
	)
	ret = append(ret, configs.First[[]string](loader, "sandbox_writable")...)
	for i, path := range ret {
		if abs, err := filepath.Abs(path); err == nil {
			ret[i] = abs
		}
	}
	slices.Sort(ret)
	return slices.Compact(ret)
}

type Apply func() error

func (Module) Apply(
	enabled Enabled,
	paths WritablePaths,
	logger logs.Logger,
) Apply {
	return func() error {
		if !enabled {
			return nil
		}
		if err := restrict(logger, paths); err != nil {
			return fmt.Errorf("apply sandbox: %w", err)
		}
		return nil
	}
}
