package quizconfigs

import (
	"os"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/vars"
)

// FilesDir holds downloaded artifacts. It is shared by all runs.
type FilesDir string

func (Module) FilesDir(
	loader configs.Loader,
) FilesDir {
	return vars.FirstNonZero(
		configs.First[FilesDir](loader, "files_dir"),
		"LLMFiles",
	)
}

// OutputsDir holds generated artifacts. It is shared by all runs.
type OutputsDir string

func (Module) OutputsDir(
	loader configs.Loader,
) OutputsDir {
	return vars.FirstNonZero(
		configs.First[OutputsDir](loader, "outputs_dir"),
		"outputs",
	)
}

type EnsureDirs func() error

func (Module) EnsureDirs(
	files FilesDir,
	outputs OutputsDir,
) EnsureDirs {
	return func() error {
		for _, dir := range []string{string(files), string(outputs)} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		return nil
	}
}
