package quizconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/quizrun/cmds"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
)

//go:embed schema.cue
var Schema string

var configFlag = cmds.Collect[string]("-config")

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {

	var paths []string
	defer func() {
		if len(paths) > 0 {
			logger.Info("config file",
				"paths", paths,
			)
		}
	}()

	// explicit files take precedence
	paths = append(paths, *configFlag...)

	filenames := []string{
		"quizrun.cue",
		".quizrun.cue",
		"quizrun.yaml",
		".quizrun.yaml",
	}

	var dirs []string
	// working directory
	if workingDir, err := os.Getwd(); err == nil {
		dirs = append(dirs, workingDir)
	}
	// user config dir
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, configDir)
	}
	// system wide dir
	dirs = append(dirs, "/etc")

	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	return configs.NewLoader(paths, Schema)
}
