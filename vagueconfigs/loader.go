package vagueconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/modes"
)

//go:embed schema.cue
var Schema string

var filenames = []string{
	"vague.cue",
	".vague.cue",
}

func (Module) ConfigsLoader(
	logger logs.Logger,
	workDir modes.WorkDir,
) configs.Loader {

	var paths []string
	defer func() {
		if len(paths) > 0 {
			logger.Info("config file",
				"paths", paths,
			)
		}
	}()

	// working directory
	paths = append(paths, existing(string(workDir))...)

	// user config dir
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, existing(filepath.Join(configDir, "vague"))...)
		paths = append(paths, existing(configDir)...)
	}

	// system wide dir
	paths = append(paths, existing("/etc")...)

	return configs.NewLoader(paths, Schema)
}

func existing(dir string) (ret []string) {
	for _, filename := range filenames {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			ret = append(ret, path)
		}
	}
	return
}
