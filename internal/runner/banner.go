package runner

import (
	"fmt"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
)

var banner = fmt.Sprintf(`

            _                     _ _
  ___ __ _ | |__  _   _ _ __   __| | | ___
 / __/ _' || '_ \| | | | '_ \ / _' | |/ _ \
| (_| (_| || |_) | |_| | | | | (_| | |  __/
 \___\__,_||_.__/ \__,_|_| |_|\__,_|_|\___|	%s
`, version)

var version = "v0.0.1"

// validateOptions validates the provided options for the runner
func (r *Runner) validateOptions() error {
	if r.options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
	if r.options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if r.options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if r.options.Silent && r.options.Verbose {
		return fmt.Errorf("silent and verbose options cannot be used together")
	}
	return nil
}

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tprojectdiscovery.io\n\n")
}
