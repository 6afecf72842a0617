package state

import (
	"time"

	"ghostkit/config"
	"ghostkit/vars"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:  time.Now(),
		Format: config.OutputFormatCSS,
	}
}

// Vars returns style variable replacer built from configured breakpoints,
// falling back to the built-in table when there is no configuration.
func (e *LocalEnv) Vars() *vars.Replacer {
	if e.vars != nil {
		return e.vars
	}
	table := vars.DefaultBreakpoints()
	if e.Cfg != nil && len(e.Cfg.Styles.Breakpoints) > 0 {
		table = e.Cfg.Styles.Breakpoints
	}
	e.vars = vars.NewReplacer(table, e.Log)
	return e.vars
}
