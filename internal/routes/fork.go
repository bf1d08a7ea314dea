package routes

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/toyz/modelcore/internal/errors"
)

// Apply sets the options on the current process and returns a function
// restoring the previous settings. When an env entry cannot be set, the
// settings applied so far are restored and the error is returned.
func (o ForkOptions) Apply() (restore func(), err error) {
	var undo []func()
	restore = func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	if o.MemoryLimit > 0 {
		previous := debug.SetMemoryLimit(o.MemoryLimit)
		undo = append(undo, func() { debug.SetMemoryLimit(previous) })
	}
	if o.MaxProcs > 0 {
		previous := runtime.GOMAXPROCS(o.MaxProcs)
		undo = append(undo, func() { runtime.GOMAXPROCS(previous) })
	}
	for key, value := range o.Env {
		previous, existed := os.LookupEnv(key)
		if err := os.Setenv(key, value); err != nil {
			restore()
			return func() {}, errors.WrapConfigurationError("fork env "+key, "apply", err)
		}
		undo = append(undo, func() {
			if existed {
				os.Setenv(key, previous)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	return restore, nil
}
