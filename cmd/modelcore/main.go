package main

import (
	"os"
)

func main() {
	a := newApp()
	if err := a.rootCommand().Execute(); err != nil {
		a.diagnostics.Error("%v", err)
		os.Exit(1)
	}
}
