package main

import (
	"os"
)

func main() {
	root := newRootCmd(loadConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
