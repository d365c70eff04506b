// Command bpnotify sends BigPanda change and deployment notifications from
// a CI build step.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
