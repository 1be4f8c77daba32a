// The main package for the unegui-scraper executable.
package main

import (
	"github.com/ganbold/unegui-scraper/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
