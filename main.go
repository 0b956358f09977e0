package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/cmd/cli"
)

const (
	exitErrorTemplateConstant    = "%v\n"
	environmentFileNameConstant  = ".env"
	environmentLoadErrorTemplate = "unable to load %s: %v\n"
)

// main loads an optional .env file and executes the visionlint command-line application.
func main() {
	if loadError := godotenv.Load(environmentFileNameConstant); loadError != nil && !errors.Is(loadError, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, environmentLoadErrorTemplate, environmentFileNameConstant, loadError)
	}
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
