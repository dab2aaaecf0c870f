package main

import (
	"os"

	"github.com/DwDestiny/StudyAbroadMatcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
