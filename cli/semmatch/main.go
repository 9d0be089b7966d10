package main

import (
	"os"

	semmatchcmder "github.com/talentlens/semmatch/cmd/semmatch"
)

func main() {
	cmd := semmatchcmder.NewSemmatchCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
