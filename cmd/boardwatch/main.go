package main

import (
	"log"

	"github.com/sameanonim/imageboard/internal/cli"
)

func main() {
	boardwatchCmd := cli.NewCommand()
	if err := boardwatchCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
