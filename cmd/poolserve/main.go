package main

import (
	"fmt"
	"os"

	"github.com/utkarsh5026/poolserve/cmd/poolserve/commands"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.Message(err))
		os.Exit(1)
	}
}
