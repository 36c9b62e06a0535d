package main

import (
	"os"

	"github.com/termchat/termchat/cmd"
)

func main() {
	if os.Getenv("TERM") == "" {
		os.Setenv("TERM", "xterm-256color")
	}
	cmd.Execute()
}
