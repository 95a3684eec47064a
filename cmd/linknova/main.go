package main

import "github.com/marshallshelly/linknova/cmd/linknova/commands"

func main() {
	commands.Execute()
}
