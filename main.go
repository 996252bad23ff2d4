package main

import "github.com/docdash/docdash/cmd/docdash/commands"

func main() {
	commands.Execute()
}
