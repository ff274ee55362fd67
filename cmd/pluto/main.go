package main

import "plutoTodo/cmd/pluto/commands"

func main() {
	commands.Execute()
}
