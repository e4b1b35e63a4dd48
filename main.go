// main.go
package main

import "github.com/gewnthar/wiscflow/commands"

func main() {
	commands.Execute()
}
