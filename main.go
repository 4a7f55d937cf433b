package main

import "github.com/clipseek/clipseek/cmd"

func main() {
	cmd.Execute()
}
