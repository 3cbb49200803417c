package main

import "github.com/shrimptools/taskviewer/cmd"

func main() {
	cmd.Execute()
}
