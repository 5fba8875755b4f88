package main

import "github.com/kiesman99/pixeliter/cmd"

func main() {
	cmd.Execute()
}
