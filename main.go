package main

import "github.com/picodeck/picodeck/cmd"

func main() {
	cmd.Execute()
}
