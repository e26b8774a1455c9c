package main

import "github.com/notargets/meshtally/cmd"

func main() {
	cmd.Execute()
}
