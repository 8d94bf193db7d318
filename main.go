package main

import "github.com/itsmostafa/prayog/cmd"

func main() {
	cmd.Execute()
}
