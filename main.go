package main

import "arcx/cmd"

func main() {
	cmd.Execute()
}
