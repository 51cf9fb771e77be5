package main

import (
	"graphpipe/cmd"
)

func main() {
	cmd.Execute()
}
