package main

import "github.com/icco/gridseq/cmd"

func main() {
	cmd.Execute()
}
