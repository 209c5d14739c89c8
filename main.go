package main

import "github.com/agentic-research/wildcards/cmd"

func main() {
	cmd.Execute()
}
