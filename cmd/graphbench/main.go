package main

import "github.com/hupe1980/poolgraph/cmd/graphbench/cmd"

func main() {
	cmd.Execute()
}
