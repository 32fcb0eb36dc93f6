package main

import "github.com/naoyak/gh-pulse/cmd"

func main() {
	cmd.Execute()
}
