package main

import "github.com/callmetuna/padhneyAI/internal/cli"

func main() {
	cli.Execute()
}
