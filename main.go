package main

import "github.com/violenttestpen/urlbench/internal/cli"

func main() {
	cli.Execute()
}
