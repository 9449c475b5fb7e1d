package main

import "github.com/funvibe/tycheck/pkg/cli"

func main() {
	cli.Run()
}
