package main

import "github.com/okian/mentor/internal/cli"

func main() {
	cli.Execute()
}
