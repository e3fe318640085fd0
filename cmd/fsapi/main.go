package main

import (
	"github.com/fortishield/fortishield-qa-framework/internal/cli"
)

func main() {
	cli.Execute()
}
