package main

import (
	"github.com/nlemma/numberguessr/internal/cli"
)

func main() {
	cli.Execute()
}
