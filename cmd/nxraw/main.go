package main

import (
	"github.com/dl-alexandre/nxraw/internal/cli"
)

func main() {
	cli.Execute()
}
