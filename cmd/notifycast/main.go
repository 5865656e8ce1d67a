package main

import (
	"github.com/kart-io/notifycast/internal/cli"
)

func main() {
	cli.Execute()
}
