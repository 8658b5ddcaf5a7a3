package main

import (
	"github.com/quickpad-app/quickpad/internal/backup/cli"
)

func main() {
	cli.Execute()
}
