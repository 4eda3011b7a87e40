package main

import (
	"os"

	"github.com/mgrantham/verdict/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
