package main

import (
	"os"

	"github.com/esnya/ResoBotGW/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
