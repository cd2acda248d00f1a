package main

import (
	"os"

	"github.com/rbxpath/rbxpath/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute(rbxpathVersion))
}
