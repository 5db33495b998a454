package main

import (
	"fmt"
	"os"

	"github.com/Volune/jackrabbit-filevault/cmd/vlt-sync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
