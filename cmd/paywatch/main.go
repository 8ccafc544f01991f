package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := RootCmd.Execute(); err != nil {
		if !errors.Is(err, errNotPaid) {
			fmt.Fprintln(os.Stderr, "paywatch:", err)
		}
		os.Exit(1)
	}
}
