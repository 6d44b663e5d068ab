package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/pagekeeper/internal/admin"
)

func main() {
	if err := admin.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
