package main

import (
	"context"
	"fmt"
	"os"
)

// Заполняется через ldflags при сборке.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}
