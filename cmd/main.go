package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gbsl/edsync/internal/interfaces/cli"
	"github.com/gbsl/edsync/internal/interfaces/di"
)

func main() {
	container := di.NewContainer()

	code := cli.Execute(container.GetCLIContainer())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := container.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
	}

	cancel()
	os.Exit(code)
}
