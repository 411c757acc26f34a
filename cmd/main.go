package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"visaAgent/internal/cli"
	"visaAgent/internal/cli/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, ui.ColorRed+ui.IconCross+" Ошибка:"+ui.ColorReset+" %v\n", err)
		stop()
		os.Exit(1)
	}
}
