package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lomoval/otus-golang/events_manager/internal/app"
	"github.com/lomoval/otus-golang/events_manager/internal/logger"
	"github.com/lomoval/otus-golang/events_manager/internal/storage"
	"github.com/lomoval/otus-golang/events_manager/internal/storagebuilder"
	"github.com/lomoval/otus-golang/events_manager/internal/terminal"
	log "github.com/sirupsen/logrus"
)

var (
	configFile string
	envFile    string
)

func init() {
	flag.StringVar(&configFile, "config", "./configs/config.yaml", "Path to configuration file")
	flag.StringVar(&envFile, "env", ".env", "Path to file with environment variables")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	if flag.Arg(0) == "version" {
		printVersion()
		return
	}

	config, err := NewConfig(configFile, envFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		os.Exit(1)
	}
	logCloser, err := logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	stor, err := storagebuilder.New(config.Storage)
	if err != nil {
		log.Errorf("failed to start %v", err)
		logCloser.Close()
		os.Exit(1) //nolint:gocritic
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	run(ctx, config.Terminal, stor, os.Stdin, os.Stdout)
}

// run shows the menu over stor and closes stor when the menu ends, fails or ctx is done.
func run(ctx context.Context, config terminal.Config, stor storage.Storage, in io.Reader, out io.Writer) {
	defer closeStorage(stor)

	menu := terminal.New(config, app.New(stor), in, out)
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("unexpected error: %v", r)
			}
		}()
		done <- menu.Run(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		// Input reading can't be interrupted, the goroutine ends with the process.
		err = ctx.Err()
	}
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(out, "\nApplication terminated by user.")
	case err != nil:
		fmt.Fprintf(out, "\nAn error occurred: %v\n", err)
		log.Errorf("terminal stopped: %v", err)
	}
}

func closeStorage(s storage.Storage) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		log.Errorf("failed to close storage: %v", err)
		return
	}
	log.Info("storage closed")
}
