package main

import (
	"bufio"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/jallerangel/portfolio/internal/config"
	"github.com/jallerangel/portfolio/internal/draw"
	"github.com/jallerangel/portfolio/internal/page"
	"github.com/jallerangel/portfolio/internal/session"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal("load .env", "err", err)
	}
	logger := config.NewLogger("portfolio")
	log.SetDefault(logger)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		logger.Fatal("enable raw mode", "err", err)
	}

	name := "local"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}

	c := page.NewClient(session.NewHub(), bufio.NewReader(os.Stdin), os.Stdout, page.ClientOptions{
		TermSizeFunc: draw.DefaultTermSizeFunc,
		User:         name,
		Transport:    "local",
	})
	restore := func() error { return term.Restore(fd, oldState) }
	os.Exit(finish(logger, restore, c.Run()))
}

// finish leaves raw mode, then reports runErr, and returns the exit code.
// Logging waits for the restore so the message is not mangled by raw mode.
func finish(logger *log.Logger, restore func() error, runErr error) int {
	if err := restore(); err != nil {
		logger.Warn("restore terminal", "err", err)
	}
	if runErr != nil {
		logger.Error("portfolio error", "err", runErr)
		return 1
	}
	return 0
}
