package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"gitlab.com/dirk.krummacker/phonebook/internal/clock"
	"gitlab.com/dirk.krummacker/phonebook/internal/command"
	"gitlab.com/dirk.krummacker/phonebook/internal/config"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/storage"
)

// Usage example on the command line:
// > go run main.go -config=../../phonebook.yml -lang=de
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, afero.NewOsFs(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run loads the phonebook, executes the lines read from in until the user leaves, the input
// ends or ctx is cancelled, and saves the phonebook if it was changed.
func run(ctx context.Context, in io.Reader, out io.Writer, logW io.Writer, fsys afero.Fs, args []string) error {
	flags := flag.NewFlagSet("phonebook", flag.ContinueOnError)
	flags.SetOutput(out)
	configFile := flags.String("config", config.DefaultFile, "the configuration file")
	lang := flags.String("lang", "", "the language of the messages, overriding the configuration")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fsys, *configFile)
	if err != nil {
		return err
	}
	if *lang != "" {
		cfg.App.Language = *lang
	}
	logger := logging.New(cfg.Logger.Level, cfg.Logger.Format, logW).With(logging.KeyComponent, logging.CompMain)

	store, err := storage.Open(ctx, cfg.Storage, fsys, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	book, err := store.Load(ctx)
	if err != nil {
		return err
	}

	bundle, err := command.NewBundle()
	if err != nil {
		return err
	}
	msgs := command.NewMessages(bundle, cfg.App.Language)
	dispatcher := command.NewDispatcher(book, msgs, fsys, clock.Real{}, logger)
	dispatcher.SetPageSize(cfg.App.PageSize)
	logger.DebugContext(ctx, "phonebook ready",
		logging.KeyCount, book.Len(),
		logging.KeyLanguage, cfg.App.Language)

	fmt.Fprintln(out, msgs.Get(command.MsgHelp))
	readCtx, stopReading := context.WithCancel(ctx)
	repl(ctx, dispatcher, msgs, readLines(readCtx, in), out)
	stopReading()
	fmt.Fprintln(out, msgs.Get(command.MsgFarewell))

	if !dispatcher.Modified() {
		return nil
	}
	// Save even when interrupted.
	if err := store.Save(context.WithoutCancel(ctx), book); err != nil {
		return fmt.Errorf("save phonebook: %w", err)
	}
	dispatcher.MarkSaved()
	return nil
}

// repl prompts for commands and prints the replies. Pages are shown one at a time; any input
// line moves on to the next one.
func repl(ctx context.Context, d *command.Dispatcher, msgs *command.Messages, lines <-chan string, out io.Writer) {
	for {
		fmt.Fprint(out, msgs.Get(command.MsgPrompt))
		line, ok := nextLine(ctx, lines)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		reply := d.Execute(ctx, line)
		if reply.Text != "" {
			fmt.Fprintln(out, reply.Text)
		}
		for i, page := range reply.Pages {
			fmt.Fprintln(out, page)
			if i == len(reply.Pages)-1 {
				break
			}
			fmt.Fprint(out, msgs.Get(command.MsgPagePrompt))
			if _, ok := nextLine(ctx, lines); !ok {
				fmt.Fprintln(out)
				return
			}
		}
		if reply.Exit {
			return
		}
	}
}

// readLines sends the lines of r to the returned channel and closes it at the end of the input
// or once ctx is done. A read that is already blocked finishes first.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// nextLine waits for the next line. It reports false at the end of the input or when ctx is done.
func nextLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}
