// Package cli implements command-line subcommands for one-off operations
// that do not need the HTTP server running.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/athenareader/athena/internal/config"
	"github.com/athenareader/athena/internal/isbn"
	"github.com/athenareader/athena/internal/metadata"
)

// ResolveCommand looks up bibliographic metadata for an ISBN
type ResolveCommand struct {
	ISBN    string
	JSON    bool
	Timeout time.Duration
}

// NewResolveCommand creates a new ResolveCommand
func NewResolveCommand() *ResolveCommand {
	return &ResolveCommand{}
}

// ParseFlags parses command line flags
func (cmd *ResolveCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)

	fs.BoolVar(&cmd.JSON, "json", false, "Print the raw metadata record as JSON")
	fs.DurationVar(&cmd.Timeout, "timeout", 15*time.Second, "Overall lookup timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s resolve [options] <isbn>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Resolve an ISBN to its bibliographic metadata.\n\n")
		fmt.Fprintf(os.Stderr, "Accepts ISBN-10 or ISBN-13, with or without hyphens.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s resolve 9780141439518\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s resolve -json 0-14-143951-3\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing ISBN argument")
	}
	cmd.ISBN = fs.Arg(0)

	return nil
}

// Run executes the resolve command
func (cmd *ResolveCommand) Run() error {
	canonical, err := isbn.Normalize(cmd.ISBN)
	if err != nil {
		return fmt.Errorf("invalid ISBN %q: %w", cmd.ISBN, err)
	}

	cfg := config.NewConfig()
	client := metadata.NewClient(metadata.Options{
		BaseURL:      cfg.Resolver.MetadataBaseURL,
		Timeout:      cfg.Resolver.MetadataTimeout,
		RetryBackoff: cfg.Resolver.RetryBackoff,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	book, err := client.Resolve(ctx, canonical)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", canonical, err)
	}

	if cmd.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(book)
	}

	fmt.Printf("📖 %s\n", book.Title)
	fmt.Printf("   ISBN:      %s\n", book.ISBN)
	if len(book.Authors) > 0 {
		fmt.Printf("   Authors:   %s\n", strings.Join(book.Authors, ", "))
	}
	if book.Publisher != "" {
		fmt.Printf("   Publisher: %s\n", book.Publisher)
	}
	if book.PublishDate != "" {
		fmt.Printf("   Published: %s\n", book.PublishDate)
	}
	if book.CoverURL != "" {
		fmt.Printf("   Cover:     %s\n", book.CoverURL)
	}
	for _, subject := range book.Subjects {
		fmt.Printf("   Subject:   %s\n", subject)
	}

	return nil
}
