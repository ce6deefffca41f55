package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/athenareader/athena/internal/config"
	"github.com/athenareader/athena/internal/fulltext"
	"github.com/athenareader/athena/internal/isbn"
	"github.com/athenareader/athena/internal/metadata"
)

// FetchCommand downloads the full text of a public-domain book
type FetchCommand struct {
	ISBN    string
	Output  string
	Timeout time.Duration
}

// NewFetchCommand creates a new FetchCommand
func NewFetchCommand() *FetchCommand {
	return &FetchCommand{}
}

// ParseFlags parses command line flags
func (cmd *FetchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	fs.StringVar(&cmd.Output, "output", "", "Write the text to this file instead of stdout")
	fs.DurationVar(&cmd.Timeout, "timeout", 2*time.Minute, "Overall fetch timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s fetch [options] <isbn>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch the plain-text edition of a public-domain book.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Normalizes the ISBN and checks known Gutenberg editions\n")
		fmt.Fprintf(os.Stderr, "  2. Falls back to an Archive.org scan when one is linked\n")
		fmt.Fprintf(os.Stderr, "  3. Falls back to a title/author catalog search\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s fetch 9780141439518\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s fetch -output moby-dick.txt 9780142437247\n", os.Args[0])
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

// Run executes the fetch command
func (cmd *FetchCommand) Run() error {
	canonical, err := isbn.Normalize(cmd.ISBN)
	if err != nil {
		return fmt.Errorf("invalid ISBN %q: %w", cmd.ISBN, err)
	}

	cfg := config.NewConfig()
	metadataClient := metadata.NewClient(metadata.Options{
		BaseURL:      cfg.Resolver.MetadataBaseURL,
		Timeout:      cfg.Resolver.MetadataTimeout,
		RetryBackoff: cfg.Resolver.RetryBackoff,
	})
	client := fulltext.NewClient(metadataClient, fulltext.Options{
		GutenbergBaseURL: cfg.Resolver.GutenbergBaseURL,
		GutendexBaseURL:  cfg.Resolver.GutendexBaseURL,
		ArchiveBaseURL:   cfg.Resolver.ArchiveBaseURL,
		Timeout:          cfg.Resolver.ContentTimeout,
	})
	resolver := fulltext.NewResolver(client, metadataClient)

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "🔍 Resolving full text for %s...\n", canonical)

	content, err := resolver.Resolve(ctx, canonical)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", canonical, err)
	}

	fmt.Fprintf(os.Stderr, "✅ Resolved via %s (%d bytes)\n", content.Source, len(content.Text))

	if cmd.Output == "" {
		fmt.Println(content.Text)
		return nil
	}

	if err := os.WriteFile(cmd.Output, []byte(content.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
	}

	fmt.Fprintf(os.Stderr, "💾 Saved to %s\n", cmd.Output)
	return nil
}
