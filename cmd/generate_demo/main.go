// Command generate_demo creates a demo database with a sample reader and
// reading state for a few public domain books.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"

	"github.com/athenareader/athena/internal/auth"
	"github.com/athenareader/athena/internal/database"
)

const (
	defaultDemoDatabasePath = "./demo.db"

	demoUsername = "demo"
	demoEmail    = "demo@example.com"
	demoPassword = "demo-password-athena"
)

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(demoPassword, 0)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	user, err := db.CreateUser(demoUsername, demoEmail, hash)
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Created user %q (password %q)", demoUsername, demoPassword)

	for _, book := range demoBooks() {
		if _, err := db.SetProgress(user.ID, book.ISBN, book.Position); err != nil {
			log.Printf("Failed to set progress for %s: %v", book.Title, err)
			continue
		}

		for _, bm := range book.Bookmarks {
			if _, err := db.AddBookmark(user.ID, book.ISBN, bm.Position, bm.Note); err != nil {
				log.Printf("Failed to add bookmark for %s: %v", book.Title, err)
			}
		}

		for _, h := range book.Highlights {
			if _, err := db.AddHighlight(user.ID, book.ISBN, h.Start, h.End, h.Color, h.Text); err != nil {
				log.Printf("Failed to add highlight for %s: %v", book.Title, err)
			}
		}

		log.Printf("Seeded: %s (%d bookmarks, %d highlights)",
			book.Title, len(book.Bookmarks), len(book.Highlights))
	}

	log.Println("Demo database generated successfully!")
}

type demoBookmark struct {
	Position float64
	Note     string
}

type demoHighlight struct {
	Start float64
	End   float64
	Color string
	Text  string
}

type demoBook struct {
	ISBN       string
	Title      string
	Position   float64
	Bookmarks  []demoBookmark
	Highlights []demoHighlight
}

func demoBooks() []demoBook {
	return []demoBook{
		{
			ISBN:     "9780141439518",
			Title:    "Pride and Prejudice",
			Position: 42.5,
			Bookmarks: []demoBookmark{
				{Position: 12.25, Note: "Mr. Collins arrives at Longbourn"},
				{Position: 38.5, Note: "The first proposal"},
			},
			Highlights: []demoHighlight{
				{
					Start: 0, End: 0.4,
					Text: "It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife.",
				},
				{
					Start: 31.1, End: 31.3, Color: "green",
					Text: "I could easily forgive his pride, if he had not mortified mine.",
				},
			},
		},
		{
			ISBN:     "9780142437247",
			Title:    "Moby-Dick",
			Position: 18,
			Bookmarks: []demoBookmark{
				{Position: 0.5, Note: "Loomings"},
			},
			Highlights: []demoHighlight{
				{
					Start: 0, End: 0.2,
					Text: "Call me Ishmael.",
				},
			},
		},
		{
			ISBN:     "9780486415871",
			Title:    "Crime and Punishment",
			Position: 100,
			Highlights: []demoHighlight{
				{
					Start: 4.2, End: 4.5, Color: "blue",
					Text: "Pain and suffering are always inevitable for a large intelligence and a deep heart.",
				},
			},
		},
	}
}
