package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/deskroster/deskroster/internal/bridge"
	"github.com/deskroster/deskroster/internal/directory"
)

// handleList prints all contacts sorted by name.
func handleList(args []string) {
	asJSON, _ := hasFlag(args, "--json", "-j")

	db := mustOpenDB()
	defer db.Close()

	contacts, err := db.LoadContacts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(contacts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts. Add one with: deskroster add <email> -n \"Name\"")
		return
	}
	fmt.Println(tableRow("NAME", "EMAIL", "TITLE", "AREA"))
	for _, c := range contacts {
		fmt.Println(tableRow(c.Name, c.Email, c.Title, c.BusinessArea))
	}
	fmt.Printf("\n%d contacts\n", len(contacts))
}

// handleSearch runs the substring search across all three collections.
func handleSearch(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: deskroster search <text>")
		os.Exit(1)
	}
	query := args[0]

	db := mustOpenDB()
	defer db.Close()

	snap, err := db.Snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	contacts := directory.Search(snap.Contacts, query)
	servers := directory.Search(snap.Servers, query)
	groups := directory.Search(snap.Groups, query)

	if len(contacts) == 0 && len(servers) == 0 && len(groups) == 0 {
		fmt.Printf("No matches for %q\n", query)
		return
	}

	if len(contacts) > 0 {
		fmt.Println("Contacts:")
		for _, c := range contacts {
			fmt.Printf("  %s <%s>  %s\n", c.Name, c.Email, c.Title)
		}
	}
	if len(servers) > 0 {
		fmt.Println("Servers:")
		for _, s := range servers {
			fmt.Printf("  %s  %s  %s\n", s.Name, s.Environment, s.Owner)
		}
	}
	if len(groups) > 0 {
		fmt.Println("Teams:")
		for _, g := range groups {
			fmt.Printf("  %s  %s\n", g.Name, g.MemberLabel())
		}
	}
}

// handleAdd inserts a manual contact through the same optimistic path the
// TUI uses, so duplicate rejection behaves identically.
func handleAdd(args []string) {
	name, args, _ := parseFlagValue(args, "-n", "--name")
	title, args, _ := parseFlagValue(args, "-t", "--title")
	phone, args, _ := parseFlagValue(args, "-p", "--phone")

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: deskroster add <email> [-n name] [-t title] [-p phone]")
		os.Exit(1)
	}
	email := args[0]

	db := mustOpenDB()
	defer db.Close()

	store := directory.NewStore(bridge.New(db).Contacts(), directory.Contact.Key, directory.MergeContact)
	contact := directory.IngestContact(directory.Contact{
		Email:  email,
		Name:   name,
		Title:  title,
		Phone:  phone,
		Manual: true,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Create(ctx, contact); err != nil {
		var rejected *directory.RejectedError
		if errors.As(err, &rejected) {
			fmt.Fprintf(os.Stderr, "Rejected: %s\n", rejected.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Added %s\n", contact.Key())
}

// handleRemove deletes a contact by email.
func handleRemove(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: deskroster rm <email>")
		os.Exit(1)
	}
	email := args[0]

	db := mustOpenDB()
	defer db.Close()

	store := directory.NewStore(bridge.New(db).Contacts(), directory.Contact.Key, directory.MergeContact)
	store.SelectForDelete(directory.Contact{Email: email})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.DeleteSelected(ctx); err != nil {
		var rejected *directory.RejectedError
		if errors.As(err, &rejected) {
			fmt.Fprintf(os.Stderr, "Rejected: %s\n", rejected.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Removed %s\n", directory.Contact{Email: email}.Key())
}

// handleImport ingests contact JSON files from a directory or single file.
func handleImport(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: deskroster import <dir|file>")
		os.Exit(1)
	}
	path := directory.ExpandTilde(args[0])

	db := mustOpenDB()
	defer db.Close()

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var count int
	if info.IsDir() {
		count, err = bridge.ImportDir(ctx, db, path)
	} else {
		count, err = bridge.ImportContactFile(db, path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d contacts\n", count)
}
