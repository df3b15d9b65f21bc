package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

// Table column widths for list command output
const (
	tableColName  = 22
	tableColEmail = 30
	tableColTitle = 22
	tableColArea  = 16
)

// mustOpenDB opens the roster store or exits with a message.
func mustOpenDB() *rosterdb.DB {
	path, err := directory.GetDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	db, err := rosterdb.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open roster store: %v\n", err)
		os.Exit(1)
	}
	return db
}

// truncateCol trims a value to a table column, ellipsizing when cut.
func truncateCol(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// tableRow formats one fixed-width contact row.
func tableRow(name, email, title, area string) string {
	return fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		tableColName, truncateCol(name, tableColName),
		tableColEmail, truncateCol(email, tableColEmail),
		tableColTitle, truncateCol(title, tableColTitle),
		tableColArea, truncateCol(area, tableColArea))
}

// parseFlagValue extracts "--flag value", "--flag=value", "-f value" and
// "-f=value" forms. Returns the value, remaining args and whether found.
func parseFlagValue(args []string, short, long string) (string, []string, bool) {
	var remaining []string
	var value string
	found := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == short || arg == long:
			if i+1 < len(args) {
				value = args[i+1]
				found = true
				i++
			}
		case strings.HasPrefix(arg, long+"="):
			value = strings.TrimPrefix(arg, long+"=")
			found = true
		case strings.HasPrefix(arg, short+"="):
			value = strings.TrimPrefix(arg, short+"=")
			found = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return value, remaining, found
}

// hasFlag reports whether a boolean flag is present and returns args
// without it.
func hasFlag(args []string, names ...string) (bool, []string) {
	var remaining []string
	found := false
	for _, arg := range args {
		matched := false
		for _, name := range names {
			if arg == name {
				matched = true
				break
			}
		}
		if matched {
			found = true
		} else {
			remaining = append(remaining, arg)
		}
	}
	return found, remaining
}
