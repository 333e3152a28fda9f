// Badger inspection CLI: dumps the persisted users, projects and tasks of a
// taskroom database as tables.
//
// Usage:
//
//	go run ./tools -db /tmp/taskroom -prefix project:
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type projectRow struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type taskRow struct {
	ID          int        `json:"id"`
	ProjectID   int        `json:"project_id"`
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"due_date"`
	IsCompleted bool       `json:"is_completed"`
}

type userRow struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func main() {
	dbPath := flag.String("db", "", "Path to badger DB")
	prefix := flag.String("prefix", "project:", "Prefix to scan (project:, task: or user:email:)")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("-db is required")
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	switch *prefix {
	case "project:":
		table.SetHeader([]string{"Key", "ID", "Name", "Owner", "Created"})
	case "task:":
		table.SetHeader([]string{"Key", "ID", "Project", "Title", "Due", "State"})
	case "user:email:":
		table.SetHeader([]string{"Key", "ID", "Email", "Display Name"})
	default:
		table.SetHeader([]string{"Key", "Value"})
	}

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(rowFor(*prefix, key, v))
				rows++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
	fmt.Println(color.Cyan.Sprintf("%d entries under prefix %q", rows, *prefix))
}

func rowFor(prefix, key string, value []byte) []string {
	switch prefix {
	case "project:":
		var p projectRow
		if err := json.Unmarshal(value, &p); err != nil {
			return []string{key, "?", err.Error(), "", ""}
		}
		return []string{key, fmt.Sprint(p.ID), p.Name, p.OwnerID, p.CreatedAt.Format(time.RFC3339)}
	case "task:":
		var t taskRow
		if err := json.Unmarshal(value, &t); err != nil {
			return []string{key, "?", "", err.Error(), "", ""}
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format(time.RFC3339)
		}
		state := color.Yellow.Sprint("pending")
		if t.IsCompleted {
			state = color.Green.Sprint("completed")
		}
		return []string{key, fmt.Sprint(t.ID), fmt.Sprint(t.ProjectID), t.Title, due, state}
	case "user:email:":
		var u userRow
		if err := json.Unmarshal(value, &u); err != nil {
			return []string{key, "?", err.Error(), ""}
		}
		return []string{key, u.ID, u.Email, u.DisplayName}
	default:
		return []string{key, string(value)}
	}
}
