package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contact-details/internal/logging"
	"gitlab.com/dirk.krummacker/contact-details/pkg/client"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

var (
	serviceURL string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "contacts",
		Short: "Manage the contacts of a running contact service",
		Long: `contacts lists, searches, creates, edits and deletes contacts through the REST API of the
contact service. The bench command measures the latency of the API.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serviceURL, "url", envOr("CONTACTS_URL", "http://localhost:8080"), "base URL of the contact service")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
}

// Usage examples on the command line:
// > go run . list --pages=3
// > go run . create --id=29 --first=Erika --last=Mustermann --email=erika@example.com --phone=0123456789
// > go run . edit 29 --phone=0987654321 --picture=erika.png
// > go run . bench --sizes=100,500
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(serviceURL)
}

func newLogger() log.Logger {
	return logging.New(os.Stderr, "logfmt", logLevel)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseId(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.New("ID must be a number")
	}
	return id, nil
}

// printContacts writes the contacts as a table.
func printContacts(w io.Writer, contacts []model.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIRST NAME\tLAST NAME\tEMAIL\tPHONE\tPICTURE")
	for _, c := range contacts {
		id := "-"
		if c.Id != nil {
			id = strconv.FormatInt(*c.Id, 10)
		}
		picture := ""
		if c.PictureUrl != "" {
			picture = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", id, c.FirstName, c.LastName, c.Email, c.Phone, picture)
	}
	return tw.Flush()
}
