package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contact-details/internal/listview"
)

var listPages int

func init() {
	listCmd.Flags().IntVar(&listPages, "pages", 1, "number of pages to load; every page after the first is fetched like a scroll to the end of the list")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:     "get <id>",
	Aliases: []string{"search"},
	Short:   "Show the contact with the given id",
	Args:    cobra.ExactArgs(1),
	RunE:    runGet,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete the contact with the given id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runList(cmd *cobra.Command, _ []string) error {
	view := listview.New(newClient(), newLogger())
	ctx := cmd.Context()
	view.Fetch(ctx, true)
	for page := 1; page < listPages && view.Error() == "" && view.HasMore(); page++ {
		view.Fetch(ctx, false)
	}
	if msg := view.Error(); msg != "" {
		return errors.New(msg)
	}
	return printContacts(cmd.OutOrStdout(), view.Visible())
}

func runGet(cmd *cobra.Command, args []string) error {
	view := listview.New(newClient(), newLogger())
	view.Search(cmd.Context(), args[0])
	if msg := view.SearchError(); msg != "" {
		return errors.New(msg)
	}
	return printContacts(cmd.OutOrStdout(), view.Visible())
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseId(args[0])
	if err != nil {
		return err
	}
	view := listview.New(newClient(), newLogger())
	view.Delete(cmd.Context(), id)
	if msg := view.Error(); msg != "" {
		return errors.New(msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted contact %d\n", id)
	return nil
}
