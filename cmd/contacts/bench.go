package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

var (
	benchSizes   []int
	benchFirstId int64
)

func init() {
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{1000, 5000, 10000}, "numbers of contacts per round")
	benchCmd.Flags().Int64Var(&benchFirstId, "first-id", 1_000_000, "smallest id used for the benchmark contacts")
	rootCmd.AddCommand(benchCmd)
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure the latency of the API",
	Long: `bench creates, updates, reads and deletes a growing number of contacts and prints the
average duration of each request type in microseconds. It uses ids starting at --first-id, which
should not be in use.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBench(cmd.Context(), newClient(), cmd.OutOrStdout(), benchSizes, benchFirstId)
	},
}

// benchAPI is the part of the contact API the benchmark uses.
type benchAPI interface {
	CreateContact(ctx context.Context, candidate model.Contact) (model.Contact, error)
	UpdateContact(ctx context.Context, id int64, patch model.Patch) (model.Contact, error)
	GetContact(ctx context.Context, id int64) (model.Contact, error)
	DeleteContact(ctx context.Context, id int64) (model.DeleteResult, error)
}

func runBench(ctx context.Context, api benchAPI, out io.Writer, sizes []int, firstId int64) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Elements      POST       PUT       GET    DELETE ")
	fmt.Fprintln(out, "---------------------------------------------------")
	for _, loops := range sizes {
		fmt.Fprintf(out, "%10d", loops)
		{
			// POST requests
			var duration time.Duration
			for i := 0; i < loops; i++ {
				d, err := timed(func() error {
					_, err := api.CreateContact(ctx, benchContact(firstId+int64(i)))
					return err
				})
				if err != nil {
					return err
				}
				duration += d
			}
			fmt.Fprintf(out, "%10d", average(duration, loops))
		}
		steps := []func(id int64) error{
			// PUT requests
			func(id int64) error {
				_, err := api.UpdateContact(ctx, id, model.Patch{Phone: model.String("0987654321")})
				return err
			},
			// GET requests
			func(id int64) error {
				_, err := api.GetContact(ctx, id)
				return err
			},
			// DELETE requests
			func(id int64) error {
				_, err := api.DeleteContact(ctx, id)
				return err
			},
		}
		for _, f := range steps {
			if err := callInLoop(out, firstId, loops, f); err != nil {
				return err
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

func callInLoop(out io.Writer, firstId int64, loops int, f func(id int64) error) error {
	var duration time.Duration
	for _, id := range createRandomSliceWithIds(firstId, loops) {
		d, err := timed(func() error { return f(id) })
		if err != nil {
			return err
		}
		duration += d
	}
	fmt.Fprintf(out, "%10d", average(duration, loops))
	return nil
}

func createRandomSliceWithIds(firstId int64, loops int) []int64 {
	ids := make([]int64, 0, loops)
	for i := 0; i < loops; i++ {
		ids = append(ids, firstId+int64(i))
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

func benchContact(id int64) model.Contact {
	return model.Contact{
		Id:        model.Int64(id),
		FirstName: "Marcus",
		LastName:  "Antonius",
		Email:     "marcus@example.com",
		Phone:     "0123456789",
	}
}

func timed(f func() error) (time.Duration, error) {
	before := time.Now()
	err := f()
	return time.Since(before), err
}

// average returns the mean duration in microseconds.
func average(total time.Duration, loops int) int64 {
	if loops == 0 {
		return 0
	}
	return total.Microseconds() / int64(loops)
}
