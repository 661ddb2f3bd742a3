package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gitlab.com/dirk.krummacker/contact-details/pkg/client"
)

const interval = 5 * time.Second

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080 -timeout=2m
func main() {
	urlPtr := flag.String("url", "http://localhost:8080", "the base URL of the contact service")
	timeoutPtr := flag.Duration("timeout", 0, "give up after this duration (0 waits forever)")
	flag.Parse()

	ctx := context.Background()
	if *timeoutPtr > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeoutPtr)
		defer cancel()
	}

	c := client.New(*urlPtr)
	totalWaitTime := time.Duration(0)
	for {
		err := c.Health(ctx)
		if err == nil {
			fmt.Println("contact service is available at", *urlPtr)
			return
		}
		fmt.Println(err)
		select {
		case <-ctx.Done():
			fmt.Println("giving up after", totalWaitTime)
			os.Exit(1)
		case <-time.After(interval):
		}
		totalWaitTime += interval
		fmt.Printf("Waiting %s", totalWaitTime)
		fmt.Println()
	}
}
