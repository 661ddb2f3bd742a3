package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contact-details/internal/config"
	"gitlab.com/dirk.krummacker/contact-details/internal/contact"
	"gitlab.com/dirk.krummacker/contact-details/internal/service"
	"gitlab.com/dirk.krummacker/contact-details/internal/store/memstore"
	"gitlab.com/dirk.krummacker/contact-details/pkg/client"
)

// startService runs the contact service on an in-memory store.
func startService(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	contacts, err := contact.NewService(memstore.New(), log.NewNopLogger())
	require.NoError(t, err)
	srv := httptest.NewServer(service.SetupHttpRouter(config.HTTPConfig{}, contacts, log.NewNopLogger(), nil))
	t.Cleanup(srv.Close)
	return srv
}

// run executes the command line against the service and returns its output.
func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--url="+srv.URL, "--log-level=error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	srv := startService(t)

	_, err := run(t, srv, "list")
	assert.EqualError(t, err, "Error fetching contacts. Please try again.", "an empty store is NOT FOUND")

	_, err = run(t, srv, "create", "--id=29", "--first=Erika", "--last=Mustermann", "--email=bad-email", "--phone=0123456789")
	assert.EqualError(t, err, "Email: Please enter a valid email address")

	out, err := run(t, srv, "create", "--id=29", "--first=Erika", "--last=Mustermann", "--email=erika@example.com", "--phone=0123456789")
	require.NoError(t, err)
	assert.Contains(t, out, "Mustermann")

	out, err = run(t, srv, "list", "--pages=3")
	require.NoError(t, err)
	assert.Contains(t, out, "FIRST NAME")
	assert.Contains(t, out, "erika@example.com")

	out, err = run(t, srv, "edit", "29", "--first=Rudi")
	require.NoError(t, err)
	assert.Contains(t, out, "Rudi")
	assert.Contains(t, out, "Mustermann", "fields without flag keep their value")

	out, err = run(t, srv, "get", "29")
	require.NoError(t, err)
	assert.Contains(t, out, "Rudi")

	_, err = run(t, srv, "search", "abc")
	assert.EqualError(t, err, "ID must be a number")

	out, err = run(t, srv, "delete", "29")
	require.NoError(t, err)
	assert.Equal(t, "deleted contact 29\n", out)

	_, err = run(t, srv, "delete", "29")
	assert.EqualError(t, err, "Error deleting contact. Please try again.")

	_, err = run(t, srv, "get", "29")
	assert.EqualError(t, err, "Error fetching contact. Please check the ID and try again.")
}

// TestBench runs a small benchmark and expects the service to be empty afterwards.
func TestBench(t *testing.T) {
	srv := startService(t)
	var out bytes.Buffer

	err := runBench(context.Background(), client.New(srv.URL), &out, []int{3, 5}, 100)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Elements")
	assert.Contains(t, out.String(), "         5")

	_, err = client.New(srv.URL).ListContacts(context.Background(), 1)
	assert.True(t, client.IsNotFound(err))
}

func TestCreateRandomSliceWithIds(t *testing.T) {
	ids := createRandomSliceWithIds(10, 4)
	assert.ElementsMatch(t, []int64{10, 11, 12, 13}, ids)
}
