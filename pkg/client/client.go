// Package client talks to the contact REST API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

// APIError is returned for every response with a status code outside of 2xx.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d, message: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an *APIError with status NOT FOUND.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client is a client of the contact REST API. Requests carry cookies and JSON headers; there are
// no retries and no timeouts beyond the context of each call.
type Client struct {
	http *resty.Client
}

// New creates a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return NewWithClient(baseURL, &http.Client{Jar: jar})
}

// NewWithClient creates a client that sends its requests through hc.
func NewWithClient(baseURL string, hc *http.Client) *Client {
	r := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: r}
}

// ListContacts fetches a page of contacts.
func (c *Client) ListContacts(ctx context.Context, page int) ([]model.Contact, error) {
	var contacts []model.Contact
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetResult(&contacts).
		Get("/contact")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetContact fetches the contact with the given id.
func (c *Client) GetContact(ctx context.Context, id int64) (model.Contact, error) {
	var found model.Contact
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&found).
		Get(contactPath(id))
	if err := check(resp, err); err != nil {
		return model.Contact{}, err
	}
	return found, nil
}

// CreateContact posts a new contact and returns it as stored by the server.
func (c *Client) CreateContact(ctx context.Context, candidate model.Contact) (model.Contact, error) {
	var created model.Contact
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(candidate).
		SetResult(&created).
		Post("/contact")
	if err := check(resp, err); err != nil {
		return model.Contact{}, err
	}
	return created, nil
}

// UpdateContact sends the patch for the contact with the given id and returns the merged contact.
func (c *Client) UpdateContact(ctx context.Context, id int64, patch model.Patch) (model.Contact, error) {
	var updated model.Contact
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(patch).
		SetResult(&updated).
		Put(contactPath(id))
	if err := check(resp, err); err != nil {
		return model.Contact{}, err
	}
	return updated, nil
}

// DeleteContact deletes the contact with the given id.
func (c *Client) DeleteContact(ctx context.Context, id int64) (model.DeleteResult, error) {
	var result model.DeleteResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Delete(contactPath(id))
	if err := check(resp, err); err != nil {
		return model.DeleteResult{}, err
	}
	return result, nil
}

// Health asks the service whether it can reach its store.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/healthz")
	return check(resp, err)
}

// check turns transport failures and error responses into errors.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: string(resp.Body())}
	}
	return nil
}

func contactPath(id int64) string {
	return "/contact/" + strconv.FormatInt(id, 10)
}
