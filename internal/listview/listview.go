// Package listview keeps the client-side state of the contact list: the contacts fetched so far,
// the paging cursor, loading flags, the search overlay and the error message shown to the user.
//
// Network calls are made without holding the state lock. A slow answer is applied when it
// arrives, even if the state changed in between.
package listview

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

const (
	msgFetchFailed  = "Error fetching contacts. Please try again."
	msgDeleteFailed = "Error deleting contact. Please try again."
	msgSearchId     = "ID must be a number"
	msgSearchFailed = "Error fetching contact. Please check the ID and try again."
)

// Fetcher is the part of the contact API the list view needs. *client.Client implements it.
type Fetcher interface {
	ListContacts(ctx context.Context, page int) ([]model.Contact, error)
	GetContact(ctx context.Context, id int64) (model.Contact, error)
	DeleteContact(ctx context.Context, id int64) (model.DeleteResult, error)
}

// ScrollPosition describes the scrollable area of the list when a scroll event happens.
type ScrollPosition struct {
	Top          int
	ClientHeight int
	ScrollHeight int
}

// AtBottom reports whether the visible part of the list reaches its end.
func (p ScrollPosition) AtBottom() bool {
	return p.Top+p.ClientHeight >= p.ScrollHeight
}

// View is the state of one contact list. It is safe for concurrent use.
type View struct {
	api    Fetcher
	logger log.Logger

	mu             sync.Mutex
	contacts       []model.Contact
	page           int
	hasMore        bool
	loading        bool
	initialLoading bool
	errMessage     string

	searchResult *model.Contact
	searching    bool
	searchError  string
}

// New creates an empty list view. Nothing is fetched until Fetch is called.
func New(api Fetcher, logger log.Logger) *View {
	return &View{
		api:            api,
		logger:         logger,
		page:           1,
		hasMore:        true,
		initialLoading: true,
	}
}

// Fetch loads a page of contacts. The initial fetch always asks for page 1 and replaces the list;
// later fetches ask for the current cursor, append the answer and advance the cursor. The merged
// list is deduplicated by id. Fetch returns false without sending a request if a request is
// already running, or if it is not the initial fetch and the server has no more contacts.
func (v *View) Fetch(ctx context.Context, initial bool) bool {
	v.mu.Lock()
	if v.loading || (!initial && !v.hasMore) {
		v.mu.Unlock()
		return false
	}
	v.loading = true
	v.errMessage = ""
	page := v.page
	if initial {
		page = 1
	}
	v.mu.Unlock()

	contacts, err := v.api.ListContacts(ctx, page)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if initial {
		v.initialLoading = false
	}
	if err != nil {
		level.Error(v.logger).Log("msg", "fetch contacts error", "page", page, "err", err)
		v.errMessage = msgFetchFailed
		return true
	}
	if initial {
		v.contacts = MergePage(nil, contacts)
	} else {
		v.contacts = MergePage(v.contacts, contacts)
		v.page = page + 1
	}
	v.hasMore = len(contacts) > 0
	return true
}

// OnScroll fetches the next page when the list is scrolled to its end.
func (v *View) OnScroll(ctx context.Context, pos ScrollPosition) bool {
	if !pos.AtBottom() {
		return false
	}
	v.mu.Lock()
	ready := !v.loading && v.hasMore
	v.mu.Unlock()
	if !ready {
		return false
	}
	return v.Fetch(ctx, false)
}

// Created appends a contact returned by the server after a create.
func (v *View) Created(c model.Contact) {
	v.apply(Delta{Kind: Created, Contact: c})
}

// Updated replaces the contacts that have the id of the contact returned after an update.
func (v *View) Updated(c model.Contact) {
	v.apply(Delta{Kind: Updated, Contact: c})
}

// Delete asks the server to delete the contact with the given id. Only if that succeeds, the
// contact is removed from the list.
func (v *View) Delete(ctx context.Context, id int64) {
	v.mu.Lock()
	v.loading = true
	v.errMessage = ""
	v.mu.Unlock()

	_, err := v.api.DeleteContact(ctx, id)

	v.mu.Lock()
	v.loading = false
	if err != nil {
		level.Error(v.logger).Log("msg", "delete contact error", "id", id, "err", err)
		v.errMessage = msgDeleteFailed
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()
	v.apply(Delta{Kind: Deleted, Contact: model.Contact{Id: model.Int64(id)}})
}

// Search looks up a single contact by the id typed by the user. A result is shown instead of the
// list until ClearSearch is called; a failed lookup clears the result.
func (v *View) Search(ctx context.Context, input string) {
	v.mu.Lock()
	v.searchError = ""
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		v.searchError = msgSearchId
		v.mu.Unlock()
		return
	}
	v.searching = true
	v.mu.Unlock()

	found, err := v.api.GetContact(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.searching = false
	if err != nil {
		level.Error(v.logger).Log("msg", "search by id error", "id", id, "err", err)
		v.searchError = msgSearchFailed
		v.searchResult = nil
		return
	}
	v.searchResult = &found
}

// ClearSearch removes the search result so that the full list is shown again.
func (v *View) ClearSearch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searchResult = nil
	v.searchError = ""
}

// Visible returns the contacts to render: the search result alone if there is one, otherwise
// the whole list.
func (v *View) Visible() []model.Contact {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.searchResult != nil {
		return []model.Contact{*v.searchResult}
	}
	return append([]model.Contact(nil), v.contacts...)
}

// Contacts returns the list as fetched and reconciled, ignoring any search result.
func (v *View) Contacts() []model.Contact {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Contact(nil), v.contacts...)
}

// Page returns the cursor the next incremental fetch will ask for.
func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// HasMore reports whether the last fetched page was non-empty.
func (v *View) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore
}

// Loading reports whether a fetch or delete request is running.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// InitialLoading reports whether the initial fetch has not completed yet.
func (v *View) InitialLoading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.initialLoading
}

// Searching reports whether a search request is running.
func (v *View) Searching() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.searching
}

// Error returns the message of the last failed fetch or delete, or "".
func (v *View) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMessage
}

// SearchError returns the message of the last failed search, or "".
func (v *View) SearchError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.searchError
}

func (v *View) apply(d Delta) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.contacts = Reconcile(v.contacts, d)
}
