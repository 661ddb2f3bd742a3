package listview

import "gitlab.com/dirk.krummacker/contact-details/pkg/model"

// DeltaKind tells how a local change affects the list.
type DeltaKind int

const (
	// Created appends the contact.
	Created DeltaKind = iota
	// Updated replaces every contact with the same id.
	Updated
	// Deleted removes every contact with the same id.
	Deleted
)

func (k DeltaKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Delta is a change confirmed by the server that is applied to the list without fetching it
// again. For Deleted, only the id of Contact is used.
type Delta struct {
	Kind    DeltaKind
	Contact model.Contact
}

// Reconcile returns a new list with d applied to list. Contacts without an id all share the same
// empty id. A created contact is appended without deduplication.
func Reconcile(list []model.Contact, d Delta) []model.Contact {
	result := make([]model.Contact, 0, len(list)+1)
	switch d.Kind {
	case Created:
		result = append(result, list...)
		result = append(result, d.Contact)
	case Updated:
		for _, c := range list {
			if model.SameId(c.Id, d.Contact.Id) {
				c = d.Contact
			}
			result = append(result, c)
		}
	case Deleted:
		for _, c := range list {
			if !model.SameId(c.Id, d.Contact.Id) {
				result = append(result, c)
			}
		}
	default:
		result = append(result, list...)
	}
	return result
}

// MergePage appends page to list and removes duplicates by id. The first contact seen for an id
// is kept, in the order of first appearance. Neither argument is modified.
func MergePage(list, page []model.Contact) []model.Contact {
	merged := make([]model.Contact, 0, len(list)+len(page))
	seen := make(map[int64]bool, len(list)+len(page))
	seenNoId := false
	for _, batch := range [][]model.Contact{list, page} {
		for _, c := range batch {
			if c.Id == nil {
				if seenNoId {
					continue
				}
				seenNoId = true
			} else {
				if seen[*c.Id] {
					continue
				}
				seen[*c.Id] = true
			}
			merged = append(merged, c)
		}
	}
	return merged
}
