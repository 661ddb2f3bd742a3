package model

import "strconv"

// Contact is the data structure for a person that we know.
//
// The Id field is supplied by the caller and is the key for all lookups. It is independent of Key,
// which is the identity the store assigned to the persisted record. PictureUrl is optional and may
// hold a data URL.
type Contact struct {
	Key        string `json:"_id,omitempty"`
	Id         *int64 `json:"id,omitempty"`
	FirstName  string `json:"FirstName"`
	LastName   string `json:"LastName"`
	Email      string `json:"Email"`
	Phone      string `json:"Phone"`
	PictureUrl string `json:"PictureUrl,omitempty"`
}

// Patch carries the fields of a partial update. A nil field is absent from the request and leaves
// the stored value untouched.
type Patch struct {
	Id         *int64  `json:"id,omitempty"`
	FirstName  *string `json:"FirstName,omitempty"`
	LastName   *string `json:"LastName,omitempty"`
	Email      *string `json:"Email,omitempty"`
	Phone      *string `json:"Phone,omitempty"`
	PictureUrl *string `json:"PictureUrl,omitempty"`
}

// DeleteResult is the response body of a successful delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Int64 returns a pointer to v. It is a convenience for filling the optional Id field.
func Int64(v int64) *int64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Merge returns a new contact made of c with every field present in p overwriting the value of c.
// Fields absent from p are kept. The store key is never touched. Neither c nor p is modified.
func (c Contact) Merge(p Patch) Contact {
	merged := c
	if p.Id != nil {
		merged.Id = Int64(*p.Id)
	} else if c.Id != nil {
		merged.Id = Int64(*c.Id)
	}
	if p.FirstName != nil {
		merged.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		merged.LastName = *p.LastName
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.Phone != nil {
		merged.Phone = *p.Phone
	}
	if p.PictureUrl != nil {
		merged.PictureUrl = *p.PictureUrl
	}
	return merged
}

// Fields returns the contact as a field name to text mapping, the form in which validation rules
// are applied. An absent Id maps to the empty string.
func (c Contact) Fields() map[string]string {
	id := ""
	if c.Id != nil {
		id = strconv.FormatInt(*c.Id, 10)
	}
	return map[string]string{
		"id":         id,
		"FirstName":  c.FirstName,
		"LastName":   c.LastName,
		"Email":      c.Email,
		"Phone":      c.Phone,
		"PictureUrl": c.PictureUrl,
	}
}

// SameId reports whether two optional ids are equal. Two absent ids are considered equal.
func SameId(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
