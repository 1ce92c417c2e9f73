package domain

import (
	"strconv"
	"strings"
	"time"
)

type ItemType string

const (
	ItemTypeCatalog  ItemType = "catalog"
	ItemTypeFreeText ItemType = "freetext"
)

// Request is one line of a submission.
type Request struct {
	ID                  int64     `json:"id"`
	BatchID             string    `json:"batch_id,omitempty"`
	Department          string    `json:"department"`
	ItemType            ItemType  `json:"item_type"`
	MaterialDescription string    `json:"material_description,omitempty"`
	ExternalCode        string    `json:"external_code,omitempty"`
	FreeTextDescription string    `json:"free_text_description,omitempty"`
	Quantity            int       `json:"quantity"`
	IsSPR               bool      `json:"is_spr"`
	Status              Status    `json:"status"`
	SubmittedAt         time.Time `json:"submitted_at"`
	StatusChangedAt     time.Time `json:"status_changed_at"`
	UnreadForManager    bool      `json:"unread_for_manager"`
	UnreadForRequestor  bool      `json:"unread_for_requestor"`
}

// Description is the text shown for the line regardless of item type.
func (r Request) Description() string {
	if r.ItemType == ItemTypeCatalog {
		return r.MaterialDescription
	}
	return r.FreeTextDescription
}

// ItemSpec describes one line to submit.
type ItemSpec struct {
	ItemType            ItemType `json:"item_type"`
	MaterialDescription string   `json:"material_description,omitempty"`
	ExternalCode        string   `json:"external_code,omitempty"`
	FreeTextDescription string   `json:"free_text_description,omitempty"`
	Quantity            int      `json:"quantity"`
	IsSPR               bool     `json:"is_spr"`
}

func (s ItemSpec) Validate() error {
	if s.Quantity < 1 {
		return ErrInvalidQuantity
	}
	switch s.ItemType {
	case ItemTypeCatalog:
		if s.MaterialDescription == "" || s.ExternalCode == "" {
			return ErrMaterialRequired
		}
		if s.FreeTextDescription != "" {
			return ErrInvalidItemType
		}
	case ItemTypeFreeText:
		if s.FreeTextDescription == "" {
			return ErrFreeTextRequired
		}
		if s.MaterialDescription != "" || s.ExternalCode != "" {
			return ErrInvalidItemType
		}
	default:
		return ErrInvalidItemType
	}
	return nil
}

type StatusCount struct {
	Status  Status `json:"status"`
	Label   string `json:"label"`
	Total   int    `json:"total"`
	Overdue int    `json:"overdue"`
}

// Batch is the derived group of lines submitted together.
type Batch struct {
	Key      string    `json:"key"`
	BatchID  string    `json:"batch_id,omitempty"`
	Requests []Request `json:"requests"`
}

const singleKeyPrefix = "single-"

// SingleKey is the group key of a row submitted without a batch id.
func SingleKey(id int64) string {
	return singleKeyPrefix + strconv.FormatInt(id, 10)
}

// ParseSingleKey returns the request id behind a SingleKey.
func ParseSingleKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, singleKeyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GroupByBatch groups rows by batch id in first-seen order. Rows without a
// batch id each form their own SingleKey group.
func GroupByBatch(rows []Request) []Batch {
	index := map[string]int{}
	var out []Batch
	for _, row := range rows {
		key := row.BatchID
		if key == "" {
			key = SingleKey(row.ID)
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Batch{Key: key, BatchID: row.BatchID})
		}
		out[i].Requests = append(out[i].Requests, row)
	}
	return out
}

type Dashboard struct {
	NewRequests    int `json:"new_requests"`
	UnreadComments int `json:"unread_comments"`
}
