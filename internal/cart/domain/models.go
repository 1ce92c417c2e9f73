package domain

import (
	"time"

	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
)

// Item is one pending line. Catalog lines carry a snapshot of the material
// taken when the line was added.
type Item struct {
	ItemType            requestdomain.ItemType `json:"item_type"`
	MaterialID          int64                  `json:"material_id,omitempty"`
	MaterialDescription string                 `json:"material_description,omitempty"`
	ExternalCode        string                 `json:"external_code,omitempty"`
	FreeTextDescription string                 `json:"free_text_description,omitempty"`
	Quantity            int                    `json:"quantity"`
	IsSPR               bool                   `json:"is_spr"`
}

func (i Item) Spec() requestdomain.ItemSpec {
	return requestdomain.ItemSpec{
		ItemType:            i.ItemType,
		MaterialDescription: i.MaterialDescription,
		ExternalCode:        i.ExternalCode,
		FreeTextDescription: i.FreeTextDescription,
		Quantity:            i.Quantity,
		IsSPR:               i.IsSPR,
	}
}

// Cart is the transient buffer of lines a requestor is assembling. It is
// never written to the request database.
type Cart struct {
	ID         string    `json:"id"`
	Department string    `json:"department,omitempty"`
	Items      []Item    `json:"items"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]Item(nil), c.Items...)
	return out
}
