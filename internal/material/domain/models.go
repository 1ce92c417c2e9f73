package domain

import "github.com/smallbiznis/stockroom/pkg/search"

// Material is a catalog entry. The code column keeps its historical name.
type Material struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Description string `gorm:"not null" json:"description"`
	Code        string `gorm:"column:oracle;not null;uniqueIndex" json:"code"`
	Active      bool   `gorm:"not null;default:1" json:"active"`
}

func (Material) TableName() string { return "materials" }

// FilterCatalog keeps materials whose description, or whose code, contains
// every whitespace-separated token of query. Blank queries keep everything.
func FilterCatalog(materials []Material, query string) []Material {
	tokens := search.Tokens(query)
	if len(tokens) == 0 {
		return materials
	}
	out := make([]Material, 0, len(materials))
	for _, m := range materials {
		if search.ContainsAll(m.Description, tokens) || search.ContainsAll(m.Code, tokens) {
			out = append(out, m)
		}
	}
	return out
}
