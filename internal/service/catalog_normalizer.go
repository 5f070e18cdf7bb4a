package service

import (
	"sort"
	"strings"

	"order-amendment-service/internal/models"
)

// DefaultPortionLabel is assigned to catalog rows whose name carries no
// portion suffix.
const DefaultPortionLabel = "Regular"

// portionVocabulary maps the folded form of a recognized portion suffix
// to its canonical label. Only these suffixes are stripped; anything
// else in trailing parentheses is part of the dish name.
var portionVocabulary = map[string]string{
	"half":    "Half",
	"full":    "Full",
	"regular": "Regular",
	"large":   "Large",
	"small":   "Small",
	"medium":  "Medium",
}

// splitPortionSuffix strips a trailing parenthesised portion token from
// a raw catalog name. Returns the base name, the canonical portion
// label, and whether a recognized suffix was found.
func splitPortionSuffix(name string) (string, string, bool) {
	trimmed := strings.TrimSpace(name)
	if !strings.HasSuffix(trimmed, ")") {
		return trimmed, "", false
	}

	open := strings.LastIndex(trimmed, "(")
	if open < 0 {
		return trimmed, "", false
	}

	token := strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])
	label, ok := portionVocabulary[strings.ToLower(token)]
	if !ok {
		return trimmed, "", false
	}

	return strings.TrimSpace(trimmed[:open]), label, true
}

// NormalizeCatalog collapses flat catalog rows into logical dishes with
// deduplicated portion lists. Rows sharing a base name group into one
// dish; within a dish, rows collapsing to the same portion label keep
// the in-stock row first and the cheaper row on equal availability.
// Inactive rows are dropped. Output ordering is deterministic: dishes
// by base name, portions by price then label.
func NormalizeCatalog(rows []models.CatalogRow) []models.LogicalDish {
	type dishAcc struct {
		baseName string
		portions map[string]models.Portion
	}

	dishes := make(map[string]*dishAcc)

	for _, row := range rows {
		if !row.Active {
			continue
		}

		baseName, label, ok := splitPortionSuffix(row.Name)
		if !ok {
			label = DefaultPortionLabel
		}

		key := strings.ToLower(baseName)
		acc, exists := dishes[key]
		if !exists {
			acc = &dishAcc{baseName: baseName, portions: make(map[string]models.Portion)}
			dishes[key] = acc
		}

		candidate := models.Portion{
			Label:        label,
			CatalogRowID: row.ID,
			Price:        row.Price,
			InStock:      row.InStock,
		}

		labelKey := strings.ToLower(label)
		current, dup := acc.portions[labelKey]
		if !dup || preferPortion(candidate, current) {
			acc.portions[labelKey] = candidate
		}
	}

	out := make([]models.LogicalDish, 0, len(dishes))
	for _, acc := range dishes {
		portions := make([]models.Portion, 0, len(acc.portions))
		for _, p := range acc.portions {
			portions = append(portions, p)
		}
		sort.Slice(portions, func(i, j int) bool {
			if portions[i].Price != portions[j].Price {
				return portions[i].Price < portions[j].Price
			}
			return portions[i].Label < portions[j].Label
		})
		out = append(out, models.LogicalDish{BaseName: acc.baseName, Portions: portions})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].BaseName < out[j].BaseName })
	return out
}

// preferPortion reports whether candidate should replace current when
// two rows collapse to the same portion label: in-stock beats
// out-of-stock, then the lower price wins.
func preferPortion(candidate, current models.Portion) bool {
	if candidate.InStock != current.InStock {
		return candidate.InStock
	}
	return candidate.Price < current.Price
}
