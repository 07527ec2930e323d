package view

import (
	"strings"

	"chemviz-client/internal/model"
)

// FilterEquipment keeps the records whose name or type contains term,
// ignoring case. An empty term keeps everything. Order is preserved and the
// result never aliases the input.
func FilterEquipment(records []model.EquipmentRecord, term string) []model.EquipmentRecord {
	out := make([]model.EquipmentRecord, 0, len(records))
	if term == "" {
		return append(out, records...)
	}

	needle := strings.ToLower(term)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) || strings.Contains(strings.ToLower(r.Type), needle) {
			out = append(out, r)
		}
	}
	return out
}
