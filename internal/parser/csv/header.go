package csv

import (
	"strings"

	"fragranceetl/internal/transformer/builtin"
)

// HeaderKey turns a source header cell into a record key: header_map wins,
// otherwise the cell is lowercased with spaces replaced by underscores.
func HeaderKey(h string, hm map[string]string) string {
	if builtin.HasEdgeSpace(h) {
		h = strings.TrimSpace(h)
	}
	if mapped, ok := hm[h]; ok {
		return mapped
	}
	return strings.ReplaceAll(strings.ToLower(h), " ", "_")
}

// HeaderKeys maps a header row to record keys. A UTF-8 byte order mark on
// the first cell (common in spreadsheet exports of the raw table) is dropped
// first, so a marked "Name" still maps to "name".
func HeaderKeys(hdr []string, hm map[string]string) []string {
	keys := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		keys[i] = HeaderKey(h, hm)
	}
	return keys
}
