package feed

import (
	"slices"
)

type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Run combines freshly extracted notices with the items of the previously
// published feed. Every extracted notice is kept and wins ties on GUID
// against its persisted version; persisted items fill the remaining budget
// in stored order. The result is sorted by publication time, newest first,
// and bounded by maxItems. Notices whose GUID was absent from the prior
// feed are never evicted in favor of older persisted items.
func (m *Merger) Run(extracted, existing []Item, maxItems int) []Item {
	existingGUIDs := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		existingGUIDs[item.GUID] = struct{}{}
	}

	merged := make([]Item, 0, len(extracted)+len(existing))
	seen := make(map[string]struct{}, len(extracted))
	freshCount := 0

	for _, item := range extracted {
		if _, ok := seen[item.GUID]; ok {
			continue
		}
		seen[item.GUID] = struct{}{}
		merged = append(merged, item)

		if _, ok := existingGUIDs[item.GUID]; !ok {
			freshCount++
		}
	}

	budget := maxItems - freshCount
	if budget > 0 {
		appended := 0
		for _, item := range existing {
			if appended >= budget {
				break
			}
			if _, ok := seen[item.GUID]; ok {
				continue
			}
			seen[item.GUID] = struct{}{}
			merged = append(merged, item)
			appended++
		}
	}

	// Stable sort keeps encounter order for equal timestamps: extracted
	// notices before persisted ones, each in their original order.
	slices.SortStableFunc(merged, func(a, b Item) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	if len(merged) > maxItems {
		merged = merged[:maxItems]
	}

	return merged
}
