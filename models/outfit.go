package models

import (
	"sort"
	"strings"
)

// OutfitCandidate is a generated combination. Items point into the wardrobe
// snapshot it was generated from and must not be modified.
type OutfitCandidate struct {
	Items       []*ClothingItem `json:"items"`
	TotalWarmth int             `json:"total_warmth"`
}

func (o OutfitCandidate) ItemIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Key identifies the candidate by its unordered set of item ids.
func (o OutfitCandidate) Key() string {
	ids := o.ItemIDs()
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func (o OutfitCandidate) Names() []string {
	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, item.Name)
	}
	return names
}

type RankedOutfit struct {
	Items       []ClothingItem `json:"items"`
	TotalWarmth int            `json:"total_warmth"`
	StylistNote string         `json:"stylist_note"`
}

// NewRankedOutfit copies the candidate's items so the result can outlive
// the snapshot and carry resolved image urls.
func NewRankedOutfit(candidate OutfitCandidate, note string) RankedOutfit {
	items := make([]ClothingItem, 0, len(candidate.Items))
	for _, item := range candidate.Items {
		items = append(items, *item)
	}
	return RankedOutfit{
		Items:       items,
		TotalWarmth: candidate.TotalWarmth,
		StylistNote: note,
	}
}

func (r RankedOutfit) Clone() RankedOutfit {
	items := make([]ClothingItem, len(r.Items))
	copy(items, r.Items)
	r.Items = items
	return r
}
