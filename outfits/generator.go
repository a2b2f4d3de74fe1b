package outfits

import (
	"strings"

	"myootd/models"
)

type Role int

const (
	RoleNone Role = iota
	RoleFull
	RoleOuterwear
	RoleTop
	RoleBottom
)

func (r Role) String() string {
	switch r {
	case RoleFull:
		return "full"
	case RoleOuterwear:
		return "outerwear"
	case RoleTop:
		return "top"
	case RoleBottom:
		return "bottom"
	default:
		return "none"
	}
}

// RoleOf assigns the single role an item plays. An item tagged both Top and
// Bottom counts as a full-body piece.
func RoleOf(item *models.ClothingItem) Role {
	switch {
	case item.HasCategory(models.CategoryFull),
		item.HasCategory(models.CategoryTop) && item.HasCategory(models.CategoryBottom):
		return RoleFull
	case item.HasCategory(models.CategoryOuterwear):
		return RoleOuterwear
	case item.HasCategory(models.CategoryTop):
		return RoleTop
	case item.HasCategory(models.CategoryBottom):
		return RoleBottom
	}
	return RoleNone
}

// OuterwearBonus is the warmth a layer adds on top of the base outfit.
func OuterwearBonus(rating int) int {
	switch {
	case rating <= 2:
		return 1
	case rating <= 4:
		return 2
	default:
		return 3
	}
}

// layeringSlack is how far below the band a base outfit may sit and still
// be considered for a jacket.
const layeringSlack = 3

type roleBuckets struct {
	full      []*models.ClothingItem
	outerwear []*models.ClothingItem
	tops      []*models.ClothingItem
	bottoms   []*models.ClothingItem
}

// Generate builds every outfit in the wardrobe that fits the band and the
// requested formality. The color preference only narrows the pool when at
// least one eligible item mentions the color in its name.
//
// Candidates come back in discovery order: full-body pieces first, then
// top and bottom pairs, each followed by their layered variants. The items
// slice is read but never modified and candidates point into it.
func Generate(items []models.ClothingItem, band Band, formality models.Formality, preferredColor string) []models.OutfitCandidate {
	pool := filterFormality(items, formality)
	pool = preferColor(pool, preferredColor)
	buckets := partition(pool)

	gen := &generator{band: band, outerwear: buckets.outerwear, seen: map[string]struct{}{}}

	for _, full := range buckets.full {
		base, _ := full.Warmth()
		gen.consider(base, full)
	}
	for _, top := range buckets.tops {
		for _, bottom := range buckets.bottoms {
			if top.ID == bottom.ID {
				continue
			}
			topWarmth, _ := top.Warmth()
			bottomWarmth, _ := bottom.Warmth()
			gen.consider(max(topWarmth, bottomWarmth), top, bottom)
		}
	}
	return gen.out
}

type generator struct {
	band      Band
	outerwear []*models.ClothingItem
	seen      map[string]struct{}
	out       []models.OutfitCandidate
}

func (g *generator) consider(base int, pieces ...*models.ClothingItem) {
	if g.band.Contains(base) {
		g.emit(base, pieces...)
	}
	if !g.band.Widen(layeringSlack).Contains(base) {
		return
	}
	for _, jacket := range g.outerwear {
		if usesID(pieces, jacket.ID) {
			continue
		}
		rating, _ := jacket.Warmth()
		total := base + OuterwearBonus(rating)
		if g.band.Contains(total) {
			layered := make([]*models.ClothingItem, 0, len(pieces)+1)
			layered = append(layered, pieces...)
			g.emit(total, append(layered, jacket)...)
		}
	}
}

func (g *generator) emit(total int, pieces ...*models.ClothingItem) {
	candidate := models.OutfitCandidate{Items: pieces, TotalWarmth: total}
	key := candidate.Key()
	if _, ok := g.seen[key]; ok {
		return
	}
	g.seen[key] = struct{}{}
	g.out = append(g.out, candidate)
}

func usesID(pieces []*models.ClothingItem, id string) bool {
	for _, p := range pieces {
		if p.ID == id {
			return true
		}
	}
	return false
}

func filterFormality(items []models.ClothingItem, formality models.Formality) []*models.ClothingItem {
	var pool []*models.ClothingItem
	for i := range items {
		item := &items[i]
		if _, ok := item.Warmth(); !ok {
			continue
		}
		if item.HasFormality(formality) {
			pool = append(pool, item)
		}
	}
	return pool
}

func preferColor(pool []*models.ClothingItem, color string) []*models.ClothingItem {
	needle := strings.ToLower(strings.TrimSpace(color))
	if needle == "" {
		return pool
	}
	var matches []*models.ClothingItem
	for _, item := range pool {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matches = append(matches, item)
		}
	}
	if len(matches) == 0 {
		return pool
	}
	return matches
}

func partition(pool []*models.ClothingItem) roleBuckets {
	var b roleBuckets
	for _, item := range pool {
		switch RoleOf(item) {
		case RoleFull:
			b.full = append(b.full, item)
		case RoleOuterwear:
			b.outerwear = append(b.outerwear, item)
		case RoleTop:
			b.tops = append(b.tops, item)
		case RoleBottom:
			b.bottoms = append(b.bottoms, item)
		}
	}
	return b
}
