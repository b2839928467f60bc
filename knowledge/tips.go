package knowledge

import (
	"strings"
	"time"
)

// DefaultTip is served when no tip matches the requested category.
const DefaultTip = "Stay consistent with your fitness journey! Every small step counts towards your goals. 💪"

// TipCategories returns the distinct tip categories in kb.yaml order.
func (b *Base) TipCategories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, tip := range b.Tips {
		category := strings.ToLower(strings.TrimSpace(tip.Category))
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	return categories
}

// TipOfDay picks the tip for a date, rotating deterministically so every
// caller sees the same tip on the same day. An empty category draws from the
// whole pool; an unknown category yields the default tip.
func (b *Base) TipOfDay(date time.Time, category string, seed int) Tip {
	pool := b.tipsFor(category)
	if len(pool) == 0 {
		return Tip{Text: DefaultTip, Category: strings.ToLower(strings.TrimSpace(category))}
	}
	idx := (daysSinceEpoch(date) + seed) % len(pool)
	if idx < 0 {
		idx += len(pool)
	}
	return pool[idx]
}

func (b *Base) tipsFor(category string) []Tip {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return b.Tips
	}
	var pool []Tip
	for _, tip := range b.Tips {
		if strings.ToLower(strings.TrimSpace(tip.Category)) == category {
			pool = append(pool, tip)
		}
	}
	return pool
}

func daysSinceEpoch(t time.Time) int {
	return int(t.UTC().Unix() / 86400)
}
