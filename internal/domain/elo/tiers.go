package elo

import "math"

type Tier struct {
	Name  string
	Color string
	Min   int
	Max   int
}

var tiers = []Tier{
	{Name: "Unranked", Color: "#808080", Min: math.MinInt32, Max: 999},
	{Name: "Bronze", Color: "#CD7F32", Min: 1000, Max: 1199},
	{Name: "Silver", Color: "#C0C0C0", Min: 1200, Max: 1399},
	{Name: "Gold", Color: "#FFD700", Min: 1400, Max: 1599},
	{Name: "Platinum", Color: "#E5E4E2", Min: 1600, Max: 1799},
	{Name: "Diamond", Color: "#B9F2FF", Min: 1800, Max: 1999},
	{Name: "Master", Color: "#FF6B6B", Min: 2000, Max: 2199},
	{Name: "Grandmaster", Color: "#9B59B6", Min: 2200, Max: 2399},
	{Name: "Legend", Color: "#F39C12", Min: 2400, Max: math.MaxInt32},
}

func TierFor(rating int) Tier {
	for i := len(tiers) - 1; i >= 0; i-- {
		if rating >= tiers[i].Min {
			return tiers[i]
		}
	}
	return tiers[0]
}

func Tiers() []Tier {
	return append([]Tier(nil), tiers...)
}
