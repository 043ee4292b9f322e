package registry

import "github.com/rsned/stone-planner-server/pkg/stones"

// DefaultStones returns the built-in potency table, in display order.
func DefaultStones() []stones.StoneType {
	return []stones.StoneType{
		{
			Key:                    "rotten",
			Name:                   "Rotten",
			Color:                  "#8B4513",
			OffensiveStat:          "Z Damage",
			DefensiveStat:          "ZDR",
			OffensiveType:          "percentage",
			DefensiveType:          "percentage",
			OffensiveLevels:        []float64{5, 10, 15, 20, 30, 45, 60},
			DefensiveLevels:        []float64{4, 6, 8, 10, 13, 16, 20},
			OffensiveSecondary:     "Base Damage",
			OffensiveSecondaryType: "flat",
			OffensiveFlatLevels:    []float64{2, 4, 6, 8, 10, 15, 20},
		},
		{
			Key:             "red",
			Name:            "Red",
			Color:           "#e74c3c",
			OffensiveStat:   "Burn",
			DefensiveStat:   "Dodge",
			OffensiveType:   "percentage",
			DefensiveType:   "percentage",
			OffensiveLevels: []float64{40, 60, 80, 100, 150, 225, 250},
			DefensiveLevels: []float64{3, 4, 5, 6, 8, 10, 12},
		},
		{
			Key:             "green",
			Name:            "Green",
			Color:           "#27ae60",
			OffensiveStat:   "Poison",
			DefensiveStat:   "HP",
			OffensiveType:   "percentage",
			DefensiveType:   "flat",
			OffensiveLevels: []float64{30, 40, 60, 80, 100, 150, 200},
			DefensiveLevels: []float64{90, 120, 150, 180, 210, 250, 300},
		},
		{
			Key:             "blue",
			Name:            "Blue",
			Color:           "#3498db",
			OffensiveStat:   "Tentacles",
			DefensiveStat:   "DR",
			OffensiveType:   "percentage",
			DefensiveType:   "percentage",
			OffensiveLevels: []float64{25, 30, 35, 45, 60, 75, 90},
			DefensiveLevels: []float64{2, 3, 4, 5, 7, 9, 11},
		},
		{
			Key:             "purple",
			Name:            "Purple",
			Color:           "#9b59b6",
			OffensiveStat:   "Life Drain",
			DefensiveStat:   "XP",
			OffensiveType:   "percentage",
			DefensiveType:   "percentage",
			OffensiveLevels: []float64{2, 4, 6, 8, 10, 15, 20},
			DefensiveLevels: []float64{10, 12, 15, 20, 25, 30, 35},
		},
		{
			Key:             "pearl",
			Name:            "Pearl",
			Color:           "#ecf0f1",
			OffensiveStat:   "Base Damage",
			DefensiveStat:   "Stun",
			OffensiveType:   "flat",
			DefensiveType:   "percentage",
			OffensiveLevels: []float64{15, 20, 25, 30, 45, 60, 75},
			DefensiveLevels: []float64{1, 2, 3, 4, 5, 7, 10},
		},
		{
			Key:             "yellow",
			Name:            "Yellow",
			Color:           "#f1c40f",
			OffensiveStat:   "AS",
			DefensiveStat:   "MS",
			OffensiveType:   "percentage",
			DefensiveType:   "percentage",
			OffensiveLevels: []float64{12, 15, 20, 25, 30, 35, 40},
			DefensiveLevels: []float64{10, 12, 15, 20, 25, 30, 35},
		},
		{
			Key:             "azure",
			Name:            "Azure",
			Color:           "#00bcd4",
			OffensiveStat:   "Blast Nova",
			DefensiveStat:   "Deep Freeze",
			OffensiveType:   "percentage",
			DefensiveType:   "percentage",
			OffensiveLevels: []float64{15, 20, 25, 30, 40, 45, 50},
			DefensiveLevels: []float64{5, 7, 8, 10, 15, 20, 25},
		},
		{
			Key:             "earth",
			Name:            "Earth",
			Color:           "#795548",
			OffensiveStat:   "Earth Damage",
			DefensiveStat:   "Poison Resistance",
			OffensiveType:   "percentage",
			DefensiveType:   "percentage",
			OffensiveLevels: []float64{2, 4, 6, 8, 10, 15, 20},
			DefensiveLevels: []float64{2, 3, 5, 7, 9, 12, 15},
		},
	}
}
