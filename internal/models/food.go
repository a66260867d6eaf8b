package models

import "sort"

// FoodItem is the nutrient profile of a dish. Macros are grams, energy is kcal.
type FoodItem struct {
	Name     string  `gorm:"size:255;not null" json:"name"`
	Carbs    float64 `gorm:"type:float" json:"carbs"`
	Calories float64 `gorm:"type:float" json:"calories"`
	Proteins float64 `gorm:"type:float" json:"proteins"`
	Fats     float64 `gorm:"type:float" json:"fats"`
	Fiber    float64 `gorm:"type:float" json:"fiber"`
}

// Nutrients is the set of macros tracked against a daily target
type Nutrients struct {
	Carbs    float64 `json:"carbs"`
	Calories float64 `json:"calories"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
}

// RecommendedDaily holds the fixed daily targets
var RecommendedDaily = Nutrients{
	Carbs:    300,
	Calories: 2000,
	Proteins: 50,
	Fats:     65,
}

// Reference dishes, values per portion (CREA tables)
var foodDatabase = map[string]FoodItem{
	"pasta_pomodoro": {
		Name:     "Pasta al pomodoro",
		Carbs:    65.2,
		Calories: 350,
		Proteins: 12.5,
		Fats:     8.3,
		Fiber:    3.2,
	},
	"carbonara": {
		Name:     "Pasta alla carbonara",
		Carbs:    28.4,
		Calories: 420,
		Proteins: 18.7,
		Fats:     22.5,
		Fiber:    1.8,
	},
	"insalata_mista": {
		Name:     "Insalata mista",
		Carbs:    4.2,
		Calories: 45,
		Proteins: 2.1,
		Fats:     2.8,
		Fiber:    2.5,
	},
	"pollo_verdure": {
		Name:     "Pollo con verdure",
		Carbs:    12.3,
		Calories: 280,
		Proteins: 32.5,
		Fats:     11.2,
		Fiber:    4.1,
	},
	"pizza_margherita": {
		Name:     "Pizza margherita",
		Carbs:    48.5,
		Calories: 380,
		Proteins: 16.2,
		Fats:     14.8,
		Fiber:    2.3,
	},
}

// LookupFood returns the reference dish stored under key
func LookupFood(key string) (FoodItem, bool) {
	food, ok := foodDatabase[key]
	return food, ok
}

// FoodKeys returns the catalog keys in sorted order
func FoodKeys() []string {
	keys := make([]string, 0, len(foodDatabase))
	for k := range foodDatabase {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CatalogEntry pairs a catalog key with its dish
type CatalogEntry struct {
	Key  string   `json:"key"`
	Food FoodItem `json:"food"`
}

// Catalog returns every reference dish in key order
func Catalog() []CatalogEntry {
	keys := FoodKeys()
	out := make([]CatalogEntry, len(keys))
	for i, k := range keys {
		out[i] = CatalogEntry{Key: k, Food: foodDatabase[k]}
	}
	return out
}
