package client

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// ManualForm is the free-text manual entry form
type ManualForm struct {
	Name        string
	Ingredients string
	Portion     string
	Carbs       string
	Calories    string
}

// CanSubmit reports whether the form may be submitted
func (f ManualForm) CanSubmit() bool {
	return f.Name != ""
}

// Food builds the item recorded for the form. Only carbs and calories are taken
// from the form, everything else is zero.
func (f ManualForm) Food() models.FoodItem {
	return models.FoodItem{
		Name:     f.Name,
		Carbs:    ParseAmount(f.Carbs),
		Calories: ParseAmount(f.Calories),
	}
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount reads the leading decimal number of s, or 0 when there is none
func ParseAmount(s string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
