package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Drink is a menu entry. The recipe is stored as a JSON text blob and
// parsed back into ingredients whenever a representation is built.
type Drink struct {
	gorm.Model
	Title  string `gorm:"uniqueIndex"`
	Recipe string
}

type Ingredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int64  `json:"parts"`
}

// SummaryIngredient is the public projection of an Ingredient; the name
// is withheld from unauthenticated callers.
type SummaryIngredient struct {
	Color string `json:"color"`
	Parts int64  `json:"parts"`
}

type DrinkSummary struct {
	ID     uint                `json:"id"`
	Title  string              `json:"title"`
	Recipe []SummaryIngredient `json:"recipe"`
}

type DrinkDetail struct {
	ID     uint         `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

func (d *Drink) Ingredients() ([]Ingredient, error) {
	var ingredients []Ingredient
	if err := json.Unmarshal([]byte(d.Recipe), &ingredients); err != nil {
		return nil, err
	}

	return ingredients, nil
}

func (d *Drink) SetIngredients(ingredients []Ingredient) error {
	blob, err := json.Marshal(ingredients)
	if err != nil {
		return err
	}

	d.Recipe = string(blob)

	return nil
}

// Summary builds the public view of the drink. A recipe blob that no
// longer parses is reported to the caller rather than papered over.
func (d *Drink) Summary() (*DrinkSummary, error) {
	ingredients, err := d.Ingredients()
	if err != nil {
		return nil, err
	}

	summary := DrinkSummary{ID: d.ID, Title: d.Title, Recipe: make([]SummaryIngredient, 0, len(ingredients))}
	for _, ingredient := range ingredients {
		summary.Recipe = append(summary.Recipe, SummaryIngredient{Color: ingredient.Color, Parts: ingredient.Parts})
	}

	return &summary, nil
}

// Detail builds the full view, permission gated at the HTTP layer.
func (d *Drink) Detail() (*DrinkDetail, error) {
	ingredients, err := d.Ingredients()
	if err != nil {
		return nil, err
	}

	return &DrinkDetail{ID: d.ID, Title: d.Title, Recipe: ingredients}, nil
}
