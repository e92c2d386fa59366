// internal/models/catalog.go
package models

type Cuisine struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// SignatureMeal is a chef-curated dish from the menu. Totals are stored, not
// derived from ingredients.
type SignatureMeal struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Description   string  `json:"description" yaml:"description"`
	CuisineID     string  `json:"cuisine_id" yaml:"cuisine_id"`
	ImageURL      string  `json:"image_url,omitempty" yaml:"image_url"`
	TotalCalories float64 `json:"total_calories" yaml:"total_calories"`
	TotalProtein  float64 `json:"total_protein" yaml:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs" yaml:"total_carbs"`
	TotalFats     float64 `json:"total_fats" yaml:"total_fats"`
	BasePrice     float64 `json:"base_price" yaml:"base_price"`
	Tier          string  `json:"tier,omitempty" yaml:"tier"`
	ChefNotes     string  `json:"chef_notes,omitempty" yaml:"chef_notes"`
	IsFeatured    bool    `json:"is_featured" yaml:"is_featured"`
	IsActive      bool    `json:"is_active" yaml:"is_active"`
}

// TierLabel maps the menu's tier codes to display names. Unknown or empty
// codes read as "Good".
func (m SignatureMeal) TierLabel() string {
	switch m.Tier {
	case "best":
		return "Gourmet"
	case "better":
		return "Premium"
	default:
		return "Good"
	}
}
