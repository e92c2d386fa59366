// internal/catalog/catalog.go

// Package catalog fronts the data collaborator that owns cuisines,
// ingredients and the signature menu.
package catalog

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

// Source is a backend for catalog reads. Implementations can be the local
// SQLite store or the hosted REST backend.
type Source interface {
	ListCuisines(ctx context.Context) ([]models.Cuisine, error)
	ListIngredients(ctx context.Context, cuisineID string) ([]models.Ingredient, error)
	ListSignatureMeals(ctx context.Context) ([]models.SignatureMeal, error)
}

// Catalog reads from a Source and never fails: an error is logged and
// reads as an empty list.
type Catalog struct {
	src Source
	log *zap.Logger
}

func New(src Source, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{src: src, log: log}
}

func (c *Catalog) Cuisines(ctx context.Context) []models.Cuisine {
	out, err := c.src.ListCuisines(ctx)
	if err != nil {
		c.log.Warn("list cuisines failed", zap.Error(err))
		return []models.Cuisine{}
	}
	if out == nil {
		return []models.Cuisine{}
	}
	return out
}

// Ingredients returns the ingredients of one cuisine. An empty cuisine id
// yields nothing without asking the source.
func (c *Catalog) Ingredients(ctx context.Context, cuisineID string) []models.Ingredient {
	if cuisineID == "" {
		return []models.Ingredient{}
	}
	out, err := c.src.ListIngredients(ctx, cuisineID)
	if err != nil {
		c.log.Warn("list ingredients failed", zap.String("cuisine_id", cuisineID), zap.Error(err))
		return []models.Ingredient{}
	}
	if out == nil {
		return []models.Ingredient{}
	}
	return out
}

// SignatureMeals returns the active menu, featured dishes first, otherwise
// in source order.
func (c *Catalog) SignatureMeals(ctx context.Context) []models.SignatureMeal {
	all, err := c.src.ListSignatureMeals(ctx)
	if err != nil {
		c.log.Warn("list signature meals failed", zap.Error(err))
		return []models.SignatureMeal{}
	}
	out := make([]models.SignatureMeal, 0, len(all))
	for _, m := range all {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsFeatured && !out[j].IsFeatured
	})
	return out
}

// MenuItem is a signature dish with its cuisine attached. Cuisine is nil
// when the dish points at a cuisine the source does not list.
type MenuItem struct {
	models.SignatureMeal
	TierLabel string          `json:"tier_label"`
	Cuisine   *models.Cuisine `json:"cuisine"`
}

// Menu is SignatureMeals joined with their cuisines.
func (c *Catalog) Menu(ctx context.Context) []MenuItem {
	meals := c.SignatureMeals(ctx)
	if len(meals) == 0 {
		return []MenuItem{}
	}

	byID := make(map[string]models.Cuisine)
	for _, cu := range c.Cuisines(ctx) {
		byID[cu.ID] = cu
	}

	out := make([]MenuItem, 0, len(meals))
	for _, m := range meals {
		item := MenuItem{SignatureMeal: m, TierLabel: m.TierLabel()}
		if cu, ok := byID[m.CuisineID]; ok {
			item.Cuisine = &cu
		}
		out = append(out, item)
	}
	return out
}
