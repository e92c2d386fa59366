// internal/storage/seed.go
package storage

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedCatalog is the on-disk shape of a catalog fixture.
type SeedCatalog struct {
	Cuisines []struct {
		models.Cuisine `yaml:",inline"`
		Ingredients    []models.Ingredient `yaml:"ingredients"`
	} `yaml:"cuisines"`
	SignatureMeals []models.SignatureMeal `yaml:"signature_meals"`
}

// ParseSeed decodes a YAML catalog. Ingredients inherit their cuisine id.
func ParseSeed(data []byte) (*SeedCatalog, error) {
	var seed SeedCatalog
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	for i := range seed.Cuisines {
		c := &seed.Cuisines[i]
		if c.ID == "" {
			return nil, fmt.Errorf("%w: cuisine %d has no id", models.ErrInvalidInput, i)
		}
		for j := range c.Ingredients {
			if c.Ingredients[j].CuisineID == "" {
				c.Ingredients[j].CuisineID = c.ID
			}
		}
	}
	return &seed, nil
}

// DefaultSeed is the catalog shipped with the binary.
func DefaultSeed() (*SeedCatalog, error) {
	return ParseSeed(defaultSeed)
}

// Seed upserts the catalog in one transaction. Running it twice is harmless.
func (s *SQLiteStorage) Seed(ctx context.Context, seed *SeedCatalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	ingredients := 0
	for _, c := range seed.Cuisines {
		if err := upsertCuisine(ctx, tx, c.Cuisine); err != nil {
			return err
		}
		for pos, ing := range c.Ingredients {
			if err := upsertIngredient(ctx, tx, ing, pos); err != nil {
				return err
			}
			ingredients++
		}
	}

	for _, m := range seed.SignatureMeals {
		if err := upsertSignatureMeal(ctx, tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	s.log.Info("catalog seeded",
		zap.Int("cuisines", len(seed.Cuisines)),
		zap.Int("ingredients", ingredients),
		zap.Int("signature_meals", len(seed.SignatureMeals)))
	return nil
}
