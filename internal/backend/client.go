// internal/backend/client.go

// Package backend reads the catalog from the hosted data API (a
// PostgREST-style REST endpoint) instead of the local database.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/catalog"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

// Compile-time interface check.
var _ catalog.Source = (*Client)(nil)

const defaultTimeout = 30 * time.Second

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *zap.Logger
}

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: backend url is required", models.ErrInvalidInput)
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: backend api key is required", models.ErrInvalidInput)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		log:        log,
	}, nil
}

// ingredientRow and signatureMealRow mirror the hosted tables, where any
// numeric column may be null.
type ingredientRow struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	CuisineID       string   `json:"cuisine_id"`
	Category        string   `json:"category"`
	CaloriesPer100g *float64 `json:"calories_per_100g"`
	ProteinPer100g  *float64 `json:"protein_per_100g"`
	CarbsPer100g    *float64 `json:"carbs_per_100g"`
	FatsPer100g     *float64 `json:"fats_per_100g"`
	CostPer100g     *float64 `json:"cost_per_100g"`
}

type signatureMealRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	CuisineID     *string  `json:"cuisine_id"`
	ImageURL      *string  `json:"image_url"`
	TotalCalories *float64 `json:"total_calories"`
	TotalProtein  *float64 `json:"total_protein"`
	TotalCarbs    *float64 `json:"total_carbs"`
	TotalFats     *float64 `json:"total_fats"`
	BasePrice     *float64 `json:"base_price"`
	Tier          *string  `json:"tier"`
	ChefNotes     *string  `json:"chef_notes"`
	IsFeatured    *bool    `json:"is_featured"`
	IsActive      *bool    `json:"is_active"`
}

func (c *Client) ListCuisines(ctx context.Context) ([]models.Cuisine, error) {
	var rows []models.Cuisine
	if err := c.get(ctx, "cuisines", url.Values{"select": {"*"}}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) ListIngredients(ctx context.Context, cuisineID string) ([]models.Ingredient, error) {
	q := url.Values{
		"select":     {"*"},
		"cuisine_id": {"eq." + cuisineID},
	}
	var rows []ingredientRow
	if err := c.get(ctx, "ingredients", q, &rows); err != nil {
		return nil, err
	}

	out := make([]models.Ingredient, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Ingredient{
			ID:              r.ID,
			Name:            r.Name,
			CuisineID:       r.CuisineID,
			Category:        models.Category(r.Category),
			CaloriesPer100g: deref(r.CaloriesPer100g),
			ProteinPer100g:  deref(r.ProteinPer100g),
			CarbsPer100g:    deref(r.CarbsPer100g),
			FatsPer100g:     deref(r.FatsPer100g),
			CostPer100g:     deref(r.CostPer100g),
		})
	}
	return out, nil
}

// ListSignatureMeals asks for active dishes, featured first, and fills
// null fields with zero values.
func (c *Client) ListSignatureMeals(ctx context.Context) ([]models.SignatureMeal, error) {
	q := url.Values{
		"select":    {"*"},
		"is_active": {"eq.true"},
		"order":     {"is_featured.desc"},
	}
	var rows []signatureMealRow
	if err := c.get(ctx, "signature_meals", q, &rows); err != nil {
		return nil, err
	}

	out := make([]models.SignatureMeal, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SignatureMeal{
			ID:            r.ID,
			Name:          r.Name,
			Description:   deref(r.Description),
			CuisineID:     deref(r.CuisineID),
			ImageURL:      deref(r.ImageURL),
			TotalCalories: deref(r.TotalCalories),
			TotalProtein:  deref(r.TotalProtein),
			TotalCarbs:    deref(r.TotalCarbs),
			TotalFats:     deref(r.TotalFats),
			BasePrice:     deref(r.BasePrice),
			Tier:          deref(r.Tier),
			ChefNotes:     deref(r.ChefNotes),
			IsFeatured:    deref(r.IsFeatured),
			// The query already filtered on is_active; a null here still counts.
			IsActive: r.IsActive == nil || *r.IsActive,
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, table string, q url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("table", table),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("request failed with status %d and couldn't read body: %v", resp.StatusCode, err)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", table, err)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
