package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const maxRecipes = 5

// RecipesClient searches Spoonacular recipes by cuisine.
type RecipesClient struct {
	base   string
	apiKey string
	ep     *endpoint
}

func NewRecipesClient(base, apiKey string, opts Options) *RecipesClient {
	return &RecipesClient{base: base, apiKey: apiKey, ep: newEndpoint("spoonacular", opts)}
}

// ByCuisine returns up to five recipe titles. An empty search is NotFound.
func (c *RecipesClient) ByCuisine(ctx context.Context, cuisine string) Outcome[[]string] {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("cuisine", cuisine)
	q.Set("number", strconv.Itoa(maxRecipes))
	q.Set("addRecipeInformation", "true")

	var resp struct {
		Results []struct {
			Title string `json:"title"`
		} `json:"results"`
	}
	if err := c.ep.getJSON(ctx, c.base+"?"+q.Encode(), &resp); err != nil {
		return FromError[[]string](err)
	}

	titles := make([]string, 0, maxRecipes)
	for _, r := range resp.Results {
		if t := strings.TrimSpace(r.Title); t != "" {
			titles = append(titles, t)
		}
		if len(titles) == maxRecipes {
			break
		}
	}
	if len(titles) == 0 {
		return Missing[[]string](fmt.Errorf("%w: spoonacular: no recipes for %s", ErrNotFound, cuisine))
	}
	return Found(titles)
}
