// Package catalog talks to the restaurant service for canonical menu items.
// Lookups go through a Redis cache first; cache failures are logged and
// ignored, readers tolerate transient staleness.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dineflow/internal/order/domain/dto"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	requestTimeout = 5 * time.Second
	cacheTTL       = 5 * time.Minute
)

type Client struct {
	baseURL string
	http    *http.Client
	cache   *redis.Client
	mylog   logger.Logger
}

// New builds a catalog client. cache may be nil, in which case every lookup
// goes to the collaborator.
func New(baseURL string, cache *redis.Client, mylog logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		cache:   cache,
		mylog:   mylog,
	}
}

// GetFoods resolves food details for the given ids. Missing ids are simply
// absent from the result; availability checks belong to the caller.
func (c *Client) GetFoods(ctx context.Context, ids []uuid.UUID) ([]dto.FoodDetails, error) {
	cached, missing := c.readCache(ctx, ids)
	if len(missing) == 0 {
		return cached, nil
	}

	fetched, err := c.fetch(ctx, missing)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, fetched)

	return append(cached, fetched...), nil
}

func (c *Client) fetch(ctx context.Context, ids []uuid.UUID) ([]dto.FoodDetails, error) {
	idStrs := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrs = append(idStrs, id.String())
	}
	url := fmt.Sprintf("%s/foods?ids=%s", c.baseURL, strings.Join(idStrs, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewExternalServiceError("catalog", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.NewExternalServiceError("catalog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewExternalServiceError("catalog",
			errors.New("unexpected status "+resp.Status))
	}

	var foods []dto.FoodDetails
	if err := json.NewDecoder(resp.Body).Decode(&foods); err != nil {
		return nil, errs.NewExternalServiceError("catalog", err)
	}
	return foods, nil
}

func (c *Client) readCache(ctx context.Context, ids []uuid.UUID) (hits []dto.FoodDetails, misses []uuid.UUID) {
	if c.cache == nil {
		return nil, ids
	}

	for _, id := range ids {
		raw, err := c.cache.Get(ctx, cacheKey(id)).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.mylog.Action("cache_read_failed").Warn("Failed to read food from cache", "error", err.Error())
			}
			misses = append(misses, id)
			continue
		}
		var food dto.FoodDetails
		if err := json.Unmarshal([]byte(raw), &food); err != nil {
			misses = append(misses, id)
			continue
		}
		hits = append(hits, food)
	}
	return hits, misses
}

func (c *Client) writeCache(ctx context.Context, foods []dto.FoodDetails) {
	if c.cache == nil {
		return
	}

	for _, food := range foods {
		raw, err := json.Marshal(food)
		if err != nil {
			continue
		}
		if err := c.cache.Set(ctx, cacheKey(food.ID), raw, cacheTTL).Err(); err != nil {
			c.mylog.Action("cache_write_failed").Warn("Failed to cache food", "error", err.Error())
		}
	}
}

func cacheKey(id uuid.UUID) string {
	return "food:" + id.String()
}
