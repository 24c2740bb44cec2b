package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const ddragonBase = "https://ddragon.leagueoflegends.com"

// DefaultCatalogTTL keeps the skin catalog for a day; Data Dragon only moves
// on patch days.
const DefaultCatalogTTL = 24 * time.Hour

type SkinData struct {
	SkinName     string `json:"skinName"`
	SkinImageURL string `json:"skinImageUrl"`
}

type ChampionSkins struct {
	ChampionName string     `json:"championName"`
	SplashArts   []SkinData `json:"splashArts"`
}

// Catalog serves the champion/skin list from Data Dragon with an in-memory
// TTL cache.
type Catalog struct {
	http  *http.Client
	base  string
	ttl   time.Duration
	clock clockwork.Clock
	log   *zap.Logger

	mu        sync.Mutex
	cached    []ChampionSkins
	fetchedAt time.Time
}

func NewCatalog(ttl time.Duration, clock clockwork.Clock, log *zap.Logger) *Catalog {
	return &Catalog{
		http:  &http.Client{Timeout: 30 * time.Second},
		base:  ddragonBase,
		ttl:   ttl,
		clock: clock,
		log:   log,
	}
}

// AllChampionSkins returns the cached catalog, refreshing it when stale.
func (c *Catalog) AllChampionSkins(ctx context.Context) ([]ChampionSkins, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.clock.Now().Sub(c.fetchedAt) < c.ttl {
		return c.cached, nil
	}

	catalog, err := c.fetchAll(ctx)
	if err != nil {
		// A stale catalog beats an error page for the settings screen.
		if c.cached != nil {
			c.log.Warn("catalog refresh failed, serving stale", zap.Error(err))
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = catalog
	c.fetchedAt = c.clock.Now()
	return catalog, nil
}

func (c *Catalog) fetchAll(ctx context.Context) ([]ChampionSkins, error) {
	var versions []string
	if err := c.getJSON(ctx, c.base+"/api/versions.json", &versions); err != nil {
		return nil, fmt.Errorf("fetch versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("empty version list")
	}
	version := versions[0]
	c.log.Info("refreshing champion catalog", zap.String("version", version))

	var index struct {
		Data map[string]struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", c.base, version)
	if err := c.getJSON(ctx, url, &index); err != nil {
		return nil, fmt.Errorf("fetch champion index: %w", err)
	}

	ids := make([]string, 0, len(index.Data))
	for _, entry := range index.Data {
		ids = append(ids, entry.ID)
	}

	out := make([]ChampionSkins, len(ids))
	sem := make(chan struct{}, 8)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = c.fetchChampion(ctx, version, id)
		}(i, id)
	}
	wg.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].ChampionName < out[j].ChampionName })
	return out, nil
}

// fetchChampion never fails the whole catalog: a champion whose detail fetch
// errors falls back to its default splash.
func (c *Catalog) fetchChampion(ctx context.Context, version, id string) ChampionSkins {
	var detail struct {
		Data map[string]struct {
			Skins []struct {
				Num  int    `json:"num"`
				Name string `json:"name"`
			} `json:"skins"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/cdn/%s/data/en_US/champion/%s.json", c.base, version, id)
	if err := c.getJSON(ctx, url, &detail); err != nil {
		c.log.Warn("champion detail fetch failed", zap.String("champion", id), zap.Error(err))
		return ChampionSkins{
			ChampionName: id,
			SplashArts: []SkinData{{
				SkinName:     "Default",
				SkinImageURL: fmt.Sprintf("%s/cdn/img/champion/splash/%s_0.jpg", c.base, id),
			}},
		}
	}

	data := detail.Data[id]
	arts := make([]SkinData, 0, len(data.Skins))
	for _, skin := range data.Skins {
		name := skin.Name
		if name == "default" {
			name = id
		}
		arts = append(arts, SkinData{
			SkinName:     name,
			SkinImageURL: fmt.Sprintf("%s/cdn/img/champion/splash/%s_%d.jpg", c.base, id, skin.Num),
		})
	}
	return ChampionSkins{ChampionName: id, SplashArts: arts}
}

func (c *Catalog) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
