package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/singleflight"

	"github.com/fantasyrun/runner-market/internal/config"
)

//go:generate mockgen -destination=mock/object_getter.go -package=mock . ObjectGetter

var (
	// ErrObjectNotFound is returned by an ObjectGetter when the key does not exist.
	ErrObjectNotFound = errors.New("object not found")
	ErrUnknownSeason  = errors.New("unknown season")
	ErrEmptyCatalog   = errors.New("season catalog has no runners")
)

// ObjectGetter reads one object from the bucket the catalog lives in.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
}

type Runner struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country,omitempty"`
	ImageRef string `json:"image_ref,omitempty"`
}

type seasonFile struct {
	Season  string   `json:"season"`
	Runners []Runner `json:"runners"`
}

type cachedSeason struct {
	runners  []Runner
	loadedAt time.Time
}

// Service serves season runner lists from object storage, one cache entry per season.
type Service struct {
	store  ObjectGetter
	root   string
	cache  *lru.Cache
	expiry time.Duration
	group  singleflight.Group
	now    func() time.Time
}

func NewService(store ObjectGetter, root string) *Service {
	if store == nil {
		panic("catalog object store cannot be nil")
	}
	cache, _ := lru.New(config.CatalogCacheSize)
	return &Service{
		store:  store,
		root:   strings.Trim(root, "/"),
		cache:  cache,
		expiry: config.CatalogCacheExpiration,
		now:    time.Now,
	}
}

func (s *Service) key(season string) string {
	return path.Join(s.root, season, config.CatalogFileName)
}

// Runners returns the runner list of a season. Concurrent misses share one download.
func (s *Service) Runners(ctx context.Context, season string) ([]Runner, error) {
	if season == "" || strings.ContainsAny(season, "/\\") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeason, season)
	}
	if cached, ok := s.cache.Get(season); ok {
		entry := cached.(cachedSeason)
		if s.now().Sub(entry.loadedAt) < s.expiry {
			return entry.runners, nil
		}
		s.cache.Remove(season)
	}

	v, err, _ := s.group.Do(season, func() (interface{}, error) {
		return s.load(ctx, season)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Runner), nil
}

func (s *Service) load(ctx context.Context, season string) ([]Runner, error) {
	start := time.Now()
	body, err := s.store.GetObject(ctx, s.key(season))
	if errors.Is(err, ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeason, season)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog for season %s: %w", season, err)
	}
	defer body.Close()

	var file seasonFile
	if err := json.NewDecoder(body).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog for season %s: %w", season, err)
	}

	runners := file.Runners[:0]
	for _, r := range file.Runners {
		if r.ID == "" || r.Name == "" {
			continue
		}
		runners = append(runners, r)
	}
	if len(runners) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, season)
	}

	s.cache.Add(season, cachedSeason{runners: runners, loadedAt: s.now()})
	slog.Info("Runner catalog loaded",
		slog.String("type", "sys"),
		slog.String("season", season),
		slog.Int("runners", len(runners)),
		slog.Duration("took", time.Since(start)))
	return runners, nil
}

type runnerNames []Runner

func (r runnerNames) String(i int) string { return r[i].Name }
func (r runnerNames) Len() int            { return len(r) }

// Search fuzzy-matches runner names, best match first.
func (s *Service) Search(ctx context.Context, season, query string) ([]Runner, error) {
	runners, err := s.Runners(ctx, season)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return runners, nil
	}

	matches := fuzzy.FindFrom(query, runnerNames(runners))
	out := make([]Runner, 0, len(matches))
	for _, m := range matches {
		out = append(out, runners[m.Index])
	}
	return out, nil
}

// Invalidate drops a season so the next read goes back to storage.
func (s *Service) Invalidate(season string) {
	s.cache.Remove(season)
}
