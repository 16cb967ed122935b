package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"thirdspace/internal/openrouter"
)

const cacheFileName = "models.json"

// Lister получает список моделей из API.
type Lister interface {
	ListModels(ctx context.Context, apiKey string) ([]openrouter.Model, error)
}

type cacheFile struct {
	FetchedAt time.Time   `json:"fetched_at"`
	Models    []ModelInfo `json:"models"`
}

// Manager хранит каталог моделей: встроенный Registry плюс кэш последнего запроса к API.
type Manager struct {
	mu        sync.RWMutex
	lister    Lister
	cachePath string
	fetched   []ModelInfo
	fetchedAt time.Time
	log       *zap.SugaredLogger
}

// NewManager создаёт менеджер и читает кэш из dir/models.json, если он есть.
func NewManager(dir string, lister Lister, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &Manager{
		lister:    lister,
		cachePath: filepath.Join(dir, cacheFileName),
		log:       log,
	}
	if err := m.loadCache(); err != nil {
		log.Warnw("Models cache ignored", "path", m.cachePath, "error", err)
	}
	return m
}

func (m *Manager) loadCache() error {
	data, err := os.ReadFile(m.cachePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var c cacheFile
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse %s: %w", cacheFileName, err)
	}
	m.fetched = c.Models
	m.fetchedAt = c.FetchedAt
	return nil
}

// Refresh запрашивает каталог у API и сохраняет его в кэш.
func (m *Manager) Refresh(ctx context.Context, apiKey string) ([]ModelInfo, error) {
	remote, err := m.lister.ListModels(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	list := make([]ModelInfo, 0, len(remote))
	for _, r := range remote {
		if r.ID == "" {
			continue
		}
		name := r.Name
		if name == "" {
			name = r.ID
		}
		list = append(list, ModelInfo{ID: r.ID, Name: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	m.mu.Lock()
	m.fetched = list
	m.fetchedAt = time.Now().UTC()
	c := cacheFile{FetchedAt: m.fetchedAt, Models: list}
	m.mu.Unlock()

	if err := m.saveCache(c); err != nil {
		m.log.Warnw("Could not save models cache", "path", m.cachePath, "error", err)
	}
	m.log.Infow("Models catalog refreshed", "count", len(list))
	return list, nil
}

func (m *Manager) saveCache(c cacheFile) error {
	if err := os.MkdirAll(filepath.Dir(m.cachePath), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.cachePath, data, 0o600)
}

// List возвращает встроенные модели, за которыми следуют модели из кэша без повторов.
func (m *Manager) List() []ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(Registry)+len(m.fetched))
	out := make([]ModelInfo, 0, len(Registry)+len(m.fetched))
	for _, list := range [][]ModelInfo{Registry, m.fetched} {
		for _, info := range list {
			if seen[info.ID] {
				continue
			}
			seen[info.ID] = true
			out = append(out, info)
		}
	}
	return out
}

// IDs возвращает идентификаторы из List.
func (m *Manager) IDs() []string {
	list := m.List()
	ids := make([]string, len(list))
	for i, info := range list {
		ids[i] = info.ID
	}
	return ids
}

// FetchedAt возвращает время последнего успешного Refresh (нулевое, если его не было).
func (m *Manager) FetchedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fetchedAt
}
