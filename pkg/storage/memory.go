package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

type object struct {
	data        []byte
	contentType string
}

// Memory is an in-process blob store for local runs and the package tests
// of its consumers.
type Memory struct {
	mu         sync.RWMutex
	containers map[string]map[string]object
	names      []string
	logger     *slog.Logger
}

// NewMemory creates an in-process store holding the given containers.
func NewMemory(containers Containers, logger *slog.Logger) *Memory {
	m := &Memory{
		containers: make(map[string]map[string]object),
		names:      containers.All(),
		logger:     logger.With("system", "storage"),
	}
	for _, name := range m.names {
		m.containers[name] = make(map[string]object)
	}
	return m
}

func (m *Memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("memory storage ready", "containers", m.names)
	return nil
}

func (m *Memory) Upload(ctx context.Context, container, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.containers[container]
	if !ok {
		c = make(map[string]object)
		m.containers[container] = c
	}
	c[key] = object{data: data, contentType: contentType}
	return nil
}

func (m *Memory) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	obj, err := m.get(container, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) Delete(ctx context.Context, container, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.containers[container][key]; !ok {
		return ErrNotFound
	}
	delete(m.containers[container], key)
	return nil
}

func (m *Memory) Exists(ctx context.Context, container, key string) (bool, error) {
	_, err := m.get(container, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Copy(ctx context.Context, srcContainer, srcKey, dstContainer, dstKey string) error {
	obj, err := m.get(srcContainer, srcKey)
	if err != nil {
		return err
	}
	return m.Upload(ctx, dstContainer, dstKey, bytes.NewReader(obj.data), obj.contentType)
}

func (m *Memory) List(ctx context.Context, container string) ([]string, error) {
	return m.Keys(container), nil
}

// Keys returns the sorted blob keys of container.
func (m *Memory) Keys(container string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.containers[container]))
}

func (m *Memory) get(container, key string) (object, error) {
	if err := validateKey(key); err != nil {
		return object{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.containers[container][key]
	if !ok {
		return object{}, ErrNotFound
	}
	return obj, nil
}
