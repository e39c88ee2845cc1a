package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"classbooking_go/models"

	"gorm.io/gorm"
)

// Registry kinds. Both registries are open-ended per-location string lists.
const (
	RegistryTeachers = "teacher"
	RegistryContents = "content"
)

// ErrDuplicateEntry marks an exact duplicate registry value.
var ErrDuplicateEntry = errors.New("registry value already present")

// RegistryStore persists the per-location lists.
type RegistryStore interface {
	List(ctx context.Context, kind, location string) ([]string, error)
	Add(ctx context.Context, kind, location, value string) error
}

// GormRegistryStore is the MySQL-backed registry store.
type GormRegistryStore struct {
	db *gorm.DB
}

// NewGormRegistryStore creates a registry store over the given DB handle.
func NewGormRegistryStore(db *gorm.DB) *GormRegistryStore {
	return &GormRegistryStore{db: db}
}

func (s *GormRegistryStore) List(ctx context.Context, kind, location string) ([]string, error) {
	var values []string
	err := s.db.WithContext(ctx).
		Model(&models.RegistryEntry{}).
		Where("kind = ? AND location = ?", kind, location).
		Order("id").
		Pluck("value", &values).Error
	if err != nil {
		return nil, &TransientError{Cause: err}
	}
	return values, nil
}

func (s *GormRegistryStore) Add(ctx context.Context, kind, location, value string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.RegistryEntry{}).
		Where("kind = ? AND location = ? AND value = ?", kind, location, value).
		Count(&count).Error
	if err != nil {
		return &TransientError{Cause: err}
	}
	if count > 0 {
		return ErrDuplicateEntry
	}

	entry := models.RegistryEntry{Kind: kind, Location: location, Value: value}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return ErrDuplicateEntry
		}
		return &TransientError{Cause: err}
	}
	return nil
}

// MemoryRegistryStore is the in-memory registry used by tests.
type MemoryRegistryStore struct {
	mu      sync.Mutex
	entries map[string][]string // kind+"/"+location -> ordered values
}

// NewMemoryRegistryStore creates an empty in-memory registry store.
func NewMemoryRegistryStore() *MemoryRegistryStore {
	return &MemoryRegistryStore{entries: make(map[string][]string)}
}

func (s *MemoryRegistryStore) List(_ context.Context, kind, location string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.entries[kind+"/"+location]
	out := make([]string, len(values))
	copy(out, values)
	return out, nil
}

func (s *MemoryRegistryStore) Add(_ context.Context, kind, location, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := kind + "/" + location
	for _, v := range s.entries[key] {
		if v == value {
			return ErrDuplicateEntry
		}
	}
	s.entries[key] = append(s.entries[key], value)
	return nil
}

// RegistryService exposes the teacher-name and course-content lists.
// Unknown locations degrade to the default branch, matching the catalog.
type RegistryService struct {
	store RegistryStore
}

// NewRegistryService creates a registry service over the injected store.
func NewRegistryService(store RegistryStore) *RegistryService {
	return &RegistryService{store: store}
}

// ListTeachers returns the teacher names registered for a location.
func (rs *RegistryService) ListTeachers(ctx context.Context, location string) ([]string, error) {
	return rs.store.List(ctx, RegistryTeachers, NormalizeLocation(location))
}

// ListContents returns the course-content presets for a location.
func (rs *RegistryService) ListContents(ctx context.Context, location string) ([]string, error) {
	return rs.store.List(ctx, RegistryContents, NormalizeLocation(location))
}

// AddTeacher appends a teacher name, rejecting empty values and duplicates.
func (rs *RegistryService) AddTeacher(ctx context.Context, location, name string) error {
	return rs.add(ctx, RegistryTeachers, location, name, "老師姓名")
}

// AddContent appends a course-content preset, rejecting empty values and
// duplicates.
func (rs *RegistryService) AddContent(ctx context.Context, location, content string) error {
	return rs.add(ctx, RegistryContents, location, content, "課程內容")
}

func (rs *RegistryService) add(ctx context.Context, kind, location, value, label string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return &ValidationError{Reason: label + "不可為空"}
	}
	err := rs.store.Add(ctx, kind, NormalizeLocation(location), value)
	if errors.Is(err, ErrDuplicateEntry) {
		return &ValidationError{Reason: "「" + value + "」已在清單中"}
	}
	return err
}
