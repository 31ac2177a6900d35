package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// Loader manages loading and caching of the challenge catalog
type Loader struct {
	mu         sync.RWMutex
	challenges map[string]*models.Challenge
	order      []string
}

// NewLoader creates a new challenge loader
func NewLoader() *Loader {
	return &Loader{
		challenges: make(map[string]*models.Challenge),
	}
}

// LoadFromDir loads all YAML challenges from a directory.
// Files are read in name order; broken files are skipped with a warning.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading challenges from directory", "dir", dir)

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to read catalog directory: %w", err)
	}

	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load challenge", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("challenges loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single challenge from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var cf challengeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	challenge, err := cf.toChallenge()
	if err != nil {
		return err
	}

	l.Add(challenge)

	slog.Debug("challenge loaded", "id", challenge.ID, "title", challenge.Title)
	return nil
}

// LoadDefaults seeds the built-in challenges
func (l *Loader) LoadDefaults() {
	now := time.Now().UTC()
	for _, c := range defaultChallenges() {
		c.CreatedAt = now
		l.Add(c)
	}
}

// Get retrieves a challenge by ID
func (l *Loader) Get(id string) *models.Challenge {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.challenges[id]
}

// List returns all loaded challenges in load order
func (l *Loader) List() []*models.Challenge {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.Challenge, 0, len(l.order))
	for _, id := range l.order {
		result = append(result, l.challenges[id])
	}
	return result
}

// Len returns the number of loaded challenges
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Add programmatically adds a challenge, replacing one with the same ID
func (l *Loader) Add(challenge *models.Challenge) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.challenges[challenge.ID]; !exists {
		l.order = append(l.order, challenge.ID)
	}
	l.challenges[challenge.ID] = challenge
}

// Remove removes a challenge by ID
func (l *Loader) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.challenges[id]; !exists {
		return
	}
	delete(l.challenges, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// --- YAML file structs ---

// challengeFile represents the YAML structure of a challenge file
type challengeFile struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Difficulty  string            `yaml:"difficulty"`
	TestCases   []models.TestCase `yaml:"test_cases"`
}

func (cf challengeFile) toChallenge() (*models.Challenge, error) {
	if strings.TrimSpace(cf.Title) == "" {
		return nil, fmt.Errorf("challenge title is required")
	}

	difficulty := models.Difficulty(strings.ToLower(strings.TrimSpace(cf.Difficulty)))
	if difficulty == "" {
		difficulty = models.DifficultyEasy
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", cf.Difficulty)
	}

	id := strings.TrimSpace(cf.ID)
	if id == "" {
		id = slug.Make(cf.Title)
	}

	testCases := cf.TestCases
	if testCases == nil {
		testCases = []models.TestCase{}
	}

	return &models.Challenge{
		ID:          id,
		Title:       cf.Title,
		Description: strings.TrimSpace(cf.Description),
		Difficulty:  difficulty,
		TestCases:   testCases,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
