package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/XavierBriggs/fortuna/services/weapons-api/pkg/models"
)

const (
	filePrefix = "weapon_"
	fileSuffix = ".json"
)

var (
	// ErrMissingName is returned for documents without a non-empty string name
	ErrMissingName = errors.New("weapon document has no name")

	// ErrInvalidID is returned when a document declares an id that is not a
	// non-empty string. The served id must be the one lookups match against.
	ErrInvalidID = errors.New("weapon document id must be a non-empty string")
)

// Warning records a weapon file that was skipped during a load
type Warning struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Result is the output of a single load cycle
type Result struct {
	Weapons  []models.Weapon
	Warnings []Warning
}

// Loader reads weapon documents from a directory
type Loader struct {
	dir string
}

// New creates a loader for the given directory
func New(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads every *.json file in the directory.
// Only a failure to list the directory is returned as an error; files that
// cannot be read or parsed are skipped and reported in Result.Warnings.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		log.Printf("❌ Error loading weapons: %v", err)
		return nil, fmt.Errorf("loading weapons from %s: %w", l.dir, err)
	}

	result := &Result{
		Weapons: make([]models.Weapon, 0, len(entries)),
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		weapon, err := l.parseFile(name)
		if err != nil {
			log.Printf("⚠️  Warning: could not parse weapon file %s: %v", name, err)
			result.Warnings = append(result.Warnings, Warning{
				Filename: name,
				Error:    err.Error(),
			})
			continue
		}

		result.Weapons = append(result.Weapons, *weapon)
	}

	log.Printf("✓ Loaded %d weapons", len(result.Weapons))
	return result, nil
}

func (l *Loader) parseFile(filename string) (*models.Weapon, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, filename))
	if err != nil {
		return nil, err
	}

	weapon := models.Weapon{
		ID:       WeaponID(filename),
		Filename: filename,
	}
	if err := json.Unmarshal(data, &weapon); err != nil {
		return nil, err
	}

	if strings.TrimSpace(weapon.Name) == "" {
		return nil, ErrMissingName
	}
	if raw, ok := weapon.Fields["id"]; ok && (!isJSONString(raw) || weapon.ID == "") {
		return nil, ErrInvalidID
	}

	return &weapon, nil
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

// WeaponID derives a weapon id from its filename by removing the
// first "weapon_" and the first ".json"
func WeaponID(filename string) string {
	id := strings.Replace(filename, filePrefix, "", 1)
	return strings.Replace(id, fileSuffix, "", 1)
}
