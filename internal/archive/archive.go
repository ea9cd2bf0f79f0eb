// Package archive keeps a copy of every diagram that produced a prediction.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// RecordVersion is the sidecar schema version.
const RecordVersion = 1

// Record is the JSON sidecar stored next to an archived image.
type Record struct {
	Version   int       `json:"version"`
	TaskID    string    `json:"task_id"`
	OrderID   string    `json:"order_id"`
	SiteID    string    `json:"site_id"`
	POF       string    `json:"pof"`
	Certainty float64   `json:"certainty"`
	Format    string    `json:"format"`
	Created   time.Time `json:"created"`

	// ImagePath is relative to the sidecar.
	ImagePath string `json:"image"`
}

// Config enables archiving into Dir.
type Config struct {
	Enable bool   `yaml:"enable" mapstructure:"enable"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// Archive writes images and their records into one directory.
type Archive struct {
	dir string
}

// New returns an Archive rooted at dir.
func New(dir string) *Archive {
	return &Archive{dir: dir}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// baseName is "<order>_<task>" with anything unsafe in a file name replaced.
func baseName(orderID, taskID string) string {
	return unsafeChars.ReplaceAllString(orderID, "_") + "_" + unsafeChars.ReplaceAllString(taskID, "_")
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ".img"
	default:
		return "." + format
	}
}

// Save writes the image and its record and returns the record path. Names
// are unique per task, so concurrent saves never collide.
func (a *Archive) Save(rec *Record, image []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	base := baseName(rec.OrderID, rec.TaskID)
	rec.Version = RecordVersion
	rec.ImagePath = base + extension(rec.Format)
	if err := os.WriteFile(filepath.Join(a.dir, rec.ImagePath), image, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(a.dir, base+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}

	return path, nil
}

// Load reads a record sidecar.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// GetImagePath returns the absolute path of the archived image.
func (r *Record) GetImagePath(recordPath string) string {
	if filepath.IsAbs(r.ImagePath) {
		return r.ImagePath
	}
	return filepath.Join(filepath.Dir(recordPath), r.ImagePath)
}
