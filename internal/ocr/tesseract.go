// Package ocr reads the site identifiers printed under node glyphs.
package ocr

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// SiteIDChars is the character set site labels are printed with.
const SiteIDChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// ErrEngineUnavailable means the OCR engine itself failed, as opposed to
// finding no text.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

//go:generate mockgen -destination mocks/ocr_mock.go -source tesseract.go -package mocks

// TextExtractor recognizes text in an encoded image. It returns an empty
// string, not an error, when there is no text.
type TextExtractor interface {
	ExtractText(img []byte) (string, error)
}

// EngineConfig selects the trained data and character set.
type EngineConfig struct {
	Language  string `yaml:"language" mapstructure:"language"`
	Whitelist string `yaml:"whitelist" mapstructure:"whitelist"`
}

// DefaultEngineConfig uses the stock English model.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Language:  "eng",
		Whitelist: SiteIDChars,
	}
}

// Engine provides OCR using Tesseract. A gosseract client is not safe for
// concurrent use, so calls are serialized.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a new OCR engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	if !contains(langs, cfg.Language) {
		return nil, fmt.Errorf("%w: language %q not installed (have %s)", ErrEngineUnavailable, cfg.Language, strings.Join(langs, ", "))
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Site ids aren't words; keep the dictionary from "correcting" them.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	// PSM 6 = Assume a single uniform block of text
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}

	if err := client.SetWhitelist(cfg.Whitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// ExtractText runs OCR on an encoded image.
func (e *Engine) ExtractText(img []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("%w: set image: %v", ErrEngineUnavailable, err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	return text, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
