// Package ocr wraps a tesseract worker tuned for latency over fidelity.
// The engine instance is stateful and single-threaded, so one long-lived
// worker is reused across calls, lazily initialized on first use and
// serialized with a mutex.
package ocr

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/otiai10/gosseract"
)

// Separator joins the transcriptions of a multi-image extraction.
const Separator = "\n\n--- next screenshot ---\n\n"

const cacheSize = 64

// Extractor is the process-wide OCR worker.
type Extractor struct {
	mu       sync.Mutex
	client   *gosseract.Client
	cache    *lru.Cache[string, string]
	language string
}

// New creates an extractor for the given tesseract language ("eng" when
// empty). The engine itself is not started until the first extraction.
func New(language string) *Extractor {
	if language == "" {
		language = "eng"
	}
	cache, _ := lru.New[string, string](cacheSize)
	return &Extractor{cache: cache, language: language}
}

// ensureClient lazily starts the engine with the speed-over-accuracy
// settings: legacy engine mode and dictionary corrections off.
func (e *Extractor) ensureClient() *gosseract.Client {
	if e.client != nil {
		return e.client
	}
	c := gosseract.NewClient()
	c.SetLanguage(e.language)
	c.SetPageSegMode(gosseract.PSM_AUTO)
	c.SetVariable("tessedit_ocr_engine_mode", "0")
	c.SetVariable("load_system_dawg", "F")
	c.SetVariable("load_freq_dawg", "F")
	e.client = c
	log.Printf("OCR engine started (lang=%s)", e.language)
	return c
}

// ExtractImage transcribes one image from raw bytes.
func (e *Extractor) ExtractImage(data []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.extractLocked(data)
}

// ExtractFile transcribes one image file. Results are cached by path and
// mtime so re-running an unchanged queue skips the engine.
func (e *Extractor) ExtractFile(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat image %s: %v", path, err)
	}
	key := fmt.Sprintf("%s@%d", path, st.ModTime().UnixNano())

	e.mu.Lock()
	defer e.mu.Unlock()
	if text, ok := e.cache.Get(key); ok {
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %v", path, err)
	}
	text, err := e.extractLocked(data)
	if err != nil {
		return "", err
	}
	e.cache.Add(key, text)
	return text, nil
}

// ExtractAll transcribes the files sequentially and concatenates the
// results with Separator. No parallelism: the worker holds internal state.
func (e *Extractor) ExtractAll(paths []string) (string, error) {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		text, err := e.ExtractFile(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, Separator), nil
}

func (e *Extractor) extractLocked(data []byte) (string, error) {
	c := e.ensureClient()
	c.SetImageFromBytes(data)
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %v", err)
	}
	return strings.TrimSpace(text), nil
}

// Close terminates the engine. The extractor may be reused afterwards; the
// next extraction starts a fresh worker.
func (e *Extractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
