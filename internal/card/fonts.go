// Package card renders the social preview images for profile and list
// pages as 1200x630 PNGs.
package card

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// fontFetchTimeout bounds the body font download at startup.
const fontFetchTimeout = 10 * time.Second

// maxFontBytes caps how much font data we accept from disk or the CDN.
const maxFontBytes = 10 << 20

// FontSet holds the two typefaces a card uses: a display font for the
// brand and headings, and a body font for everything else. Either source
// may be unavailable, in which case the bundled Go fonts stand in so a
// card always renders.
type FontSet struct {
	logger *slog.Logger

	mu      sync.RWMutex
	display *sfnt.Font
	body    *sfnt.Font

	displayPath string

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// LoadFonts loads the display font from displayPath and fetches the body
// font from bodyURL, concurrently. A failure on either source is logged
// and replaced with a bundled fallback, never returned as an error.
func LoadFonts(ctx context.Context, displayPath, bodyURL string, logger *slog.Logger) *FontSet {
	fs := &FontSet{
		logger:      logger,
		displayPath: displayPath,
		done:        make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		f, err := loadFontFile(displayPath)
		if err != nil {
			logger.Warn("display font unavailable, using fallback", "path", displayPath, "error", err)
			f = mustParse(gobold.TTF)
		}
		fs.mu.Lock()
		fs.display = f
		fs.mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		f, err := fetchFont(ctx, bodyURL)
		if err != nil {
			logger.Warn("body font unavailable, using fallback", "url", bodyURL, "error", err)
			f = mustParse(goregular.TTF)
		}
		fs.mu.Lock()
		fs.body = f
		fs.mu.Unlock()
	}()

	wg.Wait()
	return fs
}

// Watch reloads the display font when the file changes on disk. The
// parent directory is watched so editors that replace the file atomically
// still trigger a reload.
func (fs *FontSet) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create font watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(fs.displayPath)); err != nil {
		w.Close()
		return fmt.Errorf("watch font dir: %w", err)
	}
	fs.watcher = w

	fs.wg.Add(1)
	go fs.watchLoop()
	return nil
}

func (fs *FontSet) watchLoop() {
	defer fs.wg.Done()
	target := filepath.Clean(fs.displayPath)
	for {
		select {
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			f, err := loadFontFile(fs.displayPath)
			if err != nil {
				// Keep serving the previous font on a bad write.
				fs.logger.Warn("failed to reload display font", "path", fs.displayPath, "error", err)
				continue
			}
			fs.mu.Lock()
			fs.display = f
			fs.mu.Unlock()
			fs.logger.Info("display font reloaded", "path", fs.displayPath)
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.logger.Warn("font watcher error", "error", err)
		case <-fs.done:
			return
		}
	}
}

// Close stops the file watcher, if one was started.
func (fs *FontSet) Close() error {
	close(fs.done)
	var err error
	if fs.watcher != nil {
		err = fs.watcher.Close()
	}
	fs.wg.Wait()
	return err
}

// DisplayFace returns a freshly sized display face. Faces are not safe
// for concurrent use, so each render builds its own.
func (fs *FontSet) DisplayFace(size float64) (font.Face, error) {
	fs.mu.RLock()
	f := fs.display
	fs.mu.RUnlock()
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// BodyFace returns a freshly sized body face.
func (fs *FontSet) BodyFace(size float64) (font.Face, error) {
	fs.mu.RLock()
	f := fs.body
	fs.mu.RUnlock()
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

func loadFontFile(path string) (*sfnt.Font, error) {
	if path == "" {
		return nil, fmt.Errorf("no font path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	if len(data) > maxFontBytes {
		return nil, fmt.Errorf("font file too large: %d bytes", len(data))
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

func fetchFont(ctx context.Context, url string) (*sfnt.Font, error) {
	if url == "" {
		return nil, fmt.Errorf("no font url configured")
	}

	ctx, cancel := context.WithTimeout(ctx, fontFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build font request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch font: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch font: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read font response: %w", err)
	}
	if len(data) > maxFontBytes {
		return nil, fmt.Errorf("font response too large")
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

func mustParse(data []byte) *sfnt.Font {
	f, err := opentype.Parse(data)
	if err != nil {
		// The bundled Go fonts always parse.
		panic(fmt.Sprintf("parse bundled font: %v", err))
	}
	return f
}
