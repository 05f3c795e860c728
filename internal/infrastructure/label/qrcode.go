// Package label renders QR labels for product units.
package label

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/skip2/go-qrcode"

	"retailpos/internal/domain/identifier"
)

// Size bounds in pixels.
const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

// ErrEmptyUniqueID is returned for a blank unique id.
var ErrEmptyUniqueID = errors.New("unique id is empty")

// Generator encodes unique ids as QR PNG images.
// The payload is the formatted unique id, so a scanner types it straight
// into the unique id field of the till.
type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewGenerator creates a generator. level is one of L, M, Q, H; anything
// else means M. A size outside MinSize..MaxSize falls back to DefaultSize.
func NewGenerator(size int, level string) *Generator {
	if size < MinSize || size > MaxSize {
		size = DefaultSize
	}
	return &Generator{size: size, level: parseLevel(level)}
}

func parseLevel(level string) qrcode.RecoveryLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// Size returns the image edge in pixels.
func (g *Generator) Size() int {
	return g.size
}

// PNG renders the label for uniqueID.
func (g *Generator) PNG(uniqueID string) ([]byte, error) {
	content := identifier.FormatUniqueID(uniqueID)
	if content == "" {
		return nil, ErrEmptyUniqueID
	}

	code, err := qrcode.New(content, g.level)
	if err != nil {
		return nil, fmt.Errorf("create qr code: %w", err)
	}
	png, err := code.PNG(g.size)
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return png, nil
}

// WriteFile renders the label for uniqueID into path.
func (g *Generator) WriteFile(uniqueID, path string) error {
	png, err := g.PNG(uniqueID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write label: %w", err)
	}
	return nil
}
