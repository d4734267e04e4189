package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

func GetDefaultFontPath() string {
	// Check local fonts directory
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// TextTexture is rendered text ready to be drawn.
type TextTexture struct {
	Texture *sdl.Texture
	W, H    float32
}

// TextCache renders each (font size, color, text) once. Digits are shown
// thousands of times per session and must not be rasterized per frame.
type TextCache struct {
	renderer *sdl.Renderer
	fontPath string
	fonts    map[int]*ttf.Font
	entries  map[string]*TextTexture
}

func NewTextCache(renderer *sdl.Renderer, fontPath string) *TextCache {
	return &TextCache{
		renderer: renderer,
		fontPath: fontPath,
		fonts:    make(map[int]*ttf.Font),
		entries:  make(map[string]*TextTexture),
	}
}

func (c *TextCache) font(size int) (*ttf.Font, error) {
	if f, ok := c.fonts[size]; ok {
		return f, nil
	}
	f, err := ttf.OpenFont(c.fontPath, float32(size))
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", c.fontPath, err)
	}
	c.fonts[size] = f
	return f, nil
}

// Get returns the texture for text, rendering it on first use.
func (c *TextCache) Get(text string, size int, color sdl.Color) (*TextTexture, error) {
	key := fmt.Sprintf("%d:%d,%d,%d,%d:%s", size, color.R, color.G, color.B, color.A, text)
	if entry, ok := c.entries[key]; ok {
		return entry, nil
	}

	font, err := c.font(size)
	if err != nil {
		return nil, err
	}
	surf, err := font.RenderTextBlended(text, color)
	if err != nil || surf == nil {
		return nil, fmt.Errorf("render %q: %v", text, err)
	}
	defer surf.Destroy()

	tex, err := c.renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return nil, fmt.Errorf("texture for %q: %w", text, err)
	}
	entry := &TextTexture{Texture: tex, W: float32(surf.W), H: float32(surf.H)}
	c.entries[key] = entry
	return entry, nil
}

func (c *TextCache) Destroy() {
	for _, entry := range c.entries {
		if entry.Texture != nil {
			entry.Texture.Destroy()
		}
	}
	for _, f := range c.fonts {
		f.Close()
	}
}
