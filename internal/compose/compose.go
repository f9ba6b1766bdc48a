// Package compose places a flag image under a profile-picture template.
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/hightemp/flagpic/internal/config"
)

// Composer pastes flags into a fixed template.
type Composer struct {
	template image.Image
	size     image.Point // flag width and height
	position image.Point // top-left corner of the flag on the template
}

// NewComposer creates a composer for template.
func NewComposer(template image.Image, size, position image.Point) (*Composer, error) {
	if template == nil {
		return nil, errors.New("template image is nil")
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("invalid flag size %dx%d", size.X, size.Y)
	}
	return &Composer{template: template, size: size, position: position}, nil
}

// FromConfig loads the template named in cfg and applies its flag geometry.
func FromConfig(cfg *config.Config) (*Composer, error) {
	tmpl, err := LoadTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}
	return NewComposer(tmpl,
		image.Pt(cfg.FlagSize.Width, cfg.FlagSize.Height),
		image.Pt(cfg.FlagPosition.X, cfg.FlagPosition.Y),
	)
}

// LoadTemplate reads and decodes a template image.
func LoadTemplate(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", path, err)
	}
	return img, nil
}

// Size returns the flag size.
func (c *Composer) Size() image.Point { return c.size }

// Compose resizes flag to the flag size, pastes it onto a transparent canvas the
// size of the template and draws the template over it. Pasting replaces pixels;
// only the template is alpha-blended.
func (c *Composer) Compose(flag image.Image) *image.RGBA {
	scaled := image.NewRGBA(image.Rectangle{Max: c.size})
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), flag, flag.Bounds(), draw.Src, nil)

	tb := c.template.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, tb.Dx(), tb.Dy()))
	draw.Draw(canvas, image.Rectangle{Min: c.position, Max: c.position.Add(c.size)}, scaled, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), c.template, tb.Min, draw.Over)
	return canvas
}

// ComposeBytes decodes flag data and composes it.
func (c *Composer) ComposeBytes(data []byte) (*image.RGBA, error) {
	flag, err := DecodeFlag(data, c.size)
	if err != nil {
		return nil, err
	}
	return c.Compose(flag), nil
}

// DecodeFlag decodes a PNG, JPEG, GIF or WebP flag. SVG flags are rasterized
// directly at size.
func DecodeFlag(data []byte, size image.Point) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("flag image is empty")
	}
	if isSVG(data) {
		return rasterizeSVG(data, size)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode flag: %w", err)
	}
	return img, nil
}

func isSVG(data []byte) bool {
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<")) && bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

func rasterizeSVG(data []byte, size image.Point) (image.Image, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", size.X, size.Y)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg flag: %w", err)
	}
	w, h := size.X, size.Y
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
