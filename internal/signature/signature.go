// Package signature turns a captured signature payload (a data URL or bare
// base64 image) into a PNG the document renderer can embed.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Bounds applied to embedded signatures.
const (
	MaxWidth      = 1040
	MaxHeight     = 400
	MaxEncodedKB  = 2048
	// MaxSourceSide bounds the declared dimensions checked before any pixel is decoded.
	MaxSourceSide = 4000
)

var ErrInvalid = errors.New("invalid_signature")

// Image is a normalised 8-bit, non-interlaced PNG.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// Decode parses payload, downscales it to fit MaxWidth x MaxHeight and re-encodes it as PNG.
func Decode(payload string) (*Image, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cfg.Width > MaxSourceSide || cfg.Height > MaxSourceSide {
		return nil, fmt.Errorf("%w: image too large (%dx%d)", ErrInvalid, cfg.Width, cfg.Height)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalid)
	}
	w, h := fit(b.Dx(), b.Dy(), MaxWidth, MaxHeight)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return &Image{PNG: buf.Bytes(), Width: w, Height: h}, nil
}

func decodePayload(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalid)
	}
	if strings.HasPrefix(s, "data:") {
		meta, data, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") || !strings.HasPrefix(meta, "data:image/") {
			return nil, fmt.Errorf("%w: unsupported data url", ErrInvalid)
		}
		s = data
	}
	if len(s) > MaxEncodedKB*1024 {
		return nil, fmt.Errorf("%w: payload too large", ErrInvalid)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return raw, nil
}

// fit scales w x h down (never up) to fit inside maxW x maxH.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	rw := float64(maxW) / float64(w)
	rh := float64(maxH) / float64(h)
	r := rw
	if rh < r {
		r = rh
	}
	nw, nh := int(float64(w)*r), int(float64(h)*r)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
