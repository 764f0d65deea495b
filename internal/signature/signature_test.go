package signature

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDataURL(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 520, 200))
	img, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 520 || img.Height != 200 {
		t.Fatalf("unexpected size %dx%d", img.Width, img.Height)
	}
	if _, err := png.Decode(bytes.NewReader(img.PNG)); err != nil {
		t.Fatalf("output is not png: %v", err)
	}
}

func TestDecodeDownscales(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(encodePNG(t, 2080, 400))
	img, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 1040 || img.Height != 200 {
		t.Fatalf("expected 1040x200, got %dx%d", img.Width, img.Height)
	}
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 20)), nil); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	img, err := Decode("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 40 || img.Height != 20 {
		t.Fatalf("unexpected size %dx%d", img.Width, img.Height)
	}
}

func TestDecodeRejects(t *testing.T) {
	for _, payload := range []string{
		"",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,rawdata",
		"data:image/png;base64,!!!",
		base64.StdEncoding.EncodeToString([]byte("not an image")),
	} {
		if _, err := Decode(payload); !errors.Is(err, ErrInvalid) {
			t.Errorf("Decode(%q) error = %v, want ErrInvalid", payload, err)
		}
	}
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching its pixel data.
func withDeclaredSize(t *testing.T, b []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), b...)
	if string(out[12:16]) != "IHDR" {
		t.Fatalf("unexpected png layout")
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecodeRejectsOversizedDimensions(t *testing.T) {
	raw := withDeclaredSize(t, encodePNG(t, 4, 4), 6000, 6000)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil || cfg.Width != 6000 {
		t.Fatalf("rewritten header not readable: %v %+v", err, cfg)
	}
	_, err = Decode("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
	if !errors.Is(err, ErrInvalid) || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size rejection, got %v", err)
	}

	tall := withDeclaredSize(t, encodePNG(t, 4, 4), 10, MaxSourceSide+1)
	if _, err := Decode(base64.StdEncoding.EncodeToString(tall)); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size rejection for a tall image, got %v", err)
	}
}
