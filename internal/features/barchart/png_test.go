package barchart

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"math"
	"testing"

	"github.com/fogleman/gg"
)

// physicalDPI reads the pHYs chunk back, reporting false when absent.
func physicalDPI(data []byte) (float64, bool) {
	if len(data) < 8 || !bytes.Equal(data[:8], pngSignature) {
		return 0, false
	}
	for off := 8; off+12 <= len(data); {
		n := int(binary.BigEndian.Uint32(data[off : off+4]))
		typ := string(data[off+4 : off+8])
		if off+12+n > len(data) {
			return 0, false
		}
		if typ == "pHYs" && n == 9 && data[off+16] == 1 {
			ppm := binary.BigEndian.Uint32(data[off+8 : off+12])
			return math.Round(float64(ppm) * 0.0254), true
		}
		if typ == "IDAT" {
			return 0, false
		}
		off += 12 + n
	}
	return 0, false
}

func TestWithPhysicalDPI(t *testing.T) {
	dc := gg.NewContext(4, 3)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, ok := physicalDPI(buf.Bytes()); ok {
		t.Fatalf("plain encoder output should carry no pHYs chunk")
	}

	out, err := withPhysicalDPI(buf.Bytes(), 300)
	if err != nil {
		t.Fatalf("withPhysicalDPI failed: %v", err)
	}
	dpi, ok := physicalDPI(out)
	if !ok || dpi != 300 {
		t.Fatalf("expected 300 dpi, got %v (%v)", dpi, ok)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("patched png no longer decodes: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestWithPhysicalDPIRejectsGarbage(t *testing.T) {
	if _, err := withPhysicalDPI([]byte("GIF89a........................................"), 300); err == nil {
		t.Fatalf("expected error for non-png input")
	}
}
