// Package icoconv turns an arbitrary image into a single-image .ico file
// holding a PNG payload.
package icoconv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"dirdirector/internal/fsutil"
	"dirdirector/internal/models"
)

// DefaultSize is the edge length used for imported icons
const DefaultSize = 256

// MaxSize is the largest edge an .ico directory entry can describe
const MaxSize = 256

const (
	headerSize  = 6
	entrySize   = 16
	imageOffset = headerSize + entrySize
	bitDepth    = 32
)

// ErrDecode is returned when the source is not a readable image
var ErrDecode = errors.New("cannot decode image")

// Convert decodes src, resizes it and writes an .ico next to dst. An
// existing file at dst is never overwritten; the path actually written is
// returned.
func Convert(src, dst string, size int, keepAspect bool) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", src, ErrDecode, err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, size, keepAspect); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	out, err := fsutil.UniquePath(dst)
	if err != nil {
		return "", err
	}
	if err := fsutil.WriteNew(out, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write icon: %w", err)
	}
	return out, nil
}

// IconPathFor suggests the .ico path for an image in the same directory
func IconPathFor(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + models.IconExt
}

// Encode writes img as a single-image icon container
func Encode(w io.Writer, img image.Image, size int, keepAspect bool) error {
	if size <= 0 || size > MaxSize {
		return fmt.Errorf("icon size %d out of range 1-%d", size, MaxSize)
	}

	scaled := Resize(img, size, keepAspect)
	var payload bytes.Buffer
	if err := png.Encode(&payload, scaled); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}

	b := scaled.Bounds()
	var header bytes.Buffer
	binary.Write(&header, binary.LittleEndian, uint16(0)) // Reserved
	binary.Write(&header, binary.LittleEndian, uint16(1)) // Type: icon
	binary.Write(&header, binary.LittleEndian, uint16(1)) // Image count

	header.WriteByte(dimensionByte(b.Dx()))
	header.WriteByte(dimensionByte(b.Dy()))
	header.WriteByte(0) // Color count, 0 for true color
	header.WriteByte(0) // Reserved
	binary.Write(&header, binary.LittleEndian, uint16(1))             // Planes
	binary.Write(&header, binary.LittleEndian, uint16(bitDepth))      // Bits per pixel
	binary.Write(&header, binary.LittleEndian, uint32(payload.Len())) // Payload size
	binary.Write(&header, binary.LittleEndian, uint32(imageOffset))   // Payload offset

	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

// Resize scales img to size×size, or when keepAspect is set, so that its
// longer side is size.
func Resize(img image.Image, size int, keepAspect bool) image.Image {
	b := img.Bounds()
	w, h := size, size
	if keepAspect && b.Dx() > 0 && b.Dy() > 0 {
		if b.Dx() >= b.Dy() {
			h = max(1, size*b.Dy()/b.Dx())
		} else {
			w = max(1, size*b.Dx()/b.Dy())
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// dimensionByte encodes an edge length; 0 stands for 256
func dimensionByte(n int) byte {
	if n >= 256 {
		return 0
	}
	return byte(n)
}

// Header is the decoded directory of a single-image icon
type Header struct {
	Reserved   uint16
	Type       uint16
	Count      uint16
	Width      int
	Height     int
	ColorCount uint8
	Planes     uint16
	BitCount   uint16
	Size       uint32
	Offset     uint32
}

// ReadHeader parses the header and first directory entry of an icon
func ReadHeader(r io.Reader) (Header, error) {
	var raw [imageOffset]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, err
	}

	le := binary.LittleEndian
	h := Header{
		Reserved:   le.Uint16(raw[0:2]),
		Type:       le.Uint16(raw[2:4]),
		Count:      le.Uint16(raw[4:6]),
		Width:      int(raw[6]),
		Height:     int(raw[7]),
		ColorCount: raw[8],
		Planes:     le.Uint16(raw[10:12]),
		BitCount:   le.Uint16(raw[12:14]),
		Size:       le.Uint32(raw[14:18]),
		Offset:     le.Uint32(raw[18:22]),
	}
	if h.Width == 0 {
		h.Width = 256
	}
	if h.Height == 0 {
		h.Height = 256
	}
	if h.Reserved != 0 || h.Type != 1 || h.Count == 0 {
		return h, fmt.Errorf("not an icon container")
	}
	return h, nil
}
