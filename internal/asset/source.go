package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// Fetcher resolves a remote URL source to raw encoded bytes. Hosts that
// want remote sources inject one; the engine never dials on its own.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// decode resolves a source string to raw bytes and decodes it.
// Accepted forms: data URIs, remote URLs (through the fetcher), and
// local file paths.
func (l *Loader) decode(ctx context.Context, source string) (*image.NRGBA, error) {
	var raw []byte
	var err error

	switch {
	case strings.HasPrefix(source, "data:"):
		raw, err = decodeDataURI(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		if l.fetcher == nil {
			return nil, fmt.Errorf("asset: remote source without fetcher")
		}
		raw, err = l.fetcher.Fetch(ctx, source)
	default:
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("asset: read: %w", err)
	}

	img, err := decodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("asset: decode: %w", err)
	}
	return ToNRGBA(img), nil
}

// decodeBytes dispatches on the payload's magic bytes instead of the
// image package's sniffer: the tga package registers itself with an
// empty magic string, which would shadow every other format. TGA has no
// magic at all, so it is the fallback when nothing matches.
func decodeBytes(raw []byte) (image.Image, error) {
	r := bytes.NewReader(raw)
	switch {
	case bytes.HasPrefix(raw, []byte("\x89PNG\r\n\x1a\n")):
		return png.Decode(r)
	case bytes.HasPrefix(raw, []byte("\xff\xd8")):
		return jpeg.Decode(r)
	case bytes.HasPrefix(raw, []byte("GIF8")):
		return gif.Decode(r)
	case len(raw) >= 12 && string(raw[:4]) == "RIFF" && string(raw[8:12]) == "WEBP":
		return webp.Decode(r)
	default:
		return tga.Decode(r)
	}
}

// decodeDataURI extracts the payload of a data: URI. Only base64
// payloads are supported; the media type is ignored because the format
// is dispatched from the payload's own bytes.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := uri[5:comma], uri[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URI without base64 payload")
	}
	return base64.StdEncoding.DecodeString(payload)
}

// ToNRGBA converts any image to NRGBA format.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha channel, so draw and force alpha to 255.
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
