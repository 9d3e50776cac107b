package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Codec identifies the compression algorithm wrapping a request body.
// The response mirrors the request codec.
type Codec int

const (
	// CodecNone indicates an uncompressed body.
	CodecNone Codec = iota
	// CodecZlib indicates a zlib stream (RFC 1950).
	CodecZlib
	// CodecGzip indicates a gzip stream (RFC 1952).
	CodecGzip
	// CodecBrotli indicates a brotli stream.
	CodecBrotli
	// CodecDeflate indicates a raw deflate stream (RFC 1951).
	CodecDeflate
)

// String returns the codec name used in encoding lists and logs.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZlib:
		return "zlib"
	case CodecGzip:
		return "gzip"
	case CodecBrotli:
		return "br"
	case CodecDeflate:
		return "deflate"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// CodecFromContentType maps a request content type to the codec it
// declares. The second result is false for content types that do not
// declare a codec; callers fall back to CodecNone and body sniffing.
func CodecFromContentType(contentType string) (Codec, bool) {
	switch contentType {
	case "application/x-zlib", "application/x-compress-zlib":
		return CodecZlib, true
	case "application/x-gzip", "application/x-compress-gzip":
		return CodecGzip, true
	case "application/x-br", "application/x-compress-br":
		return CodecBrotli, true
	case "application/x-deflate", "application/x-compress-deflate":
		return CodecDeflate, true
	default:
		return CodecNone, false
	}
}

// ContentType returns the content type advertising this codec on the
// response. Uncompressed responses use the wire mode's own type.
func (c Codec) ContentType(mode Mode) string {
	switch c {
	case CodecZlib:
		return "application/x-compress-zlib"
	case CodecGzip:
		return "application/x-compress-gzip"
	case CodecBrotli:
		return "application/x-compress-br"
	case CodecDeflate:
		return "application/x-compress-deflate"
	default:
		return mode.ContentType()
	}
}

// AcceptedEncodings lists the codec names the server accepts, in
// preference order.
func AcceptedEncodings(brotliEnabled bool) []string {
	encodings := []string{"gzip", "zlib", "deflate"}
	if brotliEnabled {
		encodings = append(encodings, "br")
	}
	return encodings
}

// Compress wraps data in the codec's stream format. CodecNone returns
// the input unchanged.
func Compress(data []byte, codec Codec) ([]byte, error) {
	if codec == CodecNone {
		return data, nil
	}

	var buf bytes.Buffer
	var w io.WriteCloser
	switch codec {
	case CodecZlib:
		w = zlib.NewWriter(&buf)
	case CodecGzip:
		w = gzip.NewWriter(&buf)
	case CodecBrotli:
		w = brotli.NewWriter(&buf)
	case CodecDeflate:
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, fmt.Errorf("deflate compress: %w", err)
		}
		w = fw
	default:
		return nil, fmt.Errorf("unsupported codec: %d", codec)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s compress: %w", codec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", codec, err)
	}
	return buf.Bytes(), nil
}

// Decompress unwraps a body compressed with the codec. CodecNone
// returns the input unchanged.
func Decompress(data []byte, codec Codec) ([]byte, error) {
	if codec == CodecNone {
		return data, nil
	}

	var r io.Reader
	switch codec {
	case CodecZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zlib decompress: %w", err)
		}
		defer zr.Close()
		r = zr
	case CodecGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		defer gr.Close()
		r = gr
	case CodecBrotli:
		r = brotli.NewReader(bytes.NewReader(data))
	case CodecDeflate:
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		r = fr
	default:
		return nil, fmt.Errorf("unsupported codec: %d", codec)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", codec, err)
	}
	return out, nil
}
