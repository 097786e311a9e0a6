package photos

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/geocoder89/fuellog/internal/domain/fueling"
	"golang.org/x/sync/errgroup"
)

// MaxPhotoBytes caps a single decoded photo.
const MaxPhotoBytes = 10 << 20

var (
	ErrEmpty          = errors.New("photo is empty")
	ErrTooLarge       = errors.New("photo is too large")
	ErrNotImage       = errors.New("photo is not an image")
	ErrInvalidDataURI = errors.New("invalid photo data uri")
)

// Source is one uploaded file plus the last-modified instant the client reported for it.
type Source struct {
	Name         string
	Open         func() (io.ReadCloser, error)
	LastModified time.Time
}

func FromFileHeader(fh *multipart.FileHeader, lastModified time.Time) Source {
	return Source{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
		LastModified: lastModified,
	}
}

// Encode reads the source into a data URI.
func Encode(ctx context.Context, src Source) (fueling.PhotoData, error) {
	if err := ctx.Err(); err != nil {
		return fueling.PhotoData{}, err
	}
	if src.Open == nil {
		return fueling.PhotoData{}, ErrEmpty
	}

	rc, err := src.Open()
	if err != nil {
		return fueling.PhotoData{}, fmt.Errorf("open %q: %w", src.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, MaxPhotoBytes+1))
	if err != nil {
		return fueling.PhotoData{}, fmt.Errorf("read %q: %w", src.Name, err)
	}

	if len(b) == 0 {
		return fueling.PhotoData{}, ErrEmpty
	}
	if len(b) > MaxPhotoBytes {
		return fueling.PhotoData{}, ErrTooLarge
	}

	mt := mimetype.Detect(b)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fueling.PhotoData{}, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	return fueling.PhotoData{
		Base64:    "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(b),
		Timestamp: src.LastModified.UTC(),
	}, nil
}

// EncodePair decodes both photos concurrently and waits for both.
// The first failure cancels the other.
func EncodePair(ctx context.Context, dashboard, pump Source) (fueling.PhotoData, fueling.PhotoData, error) {
	var dash, pmp fueling.PhotoData

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := Encode(gctx, dashboard)
		if err != nil {
			return fmt.Errorf("dashboard photo: %w", err)
		}
		dash = p
		return nil
	})

	g.Go(func() error {
		p, err := Encode(gctx, pump)
		if err != nil {
			return fmt.Errorf("pump photo: %w", err)
		}
		pmp = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return fueling.PhotoData{}, fueling.PhotoData{}, err
	}

	return dash, pmp, nil
}

// Decode splits a data URI back into its MIME type and bytes.
func Decode(dataURI string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}

	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mime == "" {
		return "", nil, ErrInvalidDataURI
	}

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, b, nil
}

// ParseLastModified accepts epoch milliseconds (what browsers report for
// File.lastModified) or RFC 3339. An empty value yields fallback.
func ParseLastModified(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid last-modified %q", value)
	}
	return t.UTC(), nil
}
