package evergreen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"
	"sync/atomic"

	_ "golang.org/x/image/webp"
)

// PhotoSource records where a photo came from.
type PhotoSource uint8

const (
	PhotoFile      PhotoSource = iota // dropped or loaded from disk
	PhotoGenerated                    // text-to-image result
	PhotoEdited                       // image edit result
)

// String returns a lower-case name for logs and labels.
func (s PhotoSource) String() string {
	switch s {
	case PhotoFile:
		return "file"
	case PhotoGenerated:
		return "generated"
	case PhotoEdited:
		return "edited"
	default:
		return "unknown"
	}
}

// ErrInboxFull is returned by Post when the inbox cannot accept more photos
// until the next frame drains it.
var ErrInboxFull = errors.New("evergreen: photo inbox full")

// Photo is a decoded image waiting to become a particle.
type Photo struct {
	Image  image.Image
	Source PhotoSource
	Label  string
	// Data and MIME keep the encoded bytes so the photo can later be sent
	// to the image edit service.
	Data []byte
	MIME string
}

// PhotoInbox is the hand-off point between background work (file loads,
// AI requests) and the frame loop. Post is safe from any goroutine; the
// frame loop is the only consumer.
type PhotoInbox struct {
	ch      chan Photo
	dropped atomic.Int64
}

// NewPhotoInbox creates an inbox buffering up to capacity photos.
func NewPhotoInbox(capacity int) *PhotoInbox {
	if capacity <= 0 {
		capacity = 16
	}
	return &PhotoInbox{ch: make(chan Photo, capacity)}
}

// Post queues a photo without blocking.
func (b *PhotoInbox) Post(p Photo) error {
	select {
	case b.ch <- p:
		return nil
	default:
		b.dropped.Add(1)
		return ErrInboxFull
	}
}

// PostWait queues a photo, blocking until there is room or ctx is done.
func (b *PhotoInbox) PostWait(ctx context.Context, p Photo) error {
	select {
	case b.ch <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PostBytes decodes encoded image data and queues it. Malformed data is
// reported as an error and nothing is queued.
func (b *PhotoInbox) PostBytes(data []byte, source PhotoSource, label string) error {
	img, mime, err := DecodePhoto(data)
	if err != nil {
		return err
	}
	return b.Post(Photo{Image: img, Source: source, Label: label, Data: data, MIME: mime})
}

// Dropped returns how many photos were rejected because the inbox was full.
func (b *PhotoInbox) Dropped() int64 {
	return b.dropped.Load()
}

// drain appends every queued photo to dst without blocking.
func (b *PhotoInbox) drain(dst []Photo) []Photo {
	for {
		select {
		case p := <-b.ch:
			dst = append(dst, p)
		default:
			return dst
		}
	}
}

// DecodePhoto decodes PNG, JPEG, GIF or WebP data and returns the image and
// its MIME type.
func DecodePhoto(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("evergreen: decode photo: empty data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("evergreen: decode photo: %w", err)
	}
	return img, "image/" + format, nil
}

// photoExts lists the file extensions walkPhotos picks up.
var photoExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// walkPhotos decodes every image file under fsys and passes it to fn.
// Undecodable files are skipped and reported in the joined error; an
// error from fn stops the walk.
func walkPhotos(fsys fs.FS, fn func(Photo) error) (int, error) {
	var n int
	var errs []error
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() || !photoExts[strings.ToLower(path.Ext(name))] {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		img, mime, err := DecodePhoto(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return nil
		}
		if err := fn(Photo{Image: img, Source: PhotoFile, Label: path.Base(name), Data: data, MIME: mime}); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return n, errors.Join(errs...)
}
