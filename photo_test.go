package evergreen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodePhoto(t *testing.T) {
	img, mime, err := DecodePhoto(pngBytes(t, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}

	if _, _, err := DecodePhoto(nil); err == nil {
		t.Error("empty data should fail")
	}
	if _, _, err := DecodePhoto([]byte("not an image")); err == nil {
		t.Error("garbage should fail")
	}
}

func TestInboxPreservesOrder(t *testing.T) {
	inbox := NewPhotoInbox(4)
	for _, l := range []string{"a", "b", "c"} {
		if err := inbox.Post(Photo{Label: l}); err != nil {
			t.Fatal(err)
		}
	}
	got := inbox.drain(nil)
	if len(got) != 3 || got[0].Label != "a" || got[2].Label != "c" {
		t.Errorf("drain = %+v", got)
	}
	if len(inbox.drain(nil)) != 0 {
		t.Error("photos must be consumed exactly once")
	}
}

func TestInboxFull(t *testing.T) {
	inbox := NewPhotoInbox(1)
	if err := inbox.Post(Photo{}); err != nil {
		t.Fatal(err)
	}
	if err := inbox.Post(Photo{}); !errors.Is(err, ErrInboxFull) {
		t.Errorf("err = %v, want ErrInboxFull", err)
	}
	if inbox.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", inbox.Dropped())
	}
}

func TestInboxPostWait(t *testing.T) {
	inbox := NewPhotoInbox(1)
	_ = inbox.Post(Photo{Label: "first"})

	done := make(chan error, 1)
	go func() { done <- inbox.PostWait(context.Background(), Photo{Label: "second"}) }()

	deadline := time.After(2 * time.Second)
	var got []Photo
	for len(got) < 2 {
		select {
		case <-deadline:
			t.Fatalf("PostWait never delivered, got %+v", got)
		default:
		}
		got = inbox.drain(got)
		time.Sleep(time.Millisecond)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got[1].Label != "second" {
		t.Errorf("order = %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = inbox.Post(Photo{})
	if err := inbox.PostWait(ctx, Photo{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestInboxPostBytes(t *testing.T) {
	inbox := NewPhotoInbox(2)
	data := pngBytes(t, 2, 2)
	if err := inbox.PostBytes(data, PhotoGenerated, "tree"); err != nil {
		t.Fatal(err)
	}
	if err := inbox.PostBytes([]byte("bad"), PhotoGenerated, "bad"); err == nil {
		t.Error("undecodable data should not be queued")
	}
	got := inbox.drain(nil)
	if len(got) != 1 {
		t.Fatalf("drain = %d photos, want 1", len(got))
	}
	p := got[0]
	if p.Source != PhotoGenerated || p.Label != "tree" || p.MIME != "image/png" || !bytes.Equal(p.Data, data) {
		t.Errorf("photo = %+v", p)
	}
}

func TestWalkPhotos(t *testing.T) {
	fsys := fstest.MapFS{
		"a.png":         {Data: pngBytes(t, 1, 1)},
		"notes.txt":     {Data: []byte("skip me")},
		"album/b.PNG":   {Data: pngBytes(t, 2, 2)},
		"album/bad.jpg": {Data: []byte("broken")},
	}
	var labels []string
	n, err := walkPhotos(fsys, func(p Photo) error {
		if p.Source != PhotoFile {
			t.Errorf("source = %v, want file", p.Source)
		}
		labels = append(labels, p.Label)
		return nil
	})
	if n != 2 {
		t.Errorf("n = %d, want 2 (labels %v)", n, labels)
	}
	if err == nil {
		t.Error("broken file should be reported")
	}
}

func TestWalkPhotosStopsOnCallbackError(t *testing.T) {
	fsys := fstest.MapFS{
		"a.png": {Data: pngBytes(t, 1, 1)},
		"b.png": {Data: pngBytes(t, 1, 1)},
	}
	stop := errors.New("stop")
	n, err := walkPhotos(fsys, func(Photo) error { return stop })
	if n != 0 || !errors.Is(err, stop) {
		t.Errorf("n = %d, err = %v", n, err)
	}
}
