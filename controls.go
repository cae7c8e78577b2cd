package evergreen

import (
	"errors"
	"io/fs"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Prompt kinds shown in the entry line.
const (
	promptGenerate = "Generate"
	promptEdit     = "Edit"
)

const maxPromptLen = 500

// dragState tracks the mouse while it rotates the scene.
type dragState struct {
	down         bool
	lastX, lastY int
	rotX, rotY   float64
}

// controls maps keyboard, mouse, and file drops onto session operations.
// It runs in Game.Update before Session.Update.
type controls struct {
	s      *Session
	h      *hud
	drag   dragState
	editID ParticleID
	chars  []rune
}

func newControls(s *Session) *controls {
	return &controls{s: s, h: s.hud}
}

func (c *controls) update() {
	if fsys := ebiten.DroppedFiles(); fsys != nil {
		c.s.ImportFiles(fsys)
	}
	if c.h.prompting {
		c.updatePrompt()
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		c.s.modes.Set(ModeTree)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		c.s.modes.Set(ModeScatter)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		c.s.modes.Set(ModeFocus)
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		c.beginPrompt(promptGenerate)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		id, ok := c.s.EditSource()
		if !ok {
			c.s.status.set("No photo to edit")
			break
		}
		c.editID = id
		c.beginPrompt(promptEdit)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		c.h.size = c.h.size.Next()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		c.h.togglePanel()
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		c.s.Screenshot("manual")
	}

	c.updateDrag()
}

// updateDrag rotates the scene with the left mouse button while gesture
// input is off.
func (c *controls) updateDrag() {
	if c.s.GestureEnabled() {
		c.drag.down = false
		return
	}
	x, y := ebiten.CursorPosition()
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		c.drag.down = false
		return
	}
	if !c.drag.down {
		c.drag.down = true
		c.drag.lastX, c.drag.lastY = x, y
		return
	}
	w, h := c.s.camera.Viewport()
	c.drag.rotY = clampUnit(c.drag.rotY + 2*float64(x-c.drag.lastX)/w)
	c.drag.rotX = clampUnit(c.drag.rotX + 2*float64(y-c.drag.lastY)/h)
	c.drag.lastX, c.drag.lastY = x, y
	c.s.motion.SetRotationTarget(c.drag.rotX, c.drag.rotY)
}

func clampUnit(v float64) float64 {
	return max(-1, min(1, v))
}

func (c *controls) beginPrompt(kind string) {
	c.h.prompting = true
	c.h.promptKind = kind
	c.h.prompt = c.h.prompt[:0]
}

func (c *controls) updatePrompt() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		c.h.prompting = false
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
		c.submit(string(c.h.prompt))
		c.h.prompting = false
		return
	case repeatingKey(ebiten.KeyBackspace):
		if n := len(c.h.prompt); n > 0 {
			c.h.prompt = c.h.prompt[:n-1]
		}
	}

	c.chars = ebiten.AppendInputChars(c.chars[:0])
	for _, r := range c.chars {
		if unicode.IsPrint(r) && len(c.h.prompt) < maxPromptLen {
			c.h.prompt = append(c.h.prompt, r)
		}
	}
}

// repeatingKey reports a key press with keyboard-style auto repeat.
func repeatingKey(key ebiten.Key) bool {
	const delay, interval = 30, 3
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= delay && (d-delay)%interval == 0)
}

func (c *controls) submit(prompt string) {
	var err error
	if c.h.promptKind == promptEdit {
		err = c.s.RequestEdit(c.editID, prompt)
	} else {
		err = c.s.RequestGeneration(prompt, c.h.size)
	}
	switch {
	case err == nil:
	case errors.Is(err, ErrBusy):
		c.s.status.set("Please wait for the current image")
	case errors.Is(err, ErrNoImageService):
		c.s.status.set("Image service not configured")
	case errors.Is(err, ErrEmptyPrompt):
		c.s.status.set("Prompt is empty")
	default:
		c.s.status.set(err.Error())
	}
}

// ImportFiles decodes every image under fsys in the background and queues
// it on the inbox. Safe to call from the frame loop; photos appear on
// later frames.
func (s *Session) ImportFiles(fsys fs.FS) {
	s.goAsync(func() {
		n, err := walkPhotos(fsys, func(p Photo) error {
			return s.inbox.PostWait(s.ctx, p)
		})
		if err != nil {
			s.logger.Warn("photo import incomplete", "imported", n, "err", err)
			s.status.set("Some files could not be loaded")
			return
		}
		s.logger.Info("photos imported", "count", n)
	})
}

// LoadPhotos decodes every image under fsys and adds it to the scene
// immediately. Call it before the frame loop starts or from within it.
func (s *Session) LoadPhotos(fsys fs.FS) (int, error) {
	return walkPhotos(fsys, func(p Photo) error {
		s.addPhoto(p)
		return nil
	})
}
