package evergreen

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/evergreen/genai"
)

const (
	hudMargin       = 16
	hudLabelSize    = 28
	hudSmallSize    = 14
	hudStatusTTL    = 4 * time.Second
	hudFPSInterval  = 0.5
	hudPanelWidth   = 300
	hudPulseSeconds = 0.6
)

var controlsHelp = []string{
	"1 / 2 / 3   tree / scatter / focus",
	"G           generate a photo from a prompt",
	"E           edit the focused photo",
	"R           cycle image size",
	"F12         screenshot",
	"H           hide this panel",
	"drop files  add photos",
}

// hud draws the mode label, FPS readout, status line, and controls panel.
type hud struct {
	label *text.GoTextFace
	small *text.GoTextFace
	lineH float64
	mode  Mode
	pulse *gween.Tween
	scale float64

	showFPS   bool
	fpsTimer  float64
	fpsText   string
	handShown bool

	status      string
	statusSince time.Time
	statusAlpha float64

	panelVisible bool
	panelAlpha   float64
	panelFade    *gween.Tween

	// Prompt entry, owned by controls.
	prompting  bool
	promptKind string
	prompt     []rune
	size       genai.Size
	busy       bool
	gestures   bool
}

// loadFace returns a face of source at size.
func loadFace(source *text.GoTextFaceSource, size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: source, Size: size}
}

func newHUD(world donburi.World, showFPS bool) (*hud, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("evergreen: parse font: %w", err)
	}
	h := &hud{
		label:        loadFace(source, hudLabelSize),
		small:        loadFace(source, hudSmallSize),
		scale:        1,
		showFPS:      showFPS,
		panelVisible: true,
		panelAlpha:   1,
		size:         genai.Size1K,
	}
	m := h.small.Metrics()
	h.lineH = m.HAscent + m.HDescent + m.HLineGap

	ModeChangedEvent.Subscribe(world, func(w donburi.World, c ModeChange) {
		h.mode = c.To
		h.pulse = gween.New(1.4, 1, hudPulseSeconds, ease.OutBack)
	})
	return h, nil
}

// togglePanel fades the controls panel in or out.
func (h *hud) togglePanel() {
	h.panelVisible = !h.panelVisible
	to := float32(0)
	if h.panelVisible {
		to = 1
	}
	h.panelFade = gween.New(float32(h.panelAlpha), to, 0.25, ease.OutQuad)
}

func (h *hud) update(fc *FrameContext, s *Session) {
	dt := float32(fc.Delta.Seconds())
	h.handShown = fc.HandVisible
	h.busy = s.Busy()
	h.gestures = s.GestureEnabled()

	if h.pulse != nil {
		v, done := h.pulse.Update(dt)
		h.scale = float64(v)
		if done {
			h.pulse = nil
		}
	}
	if h.panelFade != nil {
		v, done := h.panelFade.Update(dt)
		h.panelAlpha = float64(v)
		if done {
			h.panelFade = nil
		}
	}

	if st := s.Status(); st != h.status {
		h.status = st
		h.statusSince = time.Now()
	}
	h.statusAlpha = 0
	if h.status != "" {
		age := time.Since(h.statusSince)
		if h.busy || age < hudStatusTTL {
			h.statusAlpha = 1
		} else if fade := age - hudStatusTTL; fade < time.Second {
			h.statusAlpha = 1 - fade.Seconds()
		}
	}

	if h.showFPS {
		h.fpsTimer += fc.Delta.Seconds()
		if h.fpsTimer >= hudFPSInterval || h.fpsText == "" {
			h.fpsTimer = 0
			h.fpsText = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
		}
	}
}

func (h *hud) draw(screen *ebiten.Image) {
	b := screen.Bounds()
	w, ht := float64(b.Dx()), float64(b.Dy())

	h.drawModeLabel(screen, w)

	if h.showFPS {
		h.drawBox(screen, hudMargin, hudMargin, 100, 32, 0.5)
		ebitenutil.DebugPrintAt(screen, h.fpsText, hudMargin, hudMargin)
	}
	dot := color.RGBA{90, 90, 90, 255}
	if h.handShown {
		dot = color.RGBA{80, 220, 120, 255}
	}
	if h.gestures {
		vector.DrawFilledCircle(screen, float32(w-hudMargin-6), float32(hudMargin+6), 6, dot, true)
	}

	if h.panelAlpha > 0.01 {
		h.drawPanel(screen, ht)
	}

	if h.prompting {
		line := fmt.Sprintf("%s (%s): %s_", h.promptKind, h.size, string(h.prompt))
		h.drawBox(screen, hudMargin, ht-hudMargin-2*h.lineH-8, w-2*hudMargin, h.lineH+8, 0.75)
		h.drawText(screen, line, hudMargin+6, ht-hudMargin-2*h.lineH-4, ColorWhite)
	}
	if h.statusAlpha > 0 {
		h.drawText(screen, h.status, hudMargin, ht-hudMargin-h.lineH, Color{1, 0.9, 0.6, h.statusAlpha})
	}
}

func (h *hud) drawModeLabel(screen *ebiten.Image, screenW float64) {
	label := h.mode.String()
	tw, th := text.Measure(label, h.label, h.label.Size)
	op := &text.DrawOptions{}
	op.GeoM.Translate(-tw/2, -th/2)
	op.GeoM.Scale(h.scale, h.scale)
	op.GeoM.Translate(screenW/2, hudMargin+th/2)
	op.ColorScale.ScaleWithColor(color.RGBA{255, 215, 120, 255})
	text.Draw(screen, label, h.label, op)
}

func (h *hud) drawPanel(screen *ebiten.Image, screenH float64) {
	lines := make([]string, 0, len(controlsHelp)+2)
	lines = append(lines, controlsHelp...)
	lines = append(lines, "size: "+string(h.size))
	if !h.gestures {
		lines = append(lines, "gestures off: drag to rotate")
	}

	ph := float64(len(lines))*h.lineH + 12
	py := screenH - hudMargin - 3*h.lineH - ph - 8
	h.drawBox(screen, hudMargin, py, hudPanelWidth, ph, 0.55*h.panelAlpha)
	for i, l := range lines {
		h.drawText(screen, l, hudMargin+8, py+6+float64(i)*h.lineH, Color{1, 1, 1, h.panelAlpha})
	}
}

func (h *hud) drawBox(screen *ebiten.Image, x, y, w, ht, alpha float64) {
	a := uint8(clamp01(alpha) * 255)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(ht), color.RGBA{0, 0, 0, a}, false)
}

func (h *hud) drawText(screen *ebiten.Image, s string, x, y float64, c Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	op.LineSpacing = h.lineH
	text.Draw(screen, s, h.small, op)
}
