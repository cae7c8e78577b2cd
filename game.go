package evergreen

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Game adapts a Session to ebiten.Game.
type Game struct {
	session  *Session
	controls *controls
	layoutW  int
	layoutH  int
	ctx      context.Context
	// OnFinish, if set, is polled each frame; returning true ends the run.
	OnFinish func() bool
}

// NewGame wraps s.
func NewGame(s *Session) *Game {
	return &Game{session: s, controls: newControls(s), ctx: context.Background()}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.session.Closed() || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.controls.update()
	fc := FrameContext{Delta: time.Second / time.Duration(ebiten.TPS())}
	if err := g.session.Update(&fc); err != nil {
		return err
	}
	if g.OnFinish != nil && g.OnFinish() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.session.Draw(screen)
}

// Layout implements ebiten.Game. The scene renders at the window's size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.layoutW || outsideHeight != g.layoutH {
		g.layoutW, g.layoutH = outsideWidth, outsideHeight
		g.session.camera.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Draw renders the particles back to front, then the HUD.
func (s *Session) Draw(screen *ebiten.Image) {
	screen.Fill(s.ClearColor.toRGBA())
	rx, ry := s.motion.GroupRotation()

	t0 := time.Now()
	s.renderer.emit(s.store.All(), s.camera, rx, ry)
	t1 := time.Now()
	s.renderer.mergeSort()
	t2 := time.Now()
	s.renderer.submit(screen)
	t3 := time.Now()

	if s.debug {
		s.debugLog(debugStats{
			emitTime:     t1.Sub(t0),
			sortTime:     t2.Sub(t1),
			submitTime:   t3.Sub(t2),
			commandCount: len(s.renderer.commands),
			additive:     countAdditive(s.renderer.commands),
		})
	}

	s.hud.draw(screen)
	s.flushScreenshots(screen)
}

// Run opens the window, starts gesture input, and blocks until the window
// closes or ctx is canceled. The session is closed on return.
func Run(ctx context.Context, s *Session, g *Game) error {
	if g == nil {
		g = NewGame(s)
	}
	cfg := s.cfg.Window
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.ctx = ctx
	s.Start(ctx)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) || errors.Is(err, ErrClosed) {
		err = nil
	}
	return errors.Join(err, s.Close())
}
