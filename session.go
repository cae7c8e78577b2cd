package evergreen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"

	"github.com/phanxgames/evergreen/genai"
)

// ImageService is the remote image generation capability.
type ImageService interface {
	Generate(ctx context.Context, prompt string, size genai.Size) ([]byte, error)
	Edit(ctx context.Context, src []byte, mime, prompt string) ([]byte, error)
}

// Errors returned by the request methods. Service failures are not
// returned here; they surface asynchronously through Status.
var (
	ErrClosed         = errors.New("evergreen: session closed")
	ErrBusy           = errors.New("evergreen: an image request is already running")
	ErrNoImageService = errors.New("evergreen: no image service configured")
	ErrEmptyPrompt    = errors.New("evergreen: prompt is empty")
	ErrNoEditSource   = errors.New("evergreen: no photo available to edit")
)

// User-visible status messages.
const (
	statusGenerating     = "Generating image..."
	statusEditing        = "Editing image..."
	statusGenerateFailed = "Image generation failed. Please try again."
	statusEditFailed     = "Image edit failed. Please try again."
	statusPhotoAdded     = "Photo added"
	statusNoGestures     = "Gesture control unavailable"
)

// Gesture input states.
const (
	gestureStarting int32 = iota
	gestureOn
	gestureOff
)

// Options configures a Session. Every field is optional.
type Options struct {
	// Config defaults to DefaultConfig().
	Config *Config
	Logger *slog.Logger
	// Capture and Detector provide gesture input. Without both, the
	// session runs on manual controls and injected samples only.
	Capture  Capture
	Detector Detector
	Images   ImageService
	// Surfaces defaults to a TextureSet, which the session disposes on
	// Close.
	Surfaces Surfaces
	// Rand overrides the random source derived from Config.Scene.Seed.
	Rand    *rand.Rand
	Metrics *Metrics
	// World hosts the event bus; a new world is created when nil.
	World donburi.World
}

// Session is the process-wide owner of the scene: particle store, mode
// machine, motion engine, camera, and capability handles. RequestGeneration,
// RequestEdit, ImportFiles, Busy, Status, Inbox().Post, and Close are safe
// from any goroutine; every other method is called from the frame loop.
type Session struct {
	cfg    Config
	logger *slog.Logger

	store      *ParticleStore
	classifier *Classifier
	modes      *ModeMachine
	motion     *MotionEngine
	camera     *Camera
	renderer   *renderer
	twinkle    *twinkle
	textures   *TextureSet
	hud        *hud

	world   donburi.World
	bus     *eventBus
	metrics *Metrics

	inbox   *PhotoInbox
	pending []Photo

	// photos is written by the frame loop and read by RequestEdit.
	photosMu sync.RWMutex
	photos   map[ParticleID]Photo

	capture  Capture
	detector Detector
	gesture  atomic.Int32
	started  atomic.Bool
	initDone chan struct{}

	images ImageService
	busy   atomic.Bool
	status statusLine

	injectQueue     []injectedSample
	testRunner      *TestRunner
	screenshotQueue []string
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	// ClearColor fills the screen before particles are drawn.
	ClearColor Color

	frame   uint64
	elapsed time.Duration
	last    FrameContext

	debug bool

	// lifeMu orders goroutine starts against Close so wg.Add never races
	// wg.Wait.
	lifeMu sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewSession builds a session and populates the initial scene.
func NewSession(opts Options) (*Session, error) {
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewNopLogger()
	}
	rng := opts.Rand
	if rng == nil {
		rng = newRand(cfg.Scene.Seed)
	}

	s := &Session{
		cfg:           cfg,
		logger:        logger,
		world:         opts.World,
		metrics:       opts.Metrics,
		inbox:         NewPhotoInbox(16),
		photos:        make(map[ParticleID]Photo),
		capture:       opts.Capture,
		detector:      opts.Detector,
		images:        opts.Images,
		renderer:      newRenderer(),
		ScreenshotDir: "screenshots",
		ClearColor:    Color{0.01, 0.02, 0.05, 1},
		initDone:      make(chan struct{}),
	}
	if s.world == nil {
		s.world = donburi.NewWorld()
	}
	s.bus = newEventBus(s.world)
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.metrics.subscribe(s.world)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	surfaces := opts.Surfaces
	if surfaces == nil {
		s.textures = NewTextureSet()
		surfaces = s.textures
	}

	s.store = NewParticleStore(surfaces, rng)
	s.store.Populate(cfg.Scene)
	s.classifier = NewClassifier(cfg.Gesture)
	s.modes = NewModeMachine(s.bus)
	s.motion = NewMotionEngine(cfg.Motion, cfg.Gesture.RotationSmoothing, s.store, rng)
	s.modes.OnChange(s.motion.OnModeChange)
	s.modes.OnChange(s.dollyForMode)
	s.twinkle = newTwinkle(int64(rng.Uint64()))

	s.camera = NewCamera(cfg.Window.Width, cfg.Window.Height, cfg.Window.FOV, cfg.Window.CameraZ+30)
	s.camera.DollyTo(cfg.Window.CameraZ, 2.5, ease.OutCubic)

	hud, err := newHUD(s.world, cfg.Window.ShowFPS)
	if err != nil {
		return nil, err
	}
	s.hud = hud

	logger.Info("session created",
		"particles", s.store.Len(),
		"decorations", cfg.Scene.Decorations,
		"dust", cfg.Scene.Dust,
		"seed", cfg.Scene.Seed)
	return s, nil
}

// focusDolly is how far the camera moves in while a photo is focused.
const focusDolly = 5.0

func (s *Session) dollyForMode(c ModeChange) {
	z := s.cfg.Window.CameraZ
	if c.To == ModeFocus {
		z -= focusDolly
	}
	s.camera.DollyTo(z, 1.2, ease.InOutSine)
}

// newRand returns a seeded source, or a randomly seeded one for seed 0.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Start opens the camera and initializes landmark detection in the
// background. The returned channel is closed once gesture input is either
// running or disabled. Failures are logged and the session continues
// without gestures.
func (s *Session) Start(ctx context.Context) <-chan struct{} {
	if !s.started.CompareAndSwap(false, true) {
		return s.initDone
	}

	if s.capture == nil || s.detector == nil {
		s.gesture.Store(gestureOff)
		s.metrics.setGestureEnabled(false)
		s.logger.Info("gesture input not configured")
		close(s.initDone)
		return s.initDone
	}

	started := s.goAsync(func() {
		defer close(s.initDone)
		ctx, cancel := mergeCancel(ctx, s.ctx)
		defer cancel()

		if err := s.capture.Open(ctx); err != nil {
			s.disableGestures("camera unavailable", err)
			return
		}
		if err := s.detector.Init(ctx); err != nil {
			s.disableGestures("landmark model failed to load", err)
			return
		}
		if s.closed.Load() {
			return
		}
		s.gesture.Store(gestureOn)
		s.metrics.setGestureEnabled(true)
		s.logger.Info("gesture input ready")
	})
	if !started {
		close(s.initDone)
	}
	return s.initDone
}

// goAsync runs fn on a goroutine that Close waits for. It reports false,
// without running fn, once the session is closed.
func (s *Session) goAsync(fn func()) bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

// mergeCancel returns a context canceled when either a or b is.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) disableGestures(reason string, err error) {
	s.gesture.Store(gestureOff)
	s.metrics.setGestureEnabled(false)
	s.logger.Warn("gesture control disabled", "reason", reason, "err", err)
	s.status.set(statusNoGestures)
}

// GestureEnabled reports whether camera gesture input is running.
func (s *Session) GestureEnabled() bool {
	return s.gesture.Load() == gestureOn
}

// Update runs one frame: drain photos, sample, classify, apply the mode
// signal, move particles, then append the drained photos and deliver
// events. Photos never join the store while the motion pass iterates it.
func (s *Session) Update(fc *FrameContext) error {
	if s.closed.Load() {
		return ErrClosed
	}
	start := time.Now()

	s.frame++
	s.elapsed += fc.Delta
	fc.Frame = s.frame
	fc.Elapsed = s.elapsed

	s.pending = s.inbox.drain(s.pending[:0])

	if s.testRunner != nil {
		s.testRunner.step(s)
	}

	fc.Sample = s.sample(fc)
	if cl, ok := s.classifier.Classify(fc.Sample); ok {
		fc.HandVisible = true
		fc.Classification = cl
		s.motion.SetRotationTarget(cl.RotX, cl.RotY)
		s.modes.Apply(cl.Signal)
	}
	fc.Mode = s.modes.Current()
	fc.Focus, fc.HasFocus = s.motion.Focus()

	s.motion.Update(fc)
	s.twinkle.apply(s.store.ByKind(KindDust), fc.Elapsed.Seconds())
	s.camera.update(float32(fc.Delta.Seconds()))

	for _, p := range s.pending {
		s.addPhoto(p)
	}
	for i := range s.pending {
		s.pending[i] = Photo{}
	}

	s.bus.process()
	s.hud.update(fc, s)

	s.metrics.observeFrame(fc, s.store.Len(), time.Since(start).Seconds())
	s.last = *fc
	return nil
}

// sample returns this frame's hand, if any. Injected samples take priority
// over the camera.
func (s *Session) sample(fc *FrameContext) *HandSample {
	if len(s.injectQueue) > 0 {
		in := s.injectQueue[0]
		copy(s.injectQueue, s.injectQueue[1:])
		s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]
		fc.Injected = true
		if !in.present {
			return nil
		}
		h := in.sample
		return &h
	}

	if s.gesture.Load() != gestureOn {
		return nil
	}
	f, ok := s.capture.Read()
	if !ok {
		return nil
	}
	ts := fc.Elapsed.Milliseconds()
	if !f.Timestamp.IsZero() {
		ts = f.Timestamp.UnixMilli()
	}
	h, err := s.detector.Detect(f, ts)
	if err != nil {
		s.disableGestures("landmark detection failed", err)
		return nil
	}
	return h
}

// addPhoto turns a decoded photo into a particle.
func (s *Session) addPhoto(p Photo) ParticleID {
	var img *ebiten.Image
	if p.Image != nil {
		img = ebiten.NewImageFromImage(p.Image)
	}
	id := s.store.AddParticle(KindPhoto, img)
	if img != nil && s.store.Get(id).Handle != img {
		// The surface provider drew its own copy.
		img.Deallocate()
	}
	s.photosMu.Lock()
	s.photos[id] = p
	s.photosMu.Unlock()
	s.bus.photoAdded(PhotoAdded{ID: id, Source: p.Source, Label: p.Label})
	s.status.set(statusPhotoAdded)
	s.logger.Info("photo added", "id", id, "source", p.Source, "label", p.Label)
	return id
}

// RequestGeneration starts a text-to-image request in the background. The
// result arrives through the photo inbox; failures set Status. Only one
// request runs at a time.
func (s *Session) RequestGeneration(prompt string, size genai.Size) error {
	prompt = strings.TrimSpace(prompt)
	if err := s.beginRequest(prompt); err != nil {
		return err
	}
	s.status.set(statusGenerating)
	return s.runRequest("generate", statusGenerateFailed, func(ctx context.Context) error {
		data, err := s.images.Generate(ctx, prompt, size)
		if err != nil {
			return err
		}
		return s.inbox.PostBytes(data, PhotoGenerated, prompt)
	})
}

// RequestEdit starts an edit of the photo particle id in the background.
func (s *Session) RequestEdit(id ParticleID, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	src, ok := s.photo(id)
	if !ok || len(src.Data) == 0 {
		return ErrNoEditSource
	}
	if err := s.beginRequest(prompt); err != nil {
		return err
	}
	s.status.set(statusEditing)
	return s.runRequest("edit", statusEditFailed, func(ctx context.Context) error {
		data, err := s.images.Edit(ctx, src.Data, src.MIME, prompt)
		if err != nil {
			return err
		}
		return s.inbox.PostBytes(data, PhotoEdited, prompt)
	})
}

// photo returns the source record of a photo particle.
func (s *Session) photo(id ParticleID) (Photo, bool) {
	s.photosMu.RLock()
	defer s.photosMu.RUnlock()
	p, ok := s.photos[id]
	return p, ok
}

// EditSource returns the photo an edit request should target: the focused
// photo if it has source data, otherwise the most recent editable photo.
// Frame loop only.
func (s *Session) EditSource() (ParticleID, bool) {
	if id, ok := s.motion.Focus(); ok {
		if p, ok := s.photo(id); ok && len(p.Data) > 0 {
			return id, true
		}
	}
	photos := s.store.ByKind(KindPhoto)
	for i := len(photos) - 1; i >= 0; i-- {
		if p, ok := s.photo(photos[i].ID); ok && len(p.Data) > 0 {
			return photos[i].ID, true
		}
	}
	return 0, false
}

func (s *Session) beginRequest(prompt string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.images == nil {
		return ErrNoImageService
	}
	if prompt == "" {
		return ErrEmptyPrompt
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

// runRequest executes fn on a goroutine with the configured timeout and
// clears the busy flag when it returns. It fails with ErrClosed if the
// session closed after beginRequest.
func (s *Session) runRequest(op, failMsg string, fn func(ctx context.Context) error) error {
	started := s.goAsync(func() {
		defer s.busy.Store(false)

		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.GenAI.Timeout)
		defer cancel()
		err := fn(ctx)
		s.metrics.aiResult(op, err)
		if err != nil {
			s.logger.Warn("image request failed", "op", op, "err", err)
			s.status.set(failMsg)
			return
		}
		s.logger.Info("image request done", "op", op)
	})
	if !started {
		s.busy.Store(false)
		return ErrClosed
	}
	return nil
}

// Busy reports whether an image request is running.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Status returns the latest user-visible status message.
func (s *Session) Status() string {
	return s.status.get()
}

// Close stops the session: cancels image requests, waits for background
// work, releases the camera, and disposes textures. Safe to call more than
// once.
func (s *Session) Close() error {
	s.lifeMu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.lifeMu.Unlock()
		return nil
	}
	s.lifeMu.Unlock()
	s.cancel()
	s.wg.Wait()

	var errs []error
	if s.capture != nil && s.started.Load() {
		if err := s.capture.Close(); err != nil {
			errs = append(errs, fmt.Errorf("evergreen: close capture: %w", err))
		}
	}
	if s.textures != nil {
		s.textures.Dispose()
	}
	s.gesture.Store(gestureOff)
	s.logger.Info("session closed", "frames", s.frame)
	return errors.Join(errs...)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Store returns the particle store.
func (s *Session) Store() *ParticleStore { return s.store }

// Modes returns the mode machine.
func (s *Session) Modes() *ModeMachine { return s.modes }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.modes.Current() }

// Motion returns the motion engine.
func (s *Session) Motion() *MotionEngine { return s.motion }

// Camera returns the projection camera.
func (s *Session) Camera() *Camera { return s.camera }

// World returns the Donburi world hosting ModeChangedEvent and
// PhotoAddedEvent subscriptions.
func (s *Session) World() donburi.World { return s.world }

// Inbox returns the photo inbox.
func (s *Session) Inbox() *PhotoInbox { return s.inbox }

// Metrics returns the session's collectors.
func (s *Session) Metrics() *Metrics { return s.metrics }

// Last returns the context of the most recent frame.
func (s *Session) Last() FrameContext { return s.last }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// statusLine is the latest message for the control surface. Written from
// request goroutines, read by the HUD.
type statusLine struct {
	mu   sync.Mutex
	text string
}

func (l *statusLine) set(text string) {
	l.mu.Lock()
	l.text = text
	l.mu.Unlock()
}

func (l *statusLine) get() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}
