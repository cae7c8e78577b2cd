package evergreen

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/evergreen/genai"
)

// Config is the full tunable configuration of a session. Zero-valued fields
// in a YAML file keep their defaults; see DefaultConfig.
type Config struct {
	Scene   SceneConfig   `yaml:"scene"`
	Gesture GestureConfig `yaml:"gesture"`
	Motion  MotionConfig  `yaml:"motion"`
	Window  WindowConfig  `yaml:"window"`
	GenAI   GenAIConfig   `yaml:"genai"`
}

// SceneConfig controls the initial population.
type SceneConfig struct {
	Decorations      int  `yaml:"decorations"`
	Dust             int  `yaml:"dust"`
	PlaceholderPhoto bool `yaml:"placeholder_photo"`
	// Seed, when non-zero, makes population and focus selection reproducible.
	Seed uint64 `yaml:"seed"`
}

// GestureConfig holds the classifier thresholds. Distances are in
// normalized landmark space.
type GestureConfig struct {
	PinchDistance float64 `yaml:"pinch_distance"`
	FistBelow     float64 `yaml:"fist_below"`
	OpenAbove     float64 `yaml:"open_above"`
	// RotationSmoothing is the per-frame blend toward the palm-driven
	// group rotation.
	RotationSmoothing float64 `yaml:"rotation_smoothing"`
}

// MotionConfig holds layout constants and per-frame blend factors.
type MotionConfig struct {
	TreeBlend      float64 `yaml:"tree_blend"`
	TreeSpin       float64 `yaml:"tree_spin"`
	TreeTurns      float64 `yaml:"tree_turns"` // angle = t * TreeTurns * pi
	TreeHeight     float64 `yaml:"tree_height"`
	TreeRadius     float64 `yaml:"tree_radius"`
	ScatterBlend   float64 `yaml:"scatter_blend"`
	ScatterReach   float64 `yaml:"scatter_reach"`
	ScatterMin     float64 `yaml:"scatter_min"`
	ScatterMax     float64 `yaml:"scatter_max"`
	ScatterSpin    float64 `yaml:"scatter_spin"` // spin per frame per unit of velocity
	FocusBlend     float64 `yaml:"focus_blend"`
	FocusPosition  Vec3    `yaml:"focus_position"`
	FocusScale     float64 `yaml:"focus_scale"`
	BackgroundPush float64 `yaml:"background_push"`
	ScaleReset     float64 `yaml:"scale_reset"`
}

// WindowConfig controls the Ebitengine window.
type WindowConfig struct {
	Title   string  `yaml:"title"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	FOV     float64 `yaml:"fov"` // vertical field of view in degrees
	CameraZ float64 `yaml:"camera_z"`
	ShowFPS bool    `yaml:"show_fps"`
}

// GenAIConfig points at the image generation service.
type GenAIConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Scene: SceneConfig{
			Decorations:      1500,
			Dust:             2500,
			PlaceholderPhoto: true,
		},
		Gesture: GestureConfig{
			PinchDistance:     0.05,
			FistBelow:         0.25,
			OpenAbove:         0.4,
			RotationSmoothing: 0.1,
		},
		Motion: MotionConfig{
			TreeBlend:      0.05,
			TreeSpin:       0.01,
			TreeTurns:      50,
			TreeHeight:     40,
			TreeRadius:     15,
			ScatterBlend:   0.02,
			ScatterReach:   20,
			ScatterMin:     8,
			ScatterMax:     20,
			ScatterSpin:    0.05,
			FocusBlend:     0.05,
			FocusPosition:  Vec3{0, 0, 35},
			FocusScale:     4.5,
			BackgroundPush: 1.5,
			ScaleReset:     0.1,
		},
		Window: WindowConfig{
			Title:   "Evergreen",
			Width:   1280,
			Height:  720,
			FOV:     75,
			CameraZ: 50,
			ShowFPS: true,
		},
		GenAI: GenAIConfig{
			Endpoint: genai.DefaultEndpoint,
			Model:    genai.DefaultModel,
			Timeout:  90 * time.Second,
		},
	}
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("evergreen: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML data over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("evergreen: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration value that would break a layout
// invariant.
func (c Config) Validate() error {
	s := c.Scene
	if s.Decorations < 0 || s.Dust < 0 {
		return fmt.Errorf("evergreen: scene counts must not be negative")
	}
	if s.Decorations+s.Dust == 0 && !s.PlaceholderPhoto {
		return fmt.Errorf("evergreen: scene must contain at least one particle")
	}
	g := c.Gesture
	if g.FistBelow > g.OpenAbove {
		return fmt.Errorf("evergreen: gesture fist_below %v exceeds open_above %v", g.FistBelow, g.OpenAbove)
	}
	m := c.Motion
	if m.ScatterMin <= 0 || m.ScatterMin > m.ScatterMax {
		return fmt.Errorf("evergreen: scatter radius range [%v, %v] is invalid", m.ScatterMin, m.ScatterMax)
	}
	for name, f := range map[string]float64{
		"tree_blend":         m.TreeBlend,
		"scatter_blend":      m.ScatterBlend,
		"focus_blend":        m.FocusBlend,
		"scale_reset":        m.ScaleReset,
		"rotation_smoothing": g.RotationSmoothing,
	} {
		if f <= 0 || f > 1 {
			return fmt.Errorf("evergreen: %s must be in (0, 1], got %v", name, f)
		}
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("evergreen: window size %dx%d is invalid", c.Window.Width, c.Window.Height)
	}
	if c.Window.FOV <= 0 || c.Window.FOV >= 180 {
		return fmt.Errorf("evergreen: window fov %v must be in (0, 180)", c.Window.FOV)
	}
	if c.GenAI.Timeout <= 0 {
		return fmt.Errorf("evergreen: genai timeout must be positive")
	}
	return nil
}
