package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/evergreen"
	"github.com/phanxgames/evergreen/genai"
	"github.com/phanxgames/evergreen/landmark"
)

// apiKeyEnv names the variable holding the image service key.
const apiKeyEnv = "GEMINI_API_KEY"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the scene window",
	Long: `Opens the scene. Gestures come from a landmark bridge (--landmarks-url);
without one the scene runs on keyboard and mouse controls.`,
	RunE: runScene,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("landmarks-url", "", "WebSocket URL of the hand landmark bridge")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :2112)")
	runCmd.Flags().String("photos", "", "Directory of photos to add at startup")
	runCmd.Flags().String("script", "", "JSON test script to run, exiting when done")
	runCmd.Flags().String("screenshot-dir", "screenshots", "Directory for F12 and scripted screenshots")
	runCmd.Flags().Bool("debug", false, "Log draw timings at debug level")

	rootCmd.RunE = runScene
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

func runScene(cmd *cobra.Command, args []string) error {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	level, err := parseLevel(levelFlag)
	if err != nil {
		return err
	}
	logger := evergreen.NewLogger(level)

	if err := loadEnv(cmd); err != nil {
		logger.Warn("dotenv not loaded", "err", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	metrics := evergreen.NewMetrics()
	opts := evergreen.Options{
		Config:  &cfg,
		Logger:  logger,
		Metrics: metrics,
	}

	if url, _ := cmd.Flags().GetString("landmarks-url"); url != "" {
		stream := landmark.NewStream(url, landmark.WithLogger(logger))
		opts.Capture = stream
		opts.Detector = stream
	}
	if key := os.Getenv(apiKeyEnv); key != "" {
		opts.Images = genai.New(key,
			genai.WithEndpoint(cfg.GenAI.Endpoint),
			genai.WithModel(cfg.GenAI.Model),
			genai.WithLogger(logger))
	} else {
		logger.Warn("image generation disabled", "reason", apiKeyEnv+" not set")
	}

	s, err := evergreen.NewSession(opts)
	if err != nil {
		return err
	}
	s.ScreenshotDir, _ = cmd.Flags().GetString("screenshot-dir")
	debug, _ := cmd.Flags().GetBool("debug")
	s.SetDebug(debug)

	if dir, _ := cmd.Flags().GetString("photos"); dir != "" {
		n, err := s.LoadPhotos(os.DirFS(dir))
		if err != nil {
			logger.Warn("some photos could not be loaded", "dir", dir, "err", err)
		}
		logger.Info("photos loaded", "dir", dir, "count", n)
	}

	game := evergreen.NewGame(s)
	if path, _ := cmd.Flags().GetString("script"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			_ = s.Close()
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := evergreen.LoadTestScript(data)
		if err != nil {
			_ = s.Close()
			return err
		}
		s.SetTestRunner(runner)
		game.OnFinish = runner.Done
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv := startMetrics(addr, metrics, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return evergreen.Run(ctx, s, game)
}

// startMetrics serves /metrics in the background.
func startMetrics(addr string, m *evergreen.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}
