package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	ossignal "os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	source := flag.String("source", "", "sensor source: leap, camera or none (overrides config)")
	useTray := flag.Bool("tray", false, "show the system tray indicator")
	flag.Parse()

	fmt.Println("mudra - gesture input")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "source":
			cfg.Source = *source
		case "tray":
			cfg.Tray = *useTray
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	src, err := newSource(cfg)
	if err != nil {
		log.Fatalf("Failed to create %s source: %v", cfg.Source, err)
	}

	dumps := server.NewDumpHandler()
	a := app.New(app.Config{
		Store:         st,
		Source:        src,
		PluginDir:     cfg.PluginDir,
		PluginTimeout: cfg.GetPluginTimeout(),
		Gesture:       cfg.Gesture,
		PollInterval:  cfg.PollInterval(),
		Display:       cfg.Display,
		DebugSink:     dumps,
	})

	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	log.Printf("Loaded %d plugins from %s", len(a.PluginManager().List()), cfg.PluginDir)

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		log.Printf("Sensor unavailable, serving API only: %v", err)
	}

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	httpSrv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(server.Config{
			StaticDir: webDir,
			Store:     st,
			Engine:    a,
			Plugins:   a.PluginManager(),
			Debug:     dumps,
		}),
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if cfg.Tray {
		runTray(ctx, stop, a, "http://"+cfg.Addr)
	} else {
		<-ctx.Done()
	}

	a.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

func newSource(cfg *config.Config) (sensor.Source, error) {
	switch cfg.Source {
	case config.SourceLeap:
		leap := sensor.DefaultLeapConfig()
		leap.URL = cfg.LeapURL
		return sensor.NewLeapSource(leap), nil
	case config.SourceCamera:
		det, err := capture.NewLandmarkService(cfg.Service)
		if err != nil {
			return nil, err
		}
		return capture.NewSource(capture.NewCamera(cfg.Camera), det, cfg.Camera.FPS), nil
	}
	return nil, nil
}

// runTray blocks on the tray until Quit is chosen or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, settingsURL string) {
	tr := tray.New()
	tr.SetDebugDump(a.DisplayOptions().DisplayDebugDump)

	tr.OnToggle(a.SetEnabled)
	tr.OnDebugDump(func(on bool) {
		opts := a.DisplayOptions()
		opts.DisplayDebugDump = on
		if err := a.SetDisplayOptions(opts); err != nil {
			log.Printf("Failed to save display options: %v", err)
		}
	})
	tr.OnSettings(func() {
		if err := openBrowser(settingsURL); err != nil {
			log.Printf("Failed to open settings: %v", err)
		}
	})
	tr.OnQuit(stop)

	a.OnChange(func(changes []input.Change, indicator string) {
		tr.SetIndicator(indicator)
		for _, c := range changes {
			if c.Pressed {
				tr.SetLastPressed(string(c.Button))
			}
		}
	})

	go func() {
		<-ctx.Done()
		tr.Quit()
	}()

	tr.Run()
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
