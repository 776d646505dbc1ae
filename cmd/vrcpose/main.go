package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ayusman/vrcpose/internal/app"
	"github.com/ayusman/vrcpose/internal/config"
	"github.com/ayusman/vrcpose/internal/osc"
	"github.com/ayusman/vrcpose/internal/server"
	"github.com/ayusman/vrcpose/internal/server/api"
	"github.com/ayusman/vrcpose/internal/source"
	"github.com/ayusman/vrcpose/internal/store"
	"github.com/ayusman/vrcpose/internal/tracker"
	"github.com/ayusman/vrcpose/internal/tray"
)

func main() {
	log.SetPrefix("[vrcpose] ")
	log.SetFlags(log.LstdFlags)

	fs := pflag.NewFlagSet("vrcpose", pflag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// No frame is processed without a working destination
	emitter, err := osc.NewUDPEmitter(cfg.OSC.Host, cfg.OSC.Port)
	if err != nil {
		log.Fatalf("Failed to create OSC client: %v", err)
	}
	log.Printf("Sending avatar parameters to %s", emitter.Destination())

	tuning, err := cfg.Pipeline.Tuning()
	if err != nil {
		log.Fatalf("Invalid pipeline tuning: %v", err)
	}
	tcfg := tracker.DefaultConfig()
	tcfg.DetectionThreshold = cfg.Pipeline.DetectionThreshold
	tcfg.Tuning = tuning
	tcfg.LogInterval = cfg.Pipeline.LogInterval
	tcfg.ValueChangeThreshold = cfg.Pipeline.ValueChangeThreshold
	trk := tracker.New(emitter, tcfg)

	a := app.New(app.Config{TargetFPS: cfg.Pipeline.TargetFPS}, trk, emitter)

	// Profiles are optional; tracking runs without the store
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		log.Printf("Profiles unavailable: %v", err)
		st = nil
	} else {
		defer st.Close()
		restore(st, cfg.Store.Profile, a)
	}

	src, err := openSource(cfg)
	if err != nil {
		log.Fatalf("Failed to open frame source: %v", err)
	}
	if src != nil {
		a.SetSource(src)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	var httpSrv *http.Server
	if cfg.Server.Addr != "" {
		webDir := cfg.Server.StaticDir
		if webDir == "" {
			webDir = findWebDir()
		}
		if webDir != "" {
			log.Printf("Serving static files from: %s", webDir)
		}

		srv := server.New(server.Config{
			StaticDir: webDir,
			App:       a,
			Store:     st,
		})
		httpSrv = srv.HTTPServer(cfg.Server.Addr)

		go func() {
			log.Printf("Starting server on %s", cfg.Server.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Server failed: %v", err)
				stop()
			}
		}()
	}

	if cfg.Tray.Enabled {
		runTray(ctx, stop, a, st, cfg.Server.Addr)
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
		cancel()
	}
	a.Stop()

	stats := trk.Stats()
	log.Printf("Processed %d frames, sent %d messages, %d failed", stats.Frames, stats.Sent, stats.Failed)
}

// restore applies the startup profile and the last tracking state.
func restore(st *store.Store, profileName string, a *app.App) {
	var profile *store.Profile
	var err error

	if profileName != "" {
		profile, err = st.Profiles().GetByName(profileName)
		if err != nil {
			log.Fatalf("Failed to load profile %q: %v", profileName, err)
		}
		if err := st.Settings().Set(store.SettingActiveProfile, profile.ID); err != nil {
			log.Printf("Failed to record active profile: %v", err)
		}
	} else if id, err := st.Settings().Get(store.SettingActiveProfile); err == nil {
		profile, err = st.Profiles().GetByID(id)
		if err != nil {
			log.Printf("Active profile %s unavailable: %v", id, err)
		}
	}

	if profile != nil {
		api.Apply(a.Tracker(), profile)
		log.Printf("Applied profile %q", profile.Name)
	}

	if v, err := st.Settings().Get(store.SettingTrackingEnabled); err == nil {
		if enabled, err := strconv.ParseBool(v); err == nil {
			a.SetEnabled(enabled)
		}
	}
}

// openSource builds the configured frame source. The websocket source has no
// producer of its own: frames arrive through the HTTP server.
func openSource(cfg config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceReplay:
		return source.NewReplay(cfg.Source.Path, source.ReplayOptions{
			Loop:     cfg.Source.Loop,
			Interval: time.Second / time.Duration(cfg.Pipeline.TargetFPS),
		})
	case config.SourceCommand:
		fields := strings.Fields(cfg.Source.Command)
		return source.NewCommand(fields[0], fields[1:]...)
	case config.SourceWebSocket:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// runTray blocks on the system tray until it quits or ctx is done.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, st *store.Store, addr string) {
	t := tray.New(a.IsEnabled())
	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		if st != nil {
			if err := st.Settings().Set(store.SettingTrackingEnabled, strconv.FormatBool(enabled)); err != nil {
				log.Printf("Failed to persist tracking state: %v", err)
			}
		}
	})
	t.OnSettings(func() {
		if addr != "" {
			log.Printf("Settings available at http://localhost%s", addr)
		}
	})
	t.OnQuit(stop)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				s := a.Stats()
				t.SetEnabled(s.Enabled)
				t.SetStatus(s.Frames, s.Sent, s.Failed)
			}
		}
	}()

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.vrcpose/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".vrcpose", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
