package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/hsbposter/internal/app"
	"github.com/rook-computer/hsbposter/internal/app/screens"
	"github.com/rook-computer/hsbposter/internal/config"
	"github.com/rook-computer/hsbposter/internal/render"
	"github.com/rook-computer/hsbposter/internal/state"
	"github.com/rook-computer/hsbposter/internal/web"
)

const envStdioLog = "HSBPOSTER_STDIO_LOG"

const defaultListenAddr = ":8080"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("hsbposter", flag.ContinueOnError)
	configPath := flags.String("config", "", "poster document (yaml); built-in poster when empty")
	outPath := flags.String("out", "", "write the poster as PNG to this path and exit")
	useFB := flags.Bool("fb", false, "show the poster on the linux framebuffer until F4/Esc or SIGTERM")
	fbDevice := flags.String("fb-device", "/dev/fb0", "framebuffer device used with -fb")
	serve := flags.Bool("serve", false, "run the preview server")
	listenAddr := flags.String("listen", "", "preview server listen address (default "+defaultListenAddr+"); also configurable via "+web.EnvListenAddr)
	devMode := flags.Bool("dev", false, "permissive CORS on the preview server; also configurable via "+web.EnvDevMode)
	debug := flags.Bool("debug", false, "enable debug logging to ./hsbposter-debug.log")
	stdioLog := flags.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// Best-effort: keep crash output when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./hsbposter-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	poster := config.Default()
	if *configPath != "" {
		var err error
		poster, err = config.Load(*configPath)
		if err != nil {
			fmt.Println("config error:", err)
			return 2
		}
	}
	width, height := poster.Canvas.Width, poster.Canvas.Height

	store := state.NewStore(poster.Params())
	screen := screens.NewPosterScreen(logger)

	if *outPath != "" {
		a := app.New(store, &render.NoopRenderer{}, &web.NoopServer{})
		a.Screen = screen
		a.Logger = logger
		if err := a.RenderToFile(*outPath, width, height); err != nil {
			fmt.Println("render error:", err)
			return 1
		}
		fmt.Println("poster written to", *outPath)
		if !*useFB && !*serve {
			return 0
		}
	}

	if !*useFB && !*serve {
		fmt.Println("nothing to do: pass -out, -fb or -serve")
		flags.Usage()
		return 2
	}

	var renderer render.Renderer = &render.NoopRenderer{}
	if *useFB {
		fb := render.NewFBRenderer()
		fb.Device = *fbDevice
		fb.Width, fb.Height = width, height
		renderer = fb
	}

	var server web.Server = &web.NoopServer{}
	if *serve {
		serverCfg, err := previewServerConfig(flags, *listenAddr, *devMode)
		if err != nil {
			fmt.Println("server config error:", err)
			return 2
		}
		server = web.NewHTTPServer(
			serverCfg,
			web.Deps{Store: store, Screen: screen, Width: width, Height: height, Logger: logger},
		)
		fmt.Println("preview server on", serverCfg.ListenAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(store, renderer, server)
	a.Screen = screen
	a.Logger = logger
	err := a.Start(ctx)
	_ = a.Stop()
	if err != nil && ctx.Err() == nil {
		fmt.Println("app error:", err)
		return 1
	}
	return 0
}

// previewServerConfig reads the environment defaults; -listen and -dev win
// when given on the command line.
func previewServerConfig(flags *flag.FlagSet, listenAddr string, devMode bool) (web.ServerConfig, error) {
	cfg, err := web.DefaultServerConfigFromEnv(defaultListenAddr)
	if err != nil {
		return cfg, err
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddr = listenAddr
		case "dev":
			cfg.DevMode = devMode
		}
	})
	return cfg, nil
}
