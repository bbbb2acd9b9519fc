package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/hsbposter/internal/app/screens"
	"github.com/rook-computer/hsbposter/internal/render"
	"github.com/rook-computer/hsbposter/internal/state"
	"github.com/rook-computer/hsbposter/internal/system"
	"github.com/rook-computer/hsbposter/internal/web"
)

type App struct {
	Store  *state.Store
	Render render.Renderer
	Web    web.Server
	Screen render.Screen
	Logger Logger

	currentScreen render.Screen

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, renderer render.Renderer, webServer web.Server) *App {
	return &App{
		Store:  store,
		Render: renderer,
		Web:    webServer,
		Screen: screens.NewPosterScreen(nil),
		Logger: NoopLogger{},
		exitCh: make(chan error, 1),
	}
}

// Exit requests the app to stop running.
// Any screen or input watcher can call this to end Start.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// RenderToFile draws the current poster into a PNG at path.
func (app *App) RenderToFile(path string, width, height int) (err error) {
	app.Store.SetPhase(state.RENDERING)
	defer func() {
		if err != nil {
			app.Store.SetPhase(state.ERROR)
			app.Logger.Errorf("app", "render %s failed: %v", path, err)
			return
		}
		app.Store.SetPhase(state.DONE)
		app.Logger.Infof("app", "poster written to %s (%dx%d)", path, width, height)
	}()

	screen, snap := app.posterScreen(), app.Store.Snapshot()
	return writeFile(path, func(w io.Writer) error {
		return render.RenderPNG(screen, snap, width, height, w)
	})
}

// writeFile creates path and fills it with write. A failed write leaves no
// file behind.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if err = write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (app *App) posterScreen() render.Screen {
	if app.Screen == nil {
		app.Screen = screens.NewPosterScreen(app.Logger)
	}
	if poster, ok := app.Screen.(*screens.PosterScreen); ok && poster.Logger == nil {
		poster.Logger = app.Logger
	}
	return app.Screen
}

// Start runs the interactive mode until ctx is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	app.Store.SetPhase(state.READY)

	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}
	if app.Render == nil {
		app.Render = &render.NoopRenderer{}
	}

	if err := app.Web.Start(ctx); err != nil {
		app.Logger.Errorf("web", "preview server start error: %v", err)
		return err
	}
	defer app.Web.Stop()

	fb, onConsole := app.Render.(*render.FBRenderer)
	if onConsole {
		fb.Logger = app.Logger
	}
	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	if onConsole {
		// Switch console to KD_GRAPHICS to suppress hardware cursor
		if err := system.SetGraphicsModeWithLog(app.Logger); err != nil {
			app.Logger.Errorf("tty", "set graphics mode failed: %v", err)
		}
		_ = system.HideCursorWithLog(app.Logger)
		defer func() { _ = system.ShowCursorWithLog(app.Logger); _ = system.RestoreTextModeWithLog(app.Logger) }()
	}

	if err := app.setScreen(ctx, app.posterScreen()); err != nil {
		return err
	}
	app.Render.RedrawWithState(app.Store.Snapshot())

	loopCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Render.RunLoop(loopCtx, app.Store)
	}()
	if onConsole {
		system.StartExitOnF4(loopCtx, app.Logger, func() { app.Exit(nil) })
	}

	err := app.wait(ctx)
	cancel()
	wg.Wait()
	return err
}

func (app *App) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-app.exitCh:
		return err
	}
}

func (app *App) setScreen(ctx context.Context, screen render.Screen) error {
	if app.currentScreen != nil {
		_ = app.currentScreen.Stop()
	}
	app.currentScreen = screen
	app.Render.SetScreen(screen)
	return screen.Start(ctx)
}

func (app *App) Stop() error {
	if app.currentScreen != nil {
		return app.currentScreen.Stop()
	}
	return nil
}
