package gui

import (
	"fmt"
	"math"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/chimesim/internal/audio"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/config"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/physics"
	"github.com/san-kum/chimesim/internal/scene"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	// longest frame fed to the world, so a stalled window does not explode it
	maxFrameTime = 0.1
)

var (
	ColBg      = colorOf(scene.Sky)
	ColText    = rl.NewColor(40, 40, 40, 255)
	ColTextDim = rl.NewColor(90, 90, 90, 255)
	ColAccent  = rl.NewColor(200, 40, 40, 255)
)

// debugToggles are the overlay flags offered in the side panel.
var debugToggles = []struct {
	label string
	mode  physics.DebugMode
}{
	{"wireframe", physics.DrawWireframe},
	{"aabb", physics.DrawAabb},
	{"contacts", physics.DrawContactPoints},
	{"constraints", physics.DrawConstraints},
	{"normals", physics.DrawNormals},
}

type App struct {
	Chime  *chime.Windchime
	Camera rl.Camera3D
	Orbit  Orbit
	Audio  *audio.Processor

	cfg     *config.Config
	log     *logging.Logger
	rng     *rand.Rand
	models  map[*scene.Mesh]rl.Model
	paused  bool
	panel   bool
	flash   map[int]float64
	energy  []float64
	width   int32
	height  int32
	lastErr error
}

func initWindow() {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(windowWidth, windowHeight, "chimesim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(ColText))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 14)
}

// NewApp builds the chime and the GPU models for its meshes. The window
// must already be open.
func NewApp(cfg *config.Config, log *logging.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    log.Named("gui"),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		Orbit:  DefaultOrbit(),
		flash:  make(map[int]float64),
		panel:  true,
		width:  windowWidth,
		height: windowHeight,
	}
	a.Camera = rl.NewCamera3D(
		a.Orbit.Position(),
		a.Orbit.Target,
		rl.NewVector3(0, 1, 0),
		60.0,
		rl.CameraPerspective,
	)

	if cfg.Audio.Enabled {
		a.Audio = audio.NewProcessor(cfg.Scene.TubeCount, cfg.Audio.Volume, log)
		if err := a.Audio.Start(); err != nil {
			a.lastErr = err
		}
	}

	if err := a.load(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// load (re)builds the chime from cfg and uploads its meshes.
func (a *App) load() error {
	opts := chime.OptionsFromConfig(a.cfg)
	opts.Logger = a.log
	opts.Debug = true

	w, err := chime.Build(opts)
	if err != nil {
		return err
	}
	if a.Chime != nil {
		a.unloadModels()
	}
	a.Chime = w
	a.models = loadModels(w.Group)
	a.energy = a.energy[:0]
	clear(a.flash)

	w.OnStrike(func(s chime.Strike) {
		a.flash[s.Tube] = s.Time
		if a.Audio != nil {
			a.Audio.Strike(s.Tube, s.Speed)
		}
	})
	return nil
}

func (a *App) unloadModels() {
	for _, m := range a.models {
		rl.UnloadModel(m)
	}
	a.models = nil
}

func (a *App) Close() {
	a.unloadModels()
	if a.Audio != nil {
		a.Audio.Stop()
	}
}

// Run opens the window and blocks until it is closed.
func Run(cfg *config.Config, log *logging.Logger) error {
	initWindow()
	defer rl.CloseWindow()

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	app.log.Info("window up",
		logging.Int("tubes", len(app.Chime.Tubes)),
		logging.Bool("audio", app.Audio != nil && app.Audio.Active),
	)
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsWindowResized() {
		a.width = int32(rl.GetScreenWidth())
		a.height = int32(rl.GetScreenHeight())
		a.log.Debug("resize", logging.Int("width", int(a.width)), logging.Int("height", int(a.height)))
	}

	if rl.IsKeyReleased(rl.KeySpace) {
		imp := a.Chime.Impulse(a.rng)
		a.log.Debug("impulse", logging.Any("impulse", imp))
	}
	if rl.IsKeyPressed(rl.KeyP) {
		a.paused = !a.paused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.panel = !a.panel
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.load(); err != nil {
			a.lastErr = err
			a.log.Error("reset failed", logging.Error(err))
		}
	}

	a.updateCamera()

	if a.paused {
		return
	}
	dt := math.Min(float64(rl.GetFrameTime()), maxFrameTime)
	a.Chime.Sync(dt)

	a.energy = append(a.energy, a.Chime.KineticEnergy())
	if len(a.energy) > 200 {
		a.energy = a.energy[1:]
	}
}

// updateCamera orbits on left drag and zooms on the wheel. Drags that start
// over the panel are left to raygui.
func (a *App) updateCamera() {
	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonDown(rl.MouseLeftButton) && !(a.panel && rl.CheckCollisionPointRec(mouse, a.panelBounds())) {
		d := rl.GetMouseDelta()
		a.Orbit.Rotate(float64(d.X)*0.005, float64(d.Y)*0.005)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Orbit.Zoom(float64(wheel))
	}
	a.Camera.Position = a.Orbit.Position()
	a.Camera.Target = a.Orbit.Target
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	a.drawScene()
	rl.EndMode3D()

	a.DrawHUD()
	if a.panel {
		a.drawPanel()
	}
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	w := a.Chime
	rl.DrawFPS(a.width-100, 10)
	rl.DrawText("chimesim", 20, 20, 24, ColText)

	status := fmt.Sprintf("t=%.1fs  strikes=%d  pushes=%d", w.Time(), w.Strikes(), w.Impulses())
	if a.paused {
		status += "  PAUSED"
	}
	rl.DrawText(status, 20, 50, 16, ColTextDim)

	a.drawEnergy(20, a.height-110, 300, 50)

	if a.Audio == nil || !a.Audio.Active {
		rl.DrawText("AUDIO [OFF]", 20, a.height-50, 14, ColTextDim)
	} else {
		bass, mid, high := a.Audio.Levels()
		bars := min(int((bass+mid+high)/3*20), 20)
		rl.DrawText(fmt.Sprintf("AUDIO [%-20s]", repeat('|', bars)), 20, a.height-50, 14, ColText)
	}
	if a.lastErr != nil {
		rl.DrawText(a.lastErr.Error(), 20, 76, 14, ColAccent)
	}

	rl.DrawText("[SPACE] PUSH  [P] PAUSE  [R] RESET  [TAB] PANEL  [Q] QUIT", a.width-520, a.height-30, 14, ColTextDim)
}

func (a *App) drawEnergy(x, y, width, height int32) {
	if len(a.energy) < 2 {
		return
	}
	hi := a.energy[0]
	for _, v := range a.energy {
		hi = math.Max(hi, v)
	}
	if hi == 0 {
		hi = 1
	}
	points := make([]rl.Vector2, len(a.energy))
	for i, v := range a.energy {
		px := float32(x) + float32(i)/float32(len(a.energy))*float32(width)
		py := float32(y+height) - float32(v/hi)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColText)
	rl.DrawText(fmt.Sprintf("KE %.2f J", a.energy[len(a.energy)-1]), x+width+10, y+height-10, 14, ColText)
}

func (a *App) panelBounds() rl.Rectangle {
	return rl.NewRectangle(float32(a.width-180), 40, 160, float32(30+24*len(debugToggles)))
}

// drawPanel renders the overlay toggles. Each checkbox flips one bit of the
// drawer's debug mode.
func (a *App) drawPanel() {
	d := a.Chime.Debug
	b := a.panelBounds()
	rl.DrawRectangleRec(b, rl.Fade(rl.RayWhite, 0.85))
	rl.DrawRectangleLinesEx(b, 1, ColTextDim)
	rl.DrawText("debug overlay", int32(b.X)+10, int32(b.Y)+8, 14, ColText)

	mode := d.DebugMode()
	for i, t := range debugToggles {
		r := rl.NewRectangle(b.X+10, b.Y+30+float32(i)*24, 16, 16)
		on := mode&t.mode != 0
		if gui.CheckBox(r, t.label, on) != on {
			d.Toggle(t.mode)
			a.log.Debug("debug mode", logging.Any("flags", d.DebugMode().Names()))
		}
	}
}

func repeat(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}
