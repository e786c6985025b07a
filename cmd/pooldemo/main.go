// Command pooldemo is a small particle toy exercising the runtime: an
// entity pool drives the particles, the main loop paces the simulation, and
// the terminal platform supplies events and input.
package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"

	"github.com/lixenwraith/arcade-core/audio"
	"github.com/lixenwraith/arcade-core/config"
	"github.com/lixenwraith/arcade-core/event"
	"github.com/lixenwraith/arcade-core/input"
	"github.com/lixenwraith/arcade-core/loop"
	"github.com/lixenwraith/arcade-core/paths"
	"github.com/lixenwraith/arcade-core/platform"
	"github.com/lixenwraith/arcade-core/pool"
	"github.com/lixenwraith/arcade-core/rand"
)

const (
	particleCap = 512
	burstSize   = 24
	gravity     = 0.06
)

type particle struct {
	x, y   float32
	vx, vy float32
	life   int
	glyph  rune
}

type demo struct {
	term      *platform.Terminal
	particles *pool.Pool[particle]
	rng       *rand.Rand
	player    *audio.Player

	width, height int
}

func newDemo(term *platform.Terminal, player *audio.Player) *demo {
	w, h := term.Screen().Size()
	return &demo{
		term:      term,
		particles: pool.New(particleCap, func() particle { return particle{} }),
		rng:       rand.New(),
		player:    player,
		width:     w,
		height:    h,
	}
}

func (d *demo) Init() error {
	d.term.Screen().Clear()
	return nil
}

func (d *demo) HandleEvent(ev event.Event) (bool, error) {
	switch ev.Type {
	case event.Resize:
		d.width, d.height = ev.Width, ev.Height
		d.term.Screen().Sync()
	case event.Key:
		if ev.Key == event.KeyEscape || (ev.Key == event.KeyRune && ev.Rune == 'q') {
			return true, nil
		}
	}
	return false, nil
}

func (d *demo) Step(in *input.Snapshot) (loop.StepResult, error) {
	if in.RuneDown(' ') {
		d.burst(float32(d.width)/2, float32(d.height)/2)
	}
	if in.Buttons()&event.ButtonPrimary != 0 {
		x, y := in.Pointer()
		d.burst(float32(x), float32(y))
	}

	d.particles.Run(func(p *particle) pool.Removal {
		p.x += p.vx
		p.y += p.vy
		p.vy += gravity
		p.life--
		if p.life <= 0 || p.y >= float32(d.height) || p.x < 0 || p.x >= float32(d.width) {
			return pool.Remove
		}
		return pool.Keep
	})

	return loop.Slowdown(1), nil
}

// burst spawns a firework at the given position, recycling the oldest
// particles when the pool is saturated
func (d *demo) burst(x, y float32) {
	for i := 0; i < burstSize; i++ {
		p := d.particles.GetForce()
		p.x = x
		p.y = y
		p.vx = d.rng.NextFloatSigned(0.9)
		p.vy = d.rng.NextFloat(1.2) - 1.0
		p.life = 30 + int(d.rng.NextInt(40))
		p.glyph = []rune{'*', '+', '.', 'o'}[d.rng.NextInt(4)]
	}
	d.player.MarkSFX("burst")
}

func (d *demo) Draw() error {
	screen := d.term.Screen()
	screen.Clear()

	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for p := range d.particles.Iter() {
		screen.SetContent(int(p.x), int(p.y), p.glyph, nil, style)
	}
	screen.Show()

	d.player.PlayMarkedSFX()
	return nil
}

func (d *demo) Quit() error {
	d.player.Halt()
	return nil
}

func main() {
	p, err := paths.New(".")
	if err != nil {
		log.Fatal("path resolution failed", "err", err)
	}

	cfg, err := config.Load(p.ConfigFile("pooldemo.toml"))
	if err != nil {
		log.Fatal("config load failed", "err", err)
	}

	player, err := audio.NewPlayer(cfg.Audio)
	if err != nil {
		log.Warn("audio unavailable, running silent", "err", err)
		player, _ = audio.NewPlayer(audio.Options{})
	}
	defer player.Close()

	blip, err := generators.SineTone(audio.SampleRate, 880)
	if err != nil {
		log.Fatal("tone generation failed", "err", err)
	}
	format := beep.Format{SampleRate: audio.SampleRate, NumChannels: 2, Precision: 2}
	player.RegisterSFX("burst", format, beep.Take(audio.SampleRate.N(50*time.Millisecond), blip))

	term, err := platform.New()
	if err != nil {
		log.Fatal("terminal setup failed", "err", err)
	}
	term.Start()
	defer term.Stop()

	l := loop.New(term.Clock(), term, cfg.Loop)
	if err := l.Run(newDemo(term, player)); err != nil {
		term.Stop()
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}
