package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// Playback sample rate
const SampleRate = beep.SampleRate(44100)

// Options controls audio playback
type Options struct {
	// Enabled opens the output device; when false the player runs silent
	// and all operations become no-ops on the device
	Enabled bool `toml:"enabled"`

	// Music toggles background music playback
	Music bool `toml:"music"`

	// SFX toggles sound effect playback
	SFX bool `toml:"sfx"`
}

// DefaultOptions enables everything
func DefaultOptions() Options {
	return Options{Enabled: true, Music: true, SFX: true}
}

// Player holds named music and sound effect buffers and plays them through
// the speaker. Sound effects are queued with MarkSFX during a tick and
// flushed once per frame with PlayMarkedSFX.
type Player struct {
	mu sync.Mutex

	music map[string]*beep.Buffer
	sfx   map[string]*beep.Buffer

	marked map[string]struct{}

	musicCtrl *beep.Ctrl

	device       bool
	musicEnabled bool
	sfxEnabled   bool
}

// NewPlayer creates a player, opening the output device when enabled
func NewPlayer(opts Options) (*Player, error) {
	p := &Player{
		music:        make(map[string]*beep.Buffer),
		sfx:          make(map[string]*beep.Buffer),
		marked:       make(map[string]struct{}),
		musicEnabled: opts.Music,
		sfxEnabled:   opts.SFX,
	}

	if opts.Enabled {
		if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
			return nil, fmt.Errorf("open audio device: %w", err)
		}
		p.device = true
	}

	return p, nil
}

// Close releases the output device
func (p *Player) Close() {
	if p.device {
		speaker.Close()
	}
}

// SetMusicEnabled toggles music playback
func (p *Player) SetMusicEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.musicEnabled = enabled
}

// SetSFXEnabled toggles sound effect playback
func (p *Player) SetSFXEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sfxEnabled = enabled
}

// RegisterMusic buffers a finite streamer as loopable music
func (p *Player) RegisterMusic(name string, format beep.Format, s beep.Streamer) {
	buf := beep.NewBuffer(format)
	buf.Append(s)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.music[name] = buf
}

// RegisterSFX buffers a finite streamer as a replayable sound effect
func (p *Player) RegisterSFX(name string, format beep.Format, s beep.Streamer) {
	buf := beep.NewBuffer(format)
	buf.Append(s)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sfx[name] = buf
}

// LoadMusicWAV decodes and registers WAV music
func (p *Player) LoadMusicWAV(name string, r io.Reader) error {
	s, format, err := wav.Decode(r)
	if err != nil {
		return fmt.Errorf("decode music %q: %w", name, err)
	}
	p.RegisterMusic(name, format, s)
	return nil
}

// LoadSFXWAV decodes and registers a WAV sound effect
func (p *Player) LoadSFXWAV(name string, r io.Reader) error {
	s, format, err := wav.Decode(r)
	if err != nil {
		return fmt.Errorf("decode sfx %q: %w", name, err)
	}
	p.RegisterSFX(name, format, s)
	return nil
}

// PlayMusic halts any current music and plays the named track in a loop
func (p *Player) PlayMusic(name string) error {
	p.mu.Lock()
	buf, ok := p.music[name]
	enabled := p.musicEnabled
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("no such music %q", name)
	}
	if !enabled || !p.device {
		return nil
	}

	p.Halt()

	streamer := beep.Loop(-1, buf.Streamer(0, buf.Len()))
	ctrl := &beep.Ctrl{Streamer: p.resampled(buf.Format(), streamer)}

	p.mu.Lock()
	p.musicCtrl = ctrl
	p.mu.Unlock()

	speaker.Play(ctrl)
	return nil
}

// Halt stops the current music
func (p *Player) Halt() {
	p.mu.Lock()
	ctrl := p.musicCtrl
	p.musicCtrl = nil
	p.mu.Unlock()

	if ctrl == nil || !p.device {
		return
	}

	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}

// MarkSFX queues a sound effect for the next flush. Marking the same name
// twice in one frame plays it once.
func (p *Player) MarkSFX(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.sfxEnabled {
		return
	}
	p.marked[name] = struct{}{}
}

// PlayMarkedSFX plays every queued sound effect and resets the queue
func (p *Player) PlayMarkedSFX() {
	p.mu.Lock()
	if !p.sfxEnabled {
		p.mu.Unlock()
		return
	}
	marked := p.marked
	p.marked = make(map[string]struct{})

	toPlay := make([]beep.Streamer, 0, len(marked))
	for name := range marked {
		if buf, ok := p.sfx[name]; ok {
			toPlay = append(toPlay, p.resampled(buf.Format(), buf.Streamer(0, buf.Len())))
		}
	}
	p.mu.Unlock()

	if !p.device {
		return
	}
	for _, s := range toPlay {
		speaker.Play(s)
	}
}

// Marked returns the number of queued sound effects
func (p *Player) Marked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.marked)
}

// resampled adapts a streamer recorded at another rate to the device rate
func (p *Player) resampled(format beep.Format, s beep.Streamer) beep.Streamer {
	if format.SampleRate == SampleRate {
		return s
	}
	return beep.Resample(4, format.SampleRate, SampleRate, s)
}
