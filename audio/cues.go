package audio

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	hitFreq    = 880.0
	hitLength  = 50 * time.Millisecond
)

// Cues plays short collision blips through the default speaker.
// A nil *Cues is silent, so callers can hook it unconditionally and
// runs without a sound device stay functional.
type Cues struct {
	ready bool
}

// NewCues initializes the speaker with a 100ms buffer.
func NewCues() (*Cues, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Cues{ready: true}, nil
}

// Hit plays one wall-collision blip.
func (c *Cues) Hit() {
	if c == nil || !c.ready {
		return
	}
	sine, err := generators.SineTone(sampleRate, hitFreq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(hitLength), sine))
}

// Close idles the speaker.
func (c *Cues) Close() {
	if c == nil || !c.ready {
		return
	}
	c.ready = false
	speaker.Close()
}
