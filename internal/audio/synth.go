package audio

import "math"

// Partial ratios of a free-free tube; the overtones are inharmonic.
var partials = [...]struct{ ratio, gain, decay float64 }{
	{1, 1, 1},
	{2.756, 0.5, 1.8},
	{5.404, 0.25, 3},
}

// Pentatonic scale from C5, one note per tube, wrapping by octave.
var scale = [...]float64{523.25, 587.33, 659.25, 783.99, 880.00}

const (
	baseDecay   = 1.6
	maxVoices   = 32
	delaySecs   = 0.35
	feedback    = 0.35
	silence     = 1e-4
	speedGain   = 0.6
	maxLoudness = 1.0
)

// Voice is one ringing tube.
type Voice struct {
	Freq, Amp, Pan float64
	t              float64
}

// Synth mixes voices into a stereo buffer with a short ping-pong delay.
type Synth struct {
	tubes      int
	sampleRate float64
	voices     []Voice
	delay      [2][]float64
	head       int
}

func NewSynth(tubes, sampleRate int) *Synth {
	n := int(float64(sampleRate) * delaySecs)
	return &Synth{
		tubes:      max(tubes, 1),
		sampleRate: float64(sampleRate),
		delay:      [2][]float64{make([]float64, n), make([]float64, n)},
	}
}

// Frequency is the fundamental of a tube.
func (s *Synth) Frequency(tube int) float64 {
	octave := tube / len(scale)
	return scale[tube%len(scale)] * math.Pow(2, float64(octave))
}

// Voice builds the tone for a strike. Tubes are panned by their place on
// the ring.
func (s *Synth) Voice(tube int, speed float64) Voice {
	angle := 2 * math.Pi * float64(tube+1) / float64(s.tubes)
	return Voice{
		Freq: s.Frequency(tube),
		Amp:  math.Min(speed*speedGain, maxLoudness),
		Pan:  0.5 + 0.4*math.Cos(angle),
	}
}

func (s *Synth) Add(v Voice) {
	if v.Amp <= 0 {
		return
	}
	if len(s.voices) >= maxVoices {
		s.voices = s.voices[1:]
	}
	s.voices = append(s.voices, v)
}

func (s *Synth) Voices() int { return len(s.voices) }

// Render fills left and right and drops voices that have faded out.
func (s *Synth) Render(left, right []float32, volume float64) {
	dt := 1 / s.sampleRate
	for i := range left {
		l, r := 0.0, 0.0
		for k := range s.voices {
			v := &s.voices[k]
			x := 0.0
			for _, p := range partials {
				env := math.Exp(-v.t * baseDecay * p.decay)
				x += p.gain * env * math.Sin(2*math.Pi*v.Freq*p.ratio*v.t)
			}
			x *= v.Amp
			l += x * (1 - v.Pan)
			r += x * v.Pan
			v.t += dt
		}

		dl, dr := s.delay[0][s.head], s.delay[1][s.head]
		l, r = l+dr*feedback, r+dl*feedback
		s.delay[0][s.head], s.delay[1][s.head] = l, r
		s.head = (s.head + 1) % len(s.delay[0])

		left[i] = float32(math.Tanh(l * volume))
		if i < len(right) {
			right[i] = float32(math.Tanh(r * volume))
		}
	}

	live := s.voices[:0]
	for _, v := range s.voices {
		if v.Amp*math.Exp(-v.t*baseDecay) > silence {
			live = append(live, v)
		}
	}
	s.voices = live
}
