package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/chimesim/internal/logging"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

// Processor plays a decaying chime tone for every strike. Strike may be
// called from the frame loop; ProcessAudio runs on the portaudio thread.
type Processor struct {
	Stream *portaudio.Stream

	mu      sync.Mutex
	pending []Voice

	synth  *Synth
	volume float64

	// Output levels of the last block, for meters.
	levelMu         sync.Mutex
	Bass, Mid, High float64
	complexBuffer   []complex128

	log    *logging.Logger
	Active bool
}

func NewProcessor(tubes int, volume float64, log *logging.Logger) *Processor {
	return &Processor{
		synth:         NewSynth(tubes, SampleRate),
		volume:        volume,
		complexBuffer: make([]complex128, BufferSize),
		log:           log.Named("audio"),
	}
}

// Start opens the default output device. On failure the processor stays
// inactive and Strike is a no-op.
func (a *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		a.log.Warn("audio unavailable", logging.Error(err))
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.ProcessAudio)
	if err != nil {
		a.log.Warn("audio stream open failed", logging.Error(err))
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		a.log.Warn("audio stream start failed", logging.Error(err))
		stream.Close()
		portaudio.Terminate()
		return err
	}

	a.log.Info("audio started", logging.Int("sample_rate", SampleRate))
	a.Stream = stream
	a.Active = true
	return nil
}

func (a *Processor) Stop() {
	if !a.Active {
		return
	}
	if a.Stream != nil {
		a.Stream.Stop()
		a.Stream.Close()
	}
	portaudio.Terminate()
	a.Active = false
}

// Strike queues a tone for tube at a loudness derived from the impact speed.
func (a *Processor) Strike(tube int, speed float64) {
	if !a.Active {
		return
	}
	v := a.synth.Voice(tube, speed)
	a.mu.Lock()
	a.pending = append(a.pending, v)
	a.mu.Unlock()
}

// Levels returns smoothed band levels of the last output block in [0, 1].
func (a *Processor) Levels() (bass, mid, high float64) {
	a.levelMu.Lock()
	defer a.levelMu.Unlock()
	return a.Bass, a.Mid, a.High
}

func (a *Processor) ProcessAudio(out [][]float32) {
	a.mu.Lock()
	for _, v := range a.pending {
		a.synth.Add(v)
	}
	a.pending = a.pending[:0]
	a.mu.Unlock()

	a.synth.Render(out[0], out[1], a.volume)
	a.analyze(out[0])
}

func (a *Processor) analyze(block []float32) {
	n := min(len(block), len(a.complexBuffer))
	for i := 0; i < len(a.complexBuffer); i++ {
		v := 0.0
		if i < n {
			window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(BufferSize-1)))
			v = float64(block[i]) * window
		}
		a.complexBuffer[i] = complex(v, 0)
	}
	spectrum := fft.FFT(a.complexBuffer)

	bassSum, midSum, highSum := 0.0, 0.0, 0.0
	for i := 0; i < BufferSize/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		switch {
		case i < 12:
			bassSum += mag
		case i < 70:
			midSum += mag
		default:
			highSum += mag
		}
	}

	a.levelMu.Lock()
	a.Bass = a.Bass*0.9 + math.Min(bassSum/50, 1)*0.1
	a.Mid = a.Mid*0.9 + math.Min(midSum/100, 1)*0.1
	a.High = a.High*0.9 + math.Min(highSum/200, 1)*0.1
	a.levelMu.Unlock()
}
