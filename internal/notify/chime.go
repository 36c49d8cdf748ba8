package notify

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"

	"tomatick/internal/core/session"
)

const chimeSampleRate = beep.SampleRate(44100)

// Work ends rising, breaks end falling.
var (
	focusDoneNotes = []float64{523.25, 659.25, 783.99}
	breakDoneNotes = []float64{783.99, 659.25, 523.25}
)

// Chime plays short synthesized tones on the default audio device.
type Chime struct {
	mu      sync.Mutex
	buffers map[bool]*beep.Buffer
}

// NewChime initializes the speaker and renders the tones once.
func NewChime() (*Chime, error) {
	if err := speaker.Init(chimeSampleRate, chimeSampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("initialize speaker: %w", err)
	}

	focusDone, err := renderNotes(focusDoneNotes)
	if err != nil {
		return nil, err
	}
	breakDone, err := renderNotes(breakDoneNotes)
	if err != nil {
		return nil, err
	}
	return &Chime{buffers: map[bool]*beep.Buffer{true: focusDone, false: breakDone}}, nil
}

// Play sounds the tone for the finished session type at volume 0-100.
func (chime *Chime) Play(finished session.Type, volume int) {
	if volume <= 0 {
		return
	}
	buffer := chime.buffers[finished == session.TypeWork]

	chime.mu.Lock()
	defer chime.mu.Unlock()
	speaker.Play(&effects.Volume{
		Streamer: buffer.Streamer(0, buffer.Len()),
		Base:     2,
		Volume:   volumeExponent(volume),
	})
	log.Debug().Str("sessionType", string(finished)).Int("volume", volume).Msg("Chime played")
}

// volumeExponent maps a 0-100 volume to a base-2 gain exponent.
func volumeExponent(volume int) float64 {
	volume = min(volume, 100)
	return math.Log2(float64(volume) / 100)
}

func renderNotes(notes []float64) (*beep.Buffer, error) {
	format := beep.Format{SampleRate: chimeSampleRate, NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)

	noteLength := chimeSampleRate.N(180 * time.Millisecond)
	gap := chimeSampleRate.N(40 * time.Millisecond)
	parts := make([]beep.Streamer, 0, len(notes)*2)
	for _, frequency := range notes {
		tone, err := generators.SineTone(chimeSampleRate, frequency)
		if err != nil {
			return nil, fmt.Errorf("render tone %.2fHz: %w", frequency, err)
		}
		parts = append(parts,
			&effects.Volume{Streamer: beep.Take(noteLength, tone), Base: 2, Volume: -1},
			beep.Silence(gap),
		)
	}
	buffer.Append(beep.Seq(parts...))
	return buffer, nil
}
