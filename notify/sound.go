package notify

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chimeFreq     = 880
	chimeDuration = 250 * time.Millisecond
	bufferSize    = 10
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(
			sampleRate,
			sampleRate.N(time.Duration(int(time.Second)/bufferSize)),
		)
	})

	return speakerErr
}

// playChime plays two short sine tones and waits for them to finish.
func playChime() error {
	if err := initSpeaker(); err != nil {
		return err
	}

	high, err := generators.SineTone(sampleRate, chimeFreq)
	if err != nil {
		return err
	}

	low, err := generators.SineTone(sampleRate, chimeFreq*3/4)
	if err != nil {
		return err
	}

	quiet := func(s beep.Streamer) beep.Streamer {
		return &effects.Volume{Streamer: s, Base: 2, Volume: -2}
	}

	done := make(chan struct{})

	speaker.Play(beep.Seq(
		quiet(beep.Take(sampleRate.N(chimeDuration), high)),
		beep.Silence(sampleRate.N(chimeDuration/2)),
		quiet(beep.Take(sampleRate.N(chimeDuration), low)),
		beep.Callback(func() {
			close(done)
		}),
	))

	<-done

	return nil
}
