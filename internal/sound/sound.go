// Package sound emits the widget's notification tones as WAV bytes.
// The tones are synthesized, not shipped as assets: a two-note chime for
// the first open and a short pop for each sent message.
package sound

import (
	"encoding/binary"
	"math"
)

const (
	sampleRate = 44100
	bitDepth   = 16
)

// WelcomeTone renders the 0.6s welcome chime: C5 and E5 sines under a
// shared decay envelope, the E at 70% level, mixed down to 30% volume.
func WelcomeTone() []byte {
	const duration = 0.6
	return render(duration, func(t float64) float64 {
		envelope := math.Exp(-3 * t)
		tone1 := math.Sin(2*math.Pi*523.25*t) * envelope
		tone2 := math.Sin(2*math.Pi*659.25*t) * envelope * 0.7
		return (tone1 + tone2) * 0.3
	})
}

// MessageTone renders the 0.15s send pop: a sine sweeping down from
// 1200Hz to 800Hz with a fast decay.
func MessageTone() []byte {
	const duration = 0.15
	return render(duration, func(t float64) float64 {
		envelope := math.Exp(-25 * t)
		frequency := 800 + 400*(1-t/duration)
		return math.Sin(2*math.Pi*frequency*t) * envelope * 0.3
	})
}

// render samples the waveform and wraps it in a 44-byte RIFF header:
// 16-bit PCM, mono.
func render(duration float64, sample func(t float64) float64) []byte {
	numSamples := int(duration * sampleRate)
	dataLen := numSamples * bitDepth / 8

	buf := make([]byte, 44+dataLen)
	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+dataLen))
	copy(buf[8:], "WAVE")
	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16) // format chunk size
	binary.LittleEndian.PutUint16(buf[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:], 1)  // mono
	binary.LittleEndian.PutUint32(buf[24:], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:], sampleRate*bitDepth/8)
	binary.LittleEndian.PutUint16(buf[32:], bitDepth/8)
	binary.LittleEndian.PutUint16(buf[34:], bitDepth)
	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(dataLen))

	for i := 0; i < numSamples; i++ {
		t := float64(i) / sampleRate
		s := sample(t)
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7fff)
		}
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(v))
	}
	return buf
}
