// Package utils provides signal generators and helpers shared by tests.
package utils

import "math"

// GenerateSineWave returns size samples of a pure tone in [-0.9, 0.9].
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * 0.9
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental with two harmonics.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
	}
	return buffer
}

// GenerateClickTrack returns seconds of audio with short noise bursts spaced
// at the given tempo. Each click is a 5ms decaying 1kHz burst.
func GenerateClickTrack(bpm, seconds, sampleRate float64) []float64 {
	size := int(seconds * sampleRate)
	buffer := make([]float64, size)

	clickSpacing := int(60.0 / bpm * sampleRate)
	clickLen := int(0.005 * sampleRate)
	for start := 0; start < size; start += clickSpacing {
		for i := 0; i < clickLen && start+i < size; i++ {
			decay := 1.0 - float64(i)/float64(clickLen)
			buffer[start+i] = math.Sin(2*math.Pi*1000*float64(i)/sampleRate) * decay
		}
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}
