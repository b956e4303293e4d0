// SPDX-License-Identifier: MIT
// Package analysis turns buffered audio into musical features: a smoothed
// tempo estimate and a per-second dominant pitch class. The low-level tempo
// and chroma estimation is delegated to oracle interfaces (see oracle.go);
// internal/dsp provides the in-repo implementation.
package analysis

import (
	"fmt"
	"strings"
)

// ChromaClass is one of the 12 pitch classes, octave-independent.
// The ordering is the comparison order used by pitch-range actions.
type ChromaClass int

const (
	ChromaC ChromaClass = iota
	ChromaCSharp
	ChromaD
	ChromaDSharp
	ChromaE
	ChromaF
	ChromaFSharp
	ChromaG
	ChromaGSharp
	ChromaA
	ChromaASharp
	ChromaB

	// NumChromaClasses is the number of pitch classes in an octave.
	NumChromaClasses = 12
)

var chromaNames = [NumChromaClasses]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// String returns the musical name of the pitch class.
func (c ChromaClass) String() string {
	if c < 0 || c >= NumChromaClasses {
		return fmt.Sprintf("ChromaClass(%d)", int(c))
	}
	return chromaNames[c]
}

// Valid reports whether c is one of the 12 pitch classes.
func (c ChromaClass) Valid() bool {
	return c >= 0 && c < NumChromaClasses
}

// ParseChromaClass converts a musical name ("C", "f#", "A#") to a ChromaClass.
func ParseChromaClass(name string) (ChromaClass, error) {
	needle := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range chromaNames {
		if n == needle {
			return ChromaClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown chroma class name: %q", name)
}
