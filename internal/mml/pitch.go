package mml

var noteOffsets = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

var pitchClassNames = [12]string{"c", "c+", "d", "d+", "e", "f", "f+", "g", "g+", "a", "a+", "b"}

// PitchNumber maps a pitch name such as "f+" at the given octave to the
// engine's n-number (octave*12 + pitch class). The accidental may push the
// class outside 0..11; the number stays consistent with the octave anyway.
func PitchNumber(pitch string, octave int) (int, bool) {
	if pitch == "" {
		return 0, false
	}
	base, ok := noteOffsets[lower(pitch[0])]
	if !ok {
		return 0, false
	}
	if len(pitch) > 1 {
		switch pitch[1] {
		case '+', '#':
			base++
		case '-':
			base--
		}
	}
	return octave*12 + base, true
}

// PitchName splits an n-number into a natural-or-sharp name and an octave.
func PitchName(n int) (string, int) {
	if n < 0 {
		return pitchClassNames[0], 0
	}
	return pitchClassNames[n%12], n / 12
}
