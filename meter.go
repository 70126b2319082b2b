package jamsheet

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// Meter returns the SMF meta event announcing the time signature.
func (t TimeSignature) Meter() smf.Message {
	return smf.MetaMeter(uint8(t.Upper), uint8(t.Lower))
}

// TicksPerBar returns the length of one bar in MIDI ticks for the given
// resolution.
func (t TimeSignature) TicksPerBar(resolution smf.MetricTicks) uint32 {
	return resolution.Ticks4th() * 4 * uint32(t.Upper) / uint32(t.Lower)
}

// TicksPerBeat returns the length of one natural beat in MIDI ticks.
func (t TimeSignature) TicksPerBeat(resolution smf.MetricTicks) uint32 {
	return resolution.Ticks4th() * 4 / uint32(t.Lower)
}
