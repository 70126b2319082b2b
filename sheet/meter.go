package sheet

import (
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/vsariola/jamsheet"
)

// MeterTrack returns an SMF conductor track with a meter change and a marker
// at the start of every section. The track is closed at the end of the
// leadsheet.
func (ls *Leadsheet) MeterTrack(resolution smf.MetricTicks) smf.Track {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("sections"))
	var delta uint32
	sections := ls.items.sections()
	for i, it := range sections {
		s := it.data.(jamsheet.Section)
		track.Add(delta, s.TimeSignature.Meter(), smf.MetaMarker(s.Name))
		end := ls.size
		if i+1 < len(sections) {
			end = sections[i+1].pos.Bar
		}
		delta = uint32(end-it.pos.Bar) * s.TimeSignature.TicksPerBar(resolution)
	}
	track.Close(delta)
	return track
}
