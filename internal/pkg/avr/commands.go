package avr

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Command methods are write-through and fire-and-forget: they put a mutation
// on the wire and return. The resulting state is confirmed by the next change
// notification once the device reports back, never by the call itself.

func (s *Session) SetPower(zone int, on bool) error {
	return s.send(fmt.Sprintf("Z%dPOW%d", zone, boolToInt(on)))
}

func (s *Session) SetMute(zone int, muted bool) error {
	return s.send(fmt.Sprintf("Z%dMUT%d", zone, boolToInt(muted)))
}

// SetVolume writes a volume fraction. Out-of-range input is clamped into
// [0,1] before it reaches the wire.
func (s *Session) SetVolume(zone int, fraction float64) error {
	percent := int(math.Round(clamp(fraction) * 100))
	return s.send(fmt.Sprintf("Z%dPVOL%d", zone, percent))
}

// StepVolume nudges the zone volume by the configured step. A zone already
// at the relevant bound is left alone.
func (s *Session) StepVolume(zone int, direction Direction) error {
	state, ok := s.Zone(zone)
	if !ok {
		return fmt.Errorf("unknown zone %d", zone)
	}

	step := s.cfg.Step()
	switch direction {
	case VolumeUp:
		if state.Volume >= 1 {
			return nil
		}
		return s.SetVolume(zone, state.Volume+step)
	case VolumeDown:
		if state.Volume <= 0 {
			return nil
		}
		return s.SetVolume(zone, state.Volume-step)
	}
	return fmt.Errorf("unknown direction %d", direction)
}

// SelectSource requests the named input. The name is not validated against
// the input list; the device rejects or ignores names it does not know.
func (s *Session) SelectSource(zone int, name string) error {
	s.mu.RLock()
	index := 0
	for i, known := range s.inputNames {
		if strings.EqualFold(known, name) {
			index = i
			break
		}
	}
	s.mu.RUnlock()

	if index > 0 {
		return s.send(fmt.Sprintf("Z%dINP%02d", zone, index))
	}
	// unresolved names go out verbatim and the device arbitrates
	return s.send(fmt.Sprintf("Z%dINP%s", zone, name))
}

// SelectSoundMode is device-wide: listening modes only apply to the main
// zone. Calling it on a device without the capability is tolerated upstream,
// so it is not gated here either.
func (s *Session) SelectSoundMode(name string) error {
	for index, mode := range listeningModes {
		if strings.EqualFold(mode, name) {
			return s.send(fmt.Sprintf("Z1ALM%d", index))
		}
	}
	s.logger.Debug("unknown listening mode requested", zap.String("name", name))
	return s.send(fmt.Sprintf("Z1ALM%s", name))
}

// SetARC toggles automatic room correction.
func (s *Session) SetARC(on bool) error {
	return s.send(fmt.Sprintf("Z1ARC%d", boolToInt(on)))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
