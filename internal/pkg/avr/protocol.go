package avr

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// The receiver speaks a semicolon-terminated ASCII command protocol. Device
// state arrives as unsolicited echo lines (Z1POW1, Z1PVOL55, ...) both in
// response to queries and whenever state changes on the unit itself.
const (
	cmdQueryModel      = "IDM?"
	cmdQueryMAC        = "IDN?"
	cmdQueryInputCount = "ICN?"
)

func zoneQueries(n int) []string {
	cmds := []string{
		fmt.Sprintf("Z%dPOW?", n),
		fmt.Sprintf("Z%dPVOL?", n),
		fmt.Sprintf("Z%dMUT?", n),
		fmt.Sprintf("Z%dINP?", n),
	}
	if n == 1 {
		cmds = append(cmds, "Z1ALM?", "Z1ARC?", "Z1VIR?", "Z1AIN?")
	}
	return cmds
}

// handleLine applies one inbound frame to the session state. It reports
// whether anything was applied, which drives change notification.
func (s *Session) handleLine(line string) bool {
	if strings.HasPrefix(line, "!") {
		s.handleProtocolError(line)
		return false
	}

	var followups []string
	applied := false

	s.mu.Lock()
	switch {
	case strings.HasPrefix(line, "IDM"):
		model := strings.TrimSpace(line[3:])
		if model == "" {
			break
		}
		s.info.Model = model
		for n := 1; n <= zoneCountForModel(model); n++ {
			if _, ok := s.zones[n]; !ok {
				s.zones[n] = &ZoneState{Number: n}
			}
			followups = append(followups, zoneQueries(n)...)
		}
		applied = true

	case strings.HasPrefix(line, "IDN"):
		s.info.MAC = FormatMAC(strings.TrimSpace(line[3:]))
		applied = true

	case strings.HasPrefix(line, "ICN"):
		if count, err := strconv.Atoi(strings.TrimSpace(line[3:])); err == nil {
			for i := 1; i <= count; i++ {
				followups = append(followups, fmt.Sprintf("ISN%02d?", i))
			}
			applied = true
		}

	case strings.HasPrefix(line, "ISN") && len(line) > 5:
		if index, err := strconv.Atoi(line[3:5]); err == nil {
			s.inputNames[index] = strings.TrimSpace(line[5:])
			s.rebuildInputListLocked()
			applied = true
		}

	default:
		applied = s.applyZoneLineLocked(line)
	}

	ready := s.info.MAC != "" && s.info.Model != "" && len(s.zones) > 0
	if ready && s.state == StateInitializing {
		// the handshake runs again after every redial
		s.state = StateReady
	}
	s.mu.Unlock()

	if len(followups) > 0 {
		s.sendIfErr(s.send(followups...))
	}
	if ready {
		s.markInitialised()
	}
	if !applied {
		s.logger.Debug("unhandled avr line", zap.String("line", line))
	}
	return applied
}

func (s *Session) applyZoneLineLocked(line string) bool {
	m := zoneLine.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil || number < 1 {
		return false
	}
	op, arg := m[2], m[3]

	zone, ok := s.zones[number]
	if !ok {
		// the device is the source of truth for which zones exist
		zone = &ZoneState{Number: number}
		s.zones[number] = zone
	}

	switch op {
	case "POW":
		switch arg {
		case "1":
			zone.Power = PowerOn
		case "0":
			zone.Power = PowerOff
		default:
			return false
		}

	case "PVOL":
		percent, err := strconv.Atoi(arg)
		if err != nil {
			return false
		}
		zone.Volume = clamp(float64(percent) / 100)

	case "MUT":
		zone.Mute = arg == "1"

	case "INP":
		if index, err := strconv.Atoi(arg); err == nil {
			if name, ok := s.inputNames[index]; ok {
				zone.Input = name
			} else {
				zone.Input = fmt.Sprintf("Input %d", index)
			}
		} else {
			zone.Input = arg
		}

	case "ALM":
		if number != 1 {
			return false
		}
		index, err := strconv.Atoi(arg)
		if err != nil {
			return false
		}
		s.caps.SoundMode = true
		s.device.SoundModeList = append([]string(nil), listeningModes...)
		if index >= 0 && index < len(listeningModes) {
			s.device.SoundMode = listeningModes[index]
		}

	case "ARC":
		if number != 1 {
			return false
		}
		s.caps.ARC = true
		s.device.ARCEnabled = arg == "1"

	case "VIR":
		code, err := strconv.Atoi(arg)
		if err != nil {
			return false
		}
		if text, ok := videoResolutions[code]; ok {
			s.device.VideoResolution = text
		} else {
			s.device.VideoResolution = videoResolutions[1]
		}

	case "AIN":
		s.device.AudioFormat = strings.TrimSpace(arg)

	default:
		return false
	}
	return true
}

func (s *Session) rebuildInputListLocked() {
	max := 0
	for index := range s.inputNames {
		if index > max {
			max = index
		}
	}
	list := make([]string, 0, len(s.inputNames))
	for i := 1; i <= max; i++ {
		if name, ok := s.inputNames[i]; ok {
			list = append(list, name)
		}
	}
	s.device.InputList = list
}

// handleProtocolError deals with "!" prefixed replies. A rejected identity
// query during initialisation means we are not talking to a receiver at all;
// rejected capability probes just mean the feature is absent.
func (s *Session) handleProtocolError(line string) {
	s.mu.RLock()
	initializing := s.state == StateInitializing
	s.mu.RUnlock()

	if initializing && len(line) > 2 {
		failed := line[2:]
		if strings.HasPrefix(failed, "IDM") || strings.HasPrefix(failed, "IDN") {
			select {
			case s.handshakeErr <- fmt.Errorf("identity query rejected: %s", line):
			default:
			}
			return
		}
	}
	s.logger.Debug("avr rejected command", zap.String("line", line))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
