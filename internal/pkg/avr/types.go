package avr

import (
	"regexp"
	"strings"
)

// State is the session connectivity state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateInitializing
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Power is a tri-state: the device has not necessarily reported it yet.
type Power int

const (
	PowerUnknown Power = iota
	PowerOff
	PowerOn
)

func (p Power) String() string {
	switch p {
	case PowerOn:
		return "on"
	case PowerOff:
		return "off"
	}
	return "unknown"
}

// Direction selects stepVolume's sign.
type Direction int

const (
	VolumeUp Direction = iota
	VolumeDown
)

// ZoneState is the raw mutable state of one zone, owned by the session.
// Volume is a fraction in [0,1], clamped after every write.
type ZoneState struct {
	Number int
	Power  Power
	Mute   bool
	Volume float64
	Input  string
}

// DeviceInfo is immutable once the handshake resolves it.
type DeviceInfo struct {
	MAC   string // canonical aa:bb:cc:dd:ee:ff form
	Model string
	Name  string
}

// Capabilities are device-reported feature flags.
type Capabilities struct {
	SoundMode bool // audio listening mode selection
	ARC       bool // automatic room correction
}

// DeviceState carries the device-wide mutable fields shared by every zone.
type DeviceState struct {
	SoundMode       string
	SoundModeList   []string
	ARCEnabled      bool
	VideoResolution string
	AudioFormat     string
	InputList       []string
}

var zoneLine = regexp.MustCompile(`^Z(\d+)([A-Z]+)(.*)$`)

// modelZones maps model identifiers to their zone count. Anything the table
// does not know gets the common two-zone layout.
var modelZones = map[string]int{
	"MRX 520":  2,
	"MRX 720":  2,
	"MRX 1120": 2,
	"MRX 540":  2,
	"MRX 740":  2,
	"MRX 1140": 2,
	"AVM 60":   2,
	"AVM 70":   2,
	"AVM 90":   2,
}

const defaultZoneCount = 2

func zoneCountForModel(model string) int {
	if n, ok := modelZones[model]; ok {
		return n
	}
	return defaultZoneCount
}

// listeningModes is the audio listening mode catalogue, indexed by the value
// the device reports on Z1ALM.
var listeningModes = []string{
	"None",
	"AnthemLogic Cinema",
	"AnthemLogic Music",
	"Dolby Surround",
	"DTS Neural:X",
	"All Channel Stereo",
	"All Channel Mono",
	"Mono",
}

// videoResolutions maps the Z1VIR code to display text.
var videoResolutions = map[int]string{
	0:  "No video",
	1:  "Other",
	2:  "1080p60",
	3:  "1080p50",
	4:  "1080p24",
	5:  "1080i60",
	6:  "720p60",
	7:  "576p50",
	8:  "480p60",
	9:  "4K60",
	10: "4K50",
	11: "4K24",
}

// FormatMAC canonicalises a hardware address: lower case, colon-separated
// octet pairs. Inputs that are not 12 hex digits come back lower-cased only.
func FormatMAC(mac string) string {
	cleaned := strings.ToLower(mac)
	for _, sep := range []string{":", "-", "."} {
		cleaned = strings.ReplaceAll(cleaned, sep, "")
	}
	if len(cleaned) != 12 {
		return strings.ToLower(mac)
	}
	parts := make([]string, 0, 6)
	for i := 0; i < 12; i += 2 {
		parts = append(parts, cleaned[i:i+2])
	}
	return strings.Join(parts, ":")
}
