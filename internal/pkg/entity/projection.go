package entity

import (
	"slices"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
)

// ZoneView is an immutable snapshot of one zone as observers see it. Sound
// mode fields are nil/empty unless the three-way gate holds; they are never
// retained stale from an earlier snapshot.
type ZoneView struct {
	Power           string   `json:"power"`
	Muted           bool     `json:"muted"`
	Volume          float64  `json:"volume"`
	Source          string   `json:"source"`
	SourceList      []string `json:"source_list"`
	SoundMode       string   `json:"sound_mode,omitempty"`
	SoundModeList   []string `json:"sound_mode_list,omitempty"`
	VideoResolution string   `json:"video_input_resolution"`
	AudioFormat     string   `json:"audio_input_format"`
}

// Project maps raw zone and device state to the externally visible view.
// Pure and deterministic: the view is recomputed in full every time, never
// patched incrementally. Sound mode fields appear only for zone one, on a
// device with the capability, while the zone is powered on. Power passes
// through as the tri-state the device reported; unknown stays unknown.
func Project(zone avr.ZoneState, device avr.DeviceState, caps avr.Capabilities) ZoneView {
	view := ZoneView{
		Power:           zone.Power.String(),
		Muted:           zone.Mute,
		Volume:          zone.Volume,
		Source:          zone.Input,
		SourceList:      slices.Clone(device.InputList),
		VideoResolution: device.VideoResolution,
		AudioFormat:     device.AudioFormat,
	}
	if zone.Number == 1 && caps.SoundMode && zone.Power == avr.PowerOn {
		view.SoundMode = device.SoundMode
		view.SoundModeList = slices.Clone(device.SoundModeList)
	}
	return view
}
