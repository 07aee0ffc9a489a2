package model

import (
	"strings"

	"github.com/gosimple/slug"
)

// Device identifies one physical receiver.
type Device struct {
	MAC   string
	Model string
	Name  string
}

type EntityKind string

const (
	EntityKindZone   EntityKind = "media_player"
	EntityKindSwitch EntityKind = "switch"
)

// Entity is one externally visible observer: a zone media player or a
// device-wide switch. ID is stable across restarts because it derives from
// the hardware address.
type Entity struct {
	ID     string
	Name   string
	Kind   EntityKind
	Zone   int // 0 for device-wide entities
	Device Device
}

// Slug is the topic- and column-safe form of the entity ID.
func (e *Entity) Slug() string {
	return strings.ReplaceAll(slug.Make(e.ID), "-", "_")
}

// Field slugs published for every zone entity.
const (
	FieldState         = "state"
	FieldVolume        = "volume"
	FieldMuted         = "muted"
	FieldSource        = "source"
	FieldSourceList    = "source_list"
	FieldSoundMode     = "sound_mode"
	FieldSoundModeList = "sound_mode_list"
	FieldResolution    = "video_input_resolution"
	FieldAudioFormat   = "audio_input_format"
)
