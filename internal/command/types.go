// Package command implements synchronous validation of every client command
// kind (§4.I): found, build, arrow, pause/unpause/end/quit, player settings.
// Validate never mutates state; it either returns a typed Command ready for
// enqueue or an *apperr.GameError the caller returns immediately.
package command

import (
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

// Kind constants, mirrored onto room.Command.Kind.
const (
	KindFound            = "found"
	KindBuildCity        = "build_city"
	KindBuildStructure   = "build_structure"
	KindArrowStart       = "arrow_start"
	KindArrowCancel      = "arrow_cancel"
	KindSetTroopTarget   = "set_troop_target"
	KindSetAttackPercent = "set_attack_percent"
	KindPause            = "pause"
	KindUnpause          = "unpause"
	KindEnd              = "end"
	KindQuit             = "quit"
	KindPlayerSettings   = "player_settings"
)

// FoundPayload is the payload for KindFound.
type FoundPayload struct {
	X, Y int32
}

// BuildCityPayload is the payload for KindBuildCity.
type BuildCityPayload struct {
	X, Y     int32
	CityType string
	CityName string
}

// BuildStructurePayload is the payload for KindBuildStructure.
type BuildStructurePayload struct {
	X, Y int32
	Type string
}

// ArrowStartPayload is the payload for KindArrowStart.
type ArrowStartPayload struct {
	Type    room.ArrowType
	Path    []territory.Coord // ordered, 8-connected, len >= 2
	Percent float64
}

// ArrowCancelPayload is the payload for KindArrowCancel.
type ArrowCancelPayload struct {
	Type room.ArrowType
}

// SetTroopTargetPayload is the payload for KindSetTroopTarget.
type SetTroopTargetPayload struct {
	Target float64
}

// SetAttackPercentPayload is the payload for KindSetAttackPercent.
type SetAttackPercentPayload struct {
	Percent float64
}

// PlayerSettingsPayload is the payload for KindPlayerSettings.
type PlayerSettingsPayload struct {
	Profile string
}

// RawCommand is an unvalidated client command as received from the
// transport layer.
type RawCommand struct {
	Kind     string
	UserID   string
	Password string
	Fields   map[string]any
}
