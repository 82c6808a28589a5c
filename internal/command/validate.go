package command

import (
	"github.com/s4lvi/historyengine-sub001/internal/apperr"
	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

// Validate checks a RawCommand synchronously against the current room
// snapshot and, for map-touching commands, the room's generated map.
// Grounded on the teacher's handleJoin/handleInput: decode, validate
// against live state, and either forward (here: return a typed Command for
// the caller to enqueue) or reject with an explicit error immediately —
// never enqueue on failure.
func Validate(raw RawCommand, snap *room.State, m *mapgen.Map) (room.Command, *apperr.GameError) {
	if snap.Status == room.StatusEnded {
		return room.Command{}, apperr.GameEnded("room %s has ended", snap.RoomID)
	}

	player, perr := authenticate(raw, snap)
	if perr != nil {
		return room.Command{}, perr
	}

	switch raw.Kind {
	case KindFound:
		return validateFound(raw, snap, m, player)
	case KindBuildCity:
		return validateBuildCity(raw, snap, m, player)
	case KindBuildStructure:
		return validateBuildStructure(raw, snap, m, player)
	case KindArrowStart:
		return validateArrowStart(raw, snap, m, player)
	case KindArrowCancel:
		return validateArrowCancel(raw, snap, player)
	case KindSetTroopTarget:
		return validateSetTroopTarget(raw, snap, player)
	case KindSetAttackPercent:
		return validateSetAttackPercent(raw, snap, player)
	case KindPause, KindUnpause, KindEnd:
		return validateCreatorOnly(raw, snap, player)
	case KindQuit:
		return room.Command{Kind: KindQuit, Owner: player.UserID}, nil
	case KindPlayerSettings:
		return validatePlayerSettings(raw, player)
	default:
		return room.Command{}, apperr.InvalidInput("unknown command kind %q", raw.Kind)
	}
}

func authenticate(raw RawCommand, snap *room.State) (room.Player, *apperr.GameError) {
	for _, p := range snap.Players {
		if p.UserID == raw.UserID {
			if p.Password != raw.Password {
				return room.Player{}, apperr.AuthFailed("password mismatch for user %q", raw.UserID)
			}
			return p, nil
		}
	}
	return room.Player{}, apperr.AuthFailed("unknown user %q", raw.UserID)
}

func coordField(fields map[string]any) (int32, int32, bool) {
	xv, xok := fields["x"]
	yv, yok := fields["y"]
	if !xok || !yok {
		return 0, 0, false
	}
	x, xok2 := toInt32(xv)
	y, yok2 := toInt32(yv)
	return x, y, xok2 && yok2
}

func toInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int32:
		return n, true
	case int:
		return int32(n), true
	case int64:
		return int32(n), true
	case float64:
		return int32(n), true
	default:
		return 0, false
	}
}

// extractPath normalizes the "path" field of an arrow command. Callers that
// already hold typed data (tests, in-process callers) pass [][2]int32
// directly; a JSON-decoded request body arrives as []any of []any (or of
// map[string]any{"x":...,"y":...}), since encoding/json has no way to know
// the target element type ahead of time.
func extractPath(v any) ([][2]int32, bool) {
	switch path := v.(type) {
	case [][2]int32:
		return path, true
	case []any:
		out := make([][2]int32, 0, len(path))
		for _, elem := range path {
			switch e := elem.(type) {
			case []any:
				if len(e) != 2 {
					return nil, false
				}
				x, xok := toInt32(e[0])
				y, yok := toInt32(e[1])
				if !xok || !yok {
					return nil, false
				}
				out = append(out, [2]int32{x, y})
			case map[string]any:
				x, xok := toInt32(e["x"])
				y, yok := toInt32(e["y"])
				if !xok || !yok {
					return nil, false
				}
				out = append(out, [2]int32{x, y})
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func validateFound(raw RawCommand, snap *room.State, m *mapgen.Map, player room.Player) (room.Command, *apperr.GameError) {
	x, y, ok := coordField(raw.Fields)
	if !ok {
		return room.Command{}, apperr.InvalidInput("found: missing x/y")
	}
	if existing, ok := snap.Nations[player.UserID]; ok && existing.Status != room.NationDefeated {
		return room.Command{}, apperr.ConflictCode("REFOUND_DISABLED", "nation for %q already founded", player.UserID)
	}
	if m == nil || !m.InBounds(int(x), int(y)) {
		return room.Command{}, apperr.InvalidInput("found: (%d,%d) out of bounds", x, y)
	}
	if !m.IsFoundable(int(x), int(y)) {
		return room.Command{}, apperr.InvalidInput("found: (%d,%d) is not foundable land", x, y)
	}
	for _, n := range snap.Nations {
		if n.Territory.Contains(x, y) {
			return room.Command{}, apperr.InvalidInput("found: (%d,%d) already owned", x, y)
		}
	}
	return room.Command{Kind: KindFound, Owner: player.UserID, Payload: FoundPayload{X: x, Y: y}}, nil
}

func requireActiveNation(snap *room.State, owner string) (*room.Nation, *apperr.GameError) {
	n, ok := snap.Nations[owner]
	if !ok || n.Status != room.NationActive {
		return nil, apperr.Conflict("no active nation for %q", owner)
	}
	return n, nil
}

func validateBuildCity(raw RawCommand, snap *room.State, m *mapgen.Map, player room.Player) (room.Command, *apperr.GameError) {
	n, err := requireActiveNation(snap, player.UserID)
	if err != nil {
		return room.Command{}, err
	}
	x, y, ok := coordField(raw.Fields)
	if !ok {
		return room.Command{}, apperr.InvalidInput("build_city: missing x/y")
	}
	if !n.Territory.Contains(x, y) {
		return room.Command{}, apperr.InvalidInput("build_city: (%d,%d) not owned by %q", x, y, player.UserID)
	}
	if m != nil && !m.IsLand(int(x), int(y)) {
		return room.Command{}, apperr.InvalidInput("build_city: (%d,%d) is not land", x, y)
	}
	cityType, _ := raw.Fields["cityType"].(string)
	if cityType == "" {
		return room.Command{}, apperr.InvalidInput("build_city: missing cityType")
	}
	cityName, _ := raw.Fields["cityName"].(string)
	return room.Command{
		Kind: KindBuildCity, Owner: player.UserID,
		Payload: BuildCityPayload{X: x, Y: y, CityType: cityType, CityName: cityName},
	}, nil
}

func validateBuildStructure(raw RawCommand, snap *room.State, m *mapgen.Map, player room.Player) (room.Command, *apperr.GameError) {
	n, err := requireActiveNation(snap, player.UserID)
	if err != nil {
		return room.Command{}, err
	}
	x, y, ok := coordField(raw.Fields)
	if !ok {
		return room.Command{}, apperr.InvalidInput("build_structure: missing x/y")
	}
	if !n.Territory.Contains(x, y) {
		return room.Command{}, apperr.InvalidInput("build_structure: (%d,%d) not owned by %q", x, y, player.UserID)
	}
	for _, s := range n.Structures {
		if s.X == x && s.Y == y {
			return room.Command{}, apperr.Conflict("build_structure: structure already exists at (%d,%d)", x, y)
		}
	}
	structType, _ := raw.Fields["type"].(string)
	if structType == "" {
		return room.Command{}, apperr.InvalidInput("build_structure: missing type")
	}
	return room.Command{
		Kind: KindBuildStructure, Owner: player.UserID,
		Payload: BuildStructurePayload{X: x, Y: y, Type: structType},
	}, nil
}

func validateArrowStart(raw RawCommand, snap *room.State, m *mapgen.Map, player room.Player) (room.Command, *apperr.GameError) {
	n, err := requireActiveNation(snap, player.UserID)
	if err != nil {
		return room.Command{}, err
	}
	rawPath, ok := extractPath(raw.Fields["path"])
	if !ok || len(rawPath) < 2 {
		return room.Command{}, apperr.InvalidInput("arrow: path must have at least 2 cells")
	}
	if !n.Territory.Contains(rawPath[0][0], rawPath[0][1]) {
		return room.Command{}, apperr.InvalidInput("arrow: path must begin at an owned cell")
	}
	for i := 1; i < len(rawPath); i++ {
		dx := abs32(rawPath[i][0] - rawPath[i-1][0])
		dy := abs32(rawPath[i][1] - rawPath[i-1][1])
		if dx > 1 || dy > 1 || (dx == 0 && dy == 0) {
			return room.Command{}, apperr.InvalidInput("arrow: path must be 8-connected")
		}
	}
	arrowType, _ := raw.Fields["type"].(string)
	var at room.ArrowType
	switch arrowType {
	case string(room.ArrowAttack):
		at = room.ArrowAttack
	case string(room.ArrowDefend):
		at = room.ArrowDefend
	default:
		return room.Command{}, apperr.InvalidInput("arrow: invalid type %q", arrowType)
	}
	percent, _ := raw.Fields["percent"].(float64)
	if percent < 0.05 || percent > 1.0 {
		return room.Command{}, apperr.InvalidInput("arrow: percent must be in [0.05,1.0], got %v", percent)
	}

	path := make([]territory.Coord, len(rawPath))
	for i, p := range rawPath {
		path[i] = territory.Coord{X: p[0], Y: p[1]}
	}
	return room.Command{
		Kind: KindArrowStart, Owner: player.UserID,
		Payload: ArrowStartPayload{Type: at, Path: path, Percent: percent},
	}, nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func validateArrowCancel(raw RawCommand, snap *room.State, player room.Player) (room.Command, *apperr.GameError) {
	if _, err := requireActiveNation(snap, player.UserID); err != nil {
		return room.Command{}, err
	}
	arrowType, _ := raw.Fields["type"].(string)
	var at room.ArrowType
	switch arrowType {
	case string(room.ArrowAttack):
		at = room.ArrowAttack
	case string(room.ArrowDefend):
		at = room.ArrowDefend
	default:
		return room.Command{}, apperr.InvalidInput("arrow_cancel: invalid type %q", arrowType)
	}
	return room.Command{Kind: KindArrowCancel, Owner: player.UserID, Payload: ArrowCancelPayload{Type: at}}, nil
}

func validateSetTroopTarget(raw RawCommand, snap *room.State, player room.Player) (room.Command, *apperr.GameError) {
	if _, err := requireActiveNation(snap, player.UserID); err != nil {
		return room.Command{}, err
	}
	target, _ := raw.Fields["target"].(float64)
	if target < 0 || target > 1 {
		return room.Command{}, apperr.InvalidInput("set_troop_target: target must be in [0,1], got %v", target)
	}
	return room.Command{Kind: KindSetTroopTarget, Owner: player.UserID, Payload: SetTroopTargetPayload{Target: target}}, nil
}

func validateSetAttackPercent(raw RawCommand, snap *room.State, player room.Player) (room.Command, *apperr.GameError) {
	if _, err := requireActiveNation(snap, player.UserID); err != nil {
		return room.Command{}, err
	}
	percent, _ := raw.Fields["percent"].(float64)
	if percent < 0.05 || percent > 1 {
		return room.Command{}, apperr.InvalidInput("set_attack_percent: percent must be in [0.05,1], got %v", percent)
	}
	return room.Command{Kind: KindSetAttackPercent, Owner: player.UserID, Payload: SetAttackPercentPayload{Percent: percent}}, nil
}

func validateCreatorOnly(raw RawCommand, snap *room.State, player room.Player) (room.Command, *apperr.GameError) {
	if snap.Creator != player.UserID {
		return room.Command{}, apperr.Forbidden("only the room creator may %s", raw.Kind)
	}
	return room.Command{Kind: raw.Kind, Owner: player.UserID}, nil
}

func validatePlayerSettings(raw RawCommand, player room.Player) (room.Command, *apperr.GameError) {
	profile, _ := raw.Fields["profile"].(string)
	return room.Command{Kind: KindPlayerSettings, Owner: player.UserID, Payload: PlayerSettingsPayload{Profile: profile}}, nil
}
