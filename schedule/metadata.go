package schedule

import "encoding/json"

// GameScore holds the recorded score of a single game within a match.
type GameScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// BracketMeta is the stage metadata variant carried by elimination and swiss
// matches: the round number and the match's 1-based position within it.
type BracketMeta struct {
	Round int
	Order int
}

// GroupMeta is the stage metadata variant carried by group-stage matches.
type GroupMeta struct {
	Index int
	Label string
}

// StageMeta is the per-match scheduling state persisted alongside a match.
// In storage it is a flat JSON object whose field names are a wire format the
// bracket front-end depends on; in memory it is decoded once into the variant
// matching the canonical stage. Bracket and Group are mutually exclusive.
type StageMeta struct {
	Stage          Stage
	BestOf         int
	Bracket        *BracketMeta
	Group          *GroupMeta
	Scores         []GameScore
	WinnerTeamID   *int
	WinnerTeamName *string
	FromStage      Stage
}

// stageMetaWire mirrors the persisted JSON layout. Field names must not
// change: `stage`, `bestOf`, `groupIndex`, `groupLabel`, `bracketRound`,
// `bracketOrder`, `scores`, `winnerTeamId`, `winnerTeamName`, `fromStage`.
type stageMetaWire struct {
	Stage          string      `json:"stage"`
	BestOf         int         `json:"bestOf,omitempty"`
	BracketRound   *int        `json:"bracketRound,omitempty"`
	BracketOrder   *int        `json:"bracketOrder,omitempty"`
	GroupIndex     *int        `json:"groupIndex,omitempty"`
	GroupLabel     string      `json:"groupLabel,omitempty"`
	Scores         []GameScore `json:"scores,omitempty"`
	WinnerTeamID   *int        `json:"winnerTeamId,omitempty"`
	WinnerTeamName *string     `json:"winnerTeamName,omitempty"`
	FromStage      string      `json:"fromStage,omitempty"`
}

func (m StageMeta) MarshalJSON() ([]byte, error) {
	w := stageMetaWire{
		Stage:          string(m.Stage),
		BestOf:         m.BestOf,
		Scores:         m.Scores,
		WinnerTeamID:   m.WinnerTeamID,
		WinnerTeamName: m.WinnerTeamName,
		FromStage:      string(m.FromStage),
	}
	if m.Bracket != nil {
		w.BracketRound = &m.Bracket.Round
		w.BracketOrder = &m.Bracket.Order
	}
	if m.Group != nil {
		w.GroupIndex = &m.Group.Index
		w.GroupLabel = m.Group.Label
	}
	return json.Marshal(w)
}

func (m *StageMeta) UnmarshalJSON(data []byte) error {
	var w stageMetaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	stage, err := ParseStage(w.Stage)
	if err != nil {
		return err
	}
	*m = StageMeta{
		Stage:          stage,
		BestOf:         w.BestOf,
		Scores:         w.Scores,
		WinnerTeamID:   w.WinnerTeamID,
		WinnerTeamName: w.WinnerTeamName,
	}
	if w.FromStage != "" {
		if from, err := ParseStage(w.FromStage); err == nil {
			m.FromStage = from
		}
	}
	if w.BracketRound != nil {
		order := 0
		if w.BracketOrder != nil {
			order = *w.BracketOrder
		}
		m.Bracket = &BracketMeta{Round: *w.BracketRound, Order: order}
	}
	if w.GroupIndex != nil {
		m.Group = &GroupMeta{Index: *w.GroupIndex, Label: w.GroupLabel}
	}
	return nil
}

// DecodeStageMeta parses a stored metadata bag. A match whose bag is missing,
// corrupt, or names an unrecognized stage is treated as belonging to no
// recognized stage (nil, false) rather than failing, so legacy records never
// block new generation.
func DecodeStageMeta(raw []byte) (*StageMeta, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var m StageMeta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}
