package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// Stage identifies one phase of a tournament format.
type Stage string

const (
	StageSingleElim Stage = "single_elim"
	StageDoubleElim Stage = "double_elim"
	StageSwiss      Stage = "swiss"
	StageGroups     Stage = "groups"
)

var (
	ErrUnknownStage            = errors.New("unknown tournament stage")
	ErrInsufficientTeams       = errors.New("not enough eligible teams (minimum 2 required)")
	ErrInsufficientAdvancement = errors.New("not enough advancing teams to form the next round")
)

var stageSynonyms = map[string]Stage{
	"se":          StageSingleElim,
	"single_elim": StageSingleElim,
	"de":          StageDoubleElim,
	"double_elim": StageDoubleElim,
	"swiss":       StageSwiss,
	"groups":      StageGroups,
}

// ParseStage maps a free-text stage token to its canonical stage.
// Matching is case-insensitive and whitespace-trimmed. The same function is
// applied to stage names read back from stored match metadata, so filtering
// by stage stays consistent with what generation wrote.
func ParseStage(token string) (Stage, error) {
	stage, ok := stageSynonyms[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, token)
	}
	return stage, nil
}

// IsElimination reports whether the stage is a bracket-style knockout stage.
func (s Stage) IsElimination() bool {
	return s == StageSingleElim || s == StageDoubleElim
}
