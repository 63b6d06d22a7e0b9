package throttle

import "github.com/KasumiMercury/primind-focusguard/internal/domain"

// State is the escalation position of a session. A state's ordinal is also
// its distraction streak count.
type State int32

const (
	StateClean State = iota
	StateWarned1
	StateWarned2
	StateEscalate
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateWarned1:
		return "warned_1"
	case StateWarned2:
		return "warned_2"
	case StateEscalate:
		return "escalate"
	default:
		return "unknown"
	}
}

type Event int

const (
	EventProductive Event = iota
	EventDistracting
)

type Action int

const (
	ActionNone Action = iota
	ActionAlertDefault
	ActionAlertEscalated
)

type transition struct {
	next   State
	action Action
}

// transitions is the full escalation table. Escalate is transient: the
// throttle resets to Clean immediately after emitting the escalated alert.
var transitions = map[State]map[Event]transition{
	StateClean: {
		EventProductive:  {next: StateClean, action: ActionNone},
		EventDistracting: {next: StateWarned1, action: ActionAlertDefault},
	},
	StateWarned1: {
		EventProductive:  {next: StateWarned1, action: ActionNone},
		EventDistracting: {next: StateWarned2, action: ActionAlertDefault},
	},
	StateWarned2: {
		EventProductive:  {next: StateWarned2, action: ActionNone},
		EventDistracting: {next: StateEscalate, action: ActionAlertEscalated},
	},
	StateEscalate: {
		EventProductive:  {next: StateClean, action: ActionNone},
		EventDistracting: {next: StateClean, action: ActionNone},
	},
}

func (a Action) Tier() domain.Tier {
	if a == ActionAlertEscalated {
		return domain.TierEscalated
	}
	return domain.TierDefault
}

// nextTier is the tier the next distraction would produce from s.
func nextTier(s State) domain.Tier {
	return transitions[s][EventDistracting].action.Tier()
}
