package calculator

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is a serialisable snapshot of an Engine. Drafts are stored as State
// between edits.
type State struct {
	Owner        ParticipantID                     `json:"owner"`
	Participants []ParticipantID                   `json:"participants"`
	Kind         CompositionKind                   `json:"kind"`
	Base         decimal.Decimal                   `json:"base"`
	Tax          decimal.Decimal                   `json:"tax"`
	Tip          decimal.Decimal                   `json:"tip"`
	Items        []Item                            `json:"items,omitempty"`
	Mode         SplitMode                         `json:"mode"`
	Unit         SplitUnit                         `json:"unit"`
	ShareUnit    SplitUnit                         `json:"share_unit,omitempty"`
	Shares       map[ParticipantID]decimal.Decimal `json:"shares,omitempty"`
	Finalized    bool                              `json:"finalized"`
	Result       *Result                           `json:"result,omitempty"`
}

// Snapshot copies the engine state.
func (e *Engine) Snapshot() State {
	st := State{
		Owner:        e.owner,
		Participants: e.Participants(),
		Kind:         e.kind,
		Base:         e.base,
		Tax:          e.tax,
		Tip:          e.tip,
		Items:        e.Items(),
		Mode:         e.mode,
		Unit:         e.unit,
		ShareUnit:    e.shareUnit,
		Finalized:    e.finalized,
	}
	if len(e.shares) > 0 {
		st.Shares = make(map[ParticipantID]decimal.Decimal, len(e.shares))
		for p, v := range e.shares {
			st.Shares[p] = v
		}
	}
	if e.finalized {
		res := e.result.clone()
		st.Result = &res
	}
	return st
}

// Restore rebuilds an engine from a snapshot. The snapshot is normalised the
// same way the mutators would have left it: unknown modes fall back to
// defaults, values are clamped, and shares or assignees that reference
// non-participants are dropped.
func Restore(st State, opts ...Option) (*Engine, error) {
	if st.Owner == "" {
		return nil, errors.New("snapshot has no owner")
	}
	e := New(st.Owner, opts...)

	if err := e.SetParticipants(st.Participants...); err != nil {
		return nil, err
	}
	if st.Unit == UnitAmount {
		e.unit = UnitAmount
	}
	e.shareUnit = e.unit
	if st.ShareUnit == UnitPercentage || st.ShareUnit == UnitAmount {
		e.shareUnit = st.ShareUnit
	}

	switch st.Kind {
	case CompositionItemized:
		e.kind = CompositionItemized
		e.tax, e.tip = nonNegative(st.Tax), nonNegative(st.Tip)
		for _, it := range st.Items {
			item := &Item{ID: it.ID, Description: it.Description, Amount: nonNegative(it.Amount)}
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			for _, p := range it.Assignees {
				if e.isParticipant(p) && !item.assigned(p) {
					item.Assignees = append(item.Assignees, p)
				}
			}
			if len(item.Assignees) == 0 {
				item.Assignees = []ParticipantID{e.owner}
			}
			e.items = append(e.items, item)
		}
	default:
		e.base, e.tax, e.tip = nonNegative(st.Base), nonNegative(st.Tax), nonNegative(st.Tip)
	}

	if st.Mode == ModeCustom {
		e.mode = ModeCustom
		if e.kind == CompositionFlat {
			for _, p := range e.participants {
				v, ok := st.Shares[p]
				if !ok {
					v = e.defaultShare()
				}
				e.shares[p] = e.clampShare(v, e.shareUnit)
			}
			e.settleShares()
		}
	}

	if st.Finalized && st.Result != nil {
		e.finalized = true
		e.result = st.Result.clone()
	}
	return e, nil
}
