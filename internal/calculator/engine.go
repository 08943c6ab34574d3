package calculator

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine is the split state for one bill while it is being edited.
//
// Mutators never fail on bad input; out-of-range values are clamped and
// unknown references are ignored. The only errors they return are
// ErrAlreadyFinalized once Finalize has succeeded, and the item reference
// errors of the itemized operations.
//
// An Engine is not safe for concurrent use; a bill has a single editor.
type Engine struct {
	owner ParticipantID
	// participants excludes the owner and keeps insertion order.
	participants []ParticipantID

	kind  CompositionKind
	base  decimal.Decimal
	tax   decimal.Decimal
	tip   decimal.Decimal
	items []*Item

	mode SplitMode
	unit SplitUnit
	// shareUnit is the unit the values in shares are held in. It only
	// differs from unit while the total is zero and the shares are
	// percentages waiting for a basis.
	shareUnit SplitUnit
	shares    map[ParticipantID]decimal.Decimal

	finalized bool
	result    Result
	strict    bool
}

// Option configures an Engine.
type Option func(*Engine)

// Strict makes mutations of a finalized engine panic instead of returning
// ErrAlreadyFinalized.
func Strict() Option {
	return func(e *Engine) { e.strict = true }
}

// New returns an engine for a flat bill of zero owned by owner, split equally.
func New(owner ParticipantID, opts ...Option) *Engine {
	e := &Engine{
		owner:     owner,
		kind:      CompositionFlat,
		base:      decimal.Zero,
		tax:       decimal.Zero,
		tip:       decimal.Zero,
		mode:      ModeEqual,
		unit:      UnitPercentage,
		shareUnit: UnitPercentage,
		shares:    map[ParticipantID]decimal.Decimal{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Owner is the participant who created the bill.
func (e *Engine) Owner() ParticipantID { return e.owner }

func (e *Engine) Mode() SplitMode { return e.mode }

func (e *Engine) Unit() SplitUnit { return e.unit }

func (e *Engine) Kind() CompositionKind { return e.kind }

func (e *Engine) Finalized() bool { return e.finalized }

// Flat returns the flat composition amounts. Base is zero for itemized bills.
func (e *Engine) Flat() (base, tax, tip decimal.Decimal) {
	return e.base, e.tax, e.tip
}

// Participants returns the non-owner participants in the order they were added.
func (e *Engine) Participants() []ParticipantID {
	return append([]ParticipantID(nil), e.participants...)
}

// Everyone returns the owner followed by the other participants.
func (e *Engine) Everyone() []ParticipantID {
	out := make([]ParticipantID, 0, len(e.participants)+1)
	out = append(out, e.owner)
	return append(out, e.participants...)
}

// ParticipantCount counts the owner too.
func (e *Engine) ParticipantCount() int {
	return len(e.participants) + 1
}

// Shares returns the custom shares in participant order, in the current unit.
// It is empty unless the bill is flat and in custom mode.
func (e *Engine) Shares() []Share {
	out := make([]Share, 0, len(e.shares))
	total := e.FinalTotal()
	for _, p := range e.participants {
		if v, ok := e.shares[p]; ok {
			out = append(out, Share{Participant: p, Value: convert(v, e.shareUnit, e.unit, total)})
		}
	}
	return out
}

// ShareValue returns the custom value for p in the current unit.
func (e *Engine) ShareValue(p ParticipantID) (decimal.Decimal, bool) {
	v, ok := e.shares[p]
	if !ok {
		return decimal.Zero, false
	}
	return convert(v, e.shareUnit, e.unit, e.FinalTotal()), true
}

func (e *Engine) isParticipant(p ParticipantID) bool {
	if p == e.owner {
		return true
	}
	for _, q := range e.participants {
		if q == p {
			return true
		}
	}
	return false
}

func (e *Engine) guard() error {
	if !e.finalized {
		return nil
	}
	if e.strict {
		panic(ErrAlreadyFinalized)
	}
	return ErrAlreadyFinalized
}

// FinalTotal is base+tax+tip for flat bills, and the item sum plus tax and
// tip for itemized ones.
func (e *Engine) FinalTotal() decimal.Decimal {
	if e.kind == CompositionItemized {
		return e.itemSubtotal().Add(e.tax).Add(e.tip)
	}
	return e.base.Add(e.tax).Add(e.tip)
}

// SetParticipants replaces the non-owner participant set. The owner and
// empty IDs are skipped, duplicates collapse. Shares and item assignments of
// removed participants are dropped; new participants get the default share
// for the current mode.
func (e *Engine) SetParticipants(ids ...ParticipantID) error {
	if err := e.guard(); err != nil {
		return err
	}

	seen := make(map[ParticipantID]bool, len(ids))
	next := make([]ParticipantID, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == e.owner || seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}

	for _, p := range e.participants {
		if !seen[p] {
			delete(e.shares, p)
			e.unassignEverywhere(p)
		}
	}
	e.participants = next

	if e.usesShares() {
		def := e.defaultShare()
		for _, p := range e.participants {
			if _, ok := e.shares[p]; !ok {
				e.shares[p] = def
			}
		}
	}
	return nil
}

// SetMode switches between equal and custom splitting. Equal drops all
// custom shares. Custom starts every non-owner at 100/participantCount
// percent so the numbers do not jump. Re-selecting custom keeps the edits.
func (e *Engine) SetMode(mode SplitMode) error {
	if err := e.guard(); err != nil {
		return err
	}
	switch mode {
	case ModeEqual:
		e.mode = ModeEqual
		e.shareUnit = e.unit
		e.shares = map[ParticipantID]decimal.Decimal{}
	case ModeCustom:
		if e.mode == ModeCustom {
			return nil
		}
		e.mode = ModeCustom
		e.unit = UnitPercentage
		e.resetShares()
	}
	return nil
}

// SetUnit converts every stored share to unit using the final total as the
// basis. While the total is zero percentages are kept as entered and
// converted once there is a total. Ignored outside custom flat splitting,
// like SetShareValue.
func (e *Engine) SetUnit(unit SplitUnit) error {
	if err := e.guard(); err != nil {
		return err
	}
	if !e.usesShares() || (unit != UnitPercentage && unit != UnitAmount) {
		return nil
	}
	e.unit = unit
	e.settleShares()
	return nil
}

// settleShares brings the stored shares into the current unit when the total
// allows it.
func (e *Engine) settleShares() {
	if e.shareUnit == e.unit {
		return
	}
	total := e.FinalTotal()
	if total.IsZero() && e.shareUnit == UnitPercentage {
		return
	}
	for p, v := range e.shares {
		e.shares[p] = convert(v, e.shareUnit, e.unit, total)
	}
	e.shareUnit = e.unit
}

// SetShareValue parses raw as the custom share for p. Unparseable input
// counts as zero and the value is clamped to [0,100] for percentages or
// [0,total] for amounts. Ignored outside custom flat splitting or for
// non-participants.
func (e *Engine) SetShareValue(p ParticipantID, raw string) error {
	if err := e.guard(); err != nil {
		return err
	}
	if !e.usesShares() || p == e.owner || !e.isParticipant(p) {
		return nil
	}
	e.settleShares()
	v := e.clampShare(ParseAmount(raw), e.unit)
	e.shares[p] = convert(v, e.unit, e.shareUnit, e.FinalTotal())
	return nil
}

// SetFlat makes the bill flat with the given base, tax and tip (negative
// values count as zero). Coming from an itemized bill drops the items and
// resets the split. Amount shares above a smaller new total are clamped.
func (e *Engine) SetFlat(base, tax, tip decimal.Decimal) error {
	if err := e.guard(); err != nil {
		return err
	}
	e.base, e.tax, e.tip = nonNegative(base), nonNegative(tax), nonNegative(tip)
	if e.kind != CompositionFlat {
		e.kind = CompositionFlat
		e.items = nil
		e.resetShares()
		return nil
	}
	e.settleShares()
	if e.shareUnit == UnitAmount {
		for p, v := range e.shares {
			e.shares[p] = e.clampShare(v, UnitAmount)
		}
	}
	return nil
}

// SetItemized makes the bill itemized with the given tax and tip. Coming
// from a flat bill drops the base amount and every custom share.
func (e *Engine) SetItemized(tax, tip decimal.Decimal) error {
	if err := e.guard(); err != nil {
		return err
	}
	e.tax, e.tip = nonNegative(tax), nonNegative(tip)
	if e.kind != CompositionItemized {
		e.kind = CompositionItemized
		e.base = decimal.Zero
		e.items = nil
		e.shares = map[ParticipantID]decimal.Decimal{}
	}
	return nil
}

// ParticipantShare is what p owes at full precision.
//
// Flat equal: total / participantCount for everyone.
// Flat custom: the converted share for non-owners; the owner pays
// total - sum(shares), which may be negative when shares are over-allocated.
// Itemized: the item shares plus a proportional cut of tax and tip.
func (e *Engine) ParticipantShare(p ParticipantID) decimal.Decimal {
	if !e.isParticipant(p) {
		return decimal.Zero
	}
	if e.kind == CompositionItemized {
		return e.itemizedOwed(p)
	}

	total := e.FinalTotal()
	if e.mode == ModeEqual {
		return total.Div(decimal.NewFromInt(int64(e.ParticipantCount())))
	}
	if p != e.owner {
		return e.shareAmount(p, total)
	}
	owed := total
	for _, q := range e.participants {
		owed = owed.Sub(e.shareAmount(q, total))
	}
	return owed
}

func (e *Engine) shareAmount(p ParticipantID, total decimal.Decimal) decimal.Decimal {
	v, ok := e.shares[p]
	if !ok {
		return decimal.Zero
	}
	return convert(v, e.shareUnit, UnitAmount, total)
}

func (e *Engine) usesShares() bool {
	return e.kind == CompositionFlat && e.mode == ModeCustom
}

// resetShares puts every participant back on the default share for the
// current mode.
func (e *Engine) resetShares() {
	e.shares = map[ParticipantID]decimal.Decimal{}
	e.shareUnit = e.unit
	if !e.usesShares() {
		return
	}
	def := e.defaultShare()
	for _, p := range e.participants {
		e.shares[p] = def
	}
}

// defaultShare is the equal split in the unit the shares are held in.
func (e *Engine) defaultShare() decimal.Decimal {
	n := decimal.NewFromInt(int64(e.ParticipantCount()))
	if e.shareUnit == UnitAmount {
		return e.FinalTotal().Div(n)
	}
	return hundred.Div(n)
}

func (e *Engine) clampShare(v decimal.Decimal, unit SplitUnit) decimal.Decimal {
	upper := hundred
	if unit == UnitAmount {
		upper = e.FinalTotal()
	}
	return clamp(v, decimal.Zero, upper)
}

func convert(v decimal.Decimal, from, to SplitUnit, total decimal.Decimal) decimal.Decimal {
	if from == to {
		return v
	}
	if to == UnitAmount {
		return v.Mul(total).Div(hundred)
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return v.Mul(hundred).Div(total)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	v = Bounded(v)
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	v = Bounded(v)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
