package calculator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// legacyItem accepts every item shape older clients stored: receipt
// assignments keyed by line index ({sharedBy, amount}), item lists with
// {name, price, assignedPeople}, and {description, amount, assignedTo}.
type legacyItem struct {
	Description    string           `json:"description"`
	Name           string           `json:"name"`
	Amount         *decimal.Decimal `json:"amount"`
	Total          *decimal.Decimal `json:"total"`
	Price          *decimal.Decimal `json:"price"`
	SharedBy       []string         `json:"sharedBy"`
	AssignedTo     []string         `json:"assignedTo"`
	Participants   []string         `json:"participants"`
	AssignedPeople []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"assignedPeople"`
}

func (l legacyItem) input() ItemInput {
	in := ItemInput{Description: l.Description, Amount: decimal.Zero}
	if in.Description == "" {
		in.Description = l.Name
	}
	for _, v := range []*decimal.Decimal{l.Amount, l.Total, l.Price} {
		if v != nil {
			in.Amount = Bounded(*v)
			break
		}
	}

	var ids []string
	switch {
	case len(l.SharedBy) > 0:
		ids = l.SharedBy
	case len(l.AssignedTo) > 0:
		ids = l.AssignedTo
	case len(l.Participants) > 0:
		ids = l.Participants
	default:
		for _, p := range l.AssignedPeople {
			if p.ID != "" {
				ids = append(ids, p.ID)
			} else {
				ids = append(ids, p.Name)
			}
		}
	}
	for _, id := range ids {
		in.Assignees = append(in.Assignees, ParticipantID(id))
	}
	return in
}

// DecodeLegacyItems converts a stored item document in any of the legacy
// shapes (a JSON array, or an object keyed by line index) to ItemInputs in
// line order.
func DecodeLegacyItems(data []byte) ([]ItemInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var list []legacyItem
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to decode legacy items: %w", err)
		}
	case '{':
		var byIndex map[string]legacyItem
		if err := json.Unmarshal(data, &byIndex); err != nil {
			return nil, fmt.Errorf("failed to decode legacy items: %w", err)
		}
		keys := make([]string, 0, len(byIndex))
		for k := range byIndex {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.Atoi(keys[i])
			b, errB := strconv.Atoi(keys[j])
			if errA != nil || errB != nil {
				return keys[i] < keys[j]
			}
			return a < b
		})
		for _, k := range keys {
			list = append(list, byIndex[k])
		}
	default:
		return nil, errors.New("unsupported legacy item document")
	}

	out := make([]ItemInput, len(list))
	for i, l := range list {
		out[i] = l.input()
	}
	return out, nil
}
