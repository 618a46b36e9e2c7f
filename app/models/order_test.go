package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, OrderStatus("shipped"), false},
	}

	for _, tc := range cases {
		err := tc.from.Transition(tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s to %s", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, ErrBadTransition, "%s to %s", tc.from, tc.to)
		}
	}
}

func TestOrderWithServiceOmitsMissingService(t *testing.T) {
	// A dangling service reference must serialise with no service key at
	// all, never as a zero-valued summary.
	entry := OrderWithService{Order: Order{Status: StatusPending}}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "service")

	entry.Service = &ServiceSummary{Title: "Painting", Price: 120}
	data, err = json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "service")
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("shipped").Valid())
}
