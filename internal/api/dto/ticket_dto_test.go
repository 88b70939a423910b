package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestTicketListQueryFilter(t *testing.T) {
	q := TicketListQuery{
		Status:     "Open, In Progress,,",
		Priority:   "High",
		CustomerID: " 4 ",
		AssignedTo: "Me",
		Limit:      25,
		Offset:     50,
	}
	filter, err := q.Filter(7)
	require.NoError(t, err)

	assert.Equal(t, []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}, filter.Statuses)
	assert.Equal(t, []domain.TicketPriority{domain.TicketPriorityHigh}, filter.Priorities)
	require.NotNil(t, filter.CustomerID)
	assert.Equal(t, int64(4), *filter.CustomerID)
	require.NotNil(t, filter.AssignedToID)
	assert.Equal(t, int64(7), *filter.AssignedToID)
	assert.Equal(t, 25, filter.Limit)
	assert.Equal(t, 50, filter.Offset)

	filter, err = TicketListQuery{AssignedTo: "12"}.Filter(7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), *filter.AssignedToID)

	filter, err = TicketListQuery{}.Filter(7)
	require.NoError(t, err)
	assert.Nil(t, filter.CustomerID)
	assert.Nil(t, filter.AssignedToID)
}

func TestTicketListQueryFilterRejects(t *testing.T) {
	for name, q := range map[string]TicketListQuery{
		"customer":      {CustomerID: "x"},
		"zero customer": {CustomerID: "0"},
		"assignee":      {AssignedTo: "someone"},
		"limit":         {Limit: MaxTicketPageSize + 1},
		"offset":        {Offset: -1},
	} {
		_, err := q.Filter(7)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), name)
	}

	_, err := TicketListQuery{AssignedTo: "me"}.Filter(0)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}
