package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" In_Process ")
	require.NoError(t, err)
	assert.Equal(t, StatusInProcess, st)
	assert.Equal(t, "In Process", st.Label())

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusNew, StatusInProcess, true},
		{StatusNew, StatusNew, true},
		{StatusSaved, StatusNew, true},
		{StatusInProcess, StatusClosed, true},
		{StatusInProcess, StatusNew, false},
		{StatusClosed, StatusNew, false},
		{StatusClosed, StatusClosed, false},
		{StatusRejected, StatusInProcess, false},
		{Status("pending"), StatusClosed, true},
		{StatusNew, Status("pending"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionErrorUnwraps(t *testing.T) {
	var err error = &TransitionError{RequestID: 4, From: StatusClosed, To: StatusNew}
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Equal(t, "request 4 cannot move from closed to new", err.Error())
}

func TestItemSpecValidate(t *testing.T) {
	assert.NoError(t, ItemSpec{ItemType: ItemTypeCatalog, MaterialDescription: "Gauze", ExternalCode: "1", Quantity: 1}.Validate())
	assert.NoError(t, ItemSpec{ItemType: ItemTypeFreeText, FreeTextDescription: "Ice packs", Quantity: 3, IsSPR: true}.Validate())

	assert.ErrorIs(t, ItemSpec{ItemType: ItemTypeCatalog, MaterialDescription: "Gauze", ExternalCode: "1"}.Validate(), ErrInvalidQuantity)
	assert.ErrorIs(t, ItemSpec{ItemType: ItemTypeCatalog, Quantity: 1}.Validate(), ErrMaterialRequired)
	assert.ErrorIs(t, ItemSpec{ItemType: ItemTypeFreeText, Quantity: 1}.Validate(), ErrFreeTextRequired)
	assert.ErrorIs(t, ItemSpec{ItemType: ItemTypeFreeText, FreeTextDescription: "x", ExternalCode: "1", Quantity: 1}.Validate(), ErrInvalidItemType)
	assert.ErrorIs(t, ItemSpec{ItemType: "bundle", Quantity: 1}.Validate(), ErrInvalidItemType)
}

func TestGroupByBatch(t *testing.T) {
	rows := []Request{
		{ID: 5, BatchID: "b2"},
		{ID: 4, BatchID: "b1"},
		{ID: 3},
		{ID: 2, BatchID: "b2"},
	}
	groups := GroupByBatch(rows)
	require.Len(t, groups, 3)
	assert.Equal(t, "b2", groups[0].Key)
	assert.Equal(t, []int64{5, 2}, []int64{groups[0].Requests[0].ID, groups[0].Requests[1].ID})
	assert.Equal(t, "b1", groups[1].Key)
	assert.Equal(t, "single-3", groups[2].Key)
	assert.Empty(t, groups[2].BatchID)
}

func TestParseSingleKey(t *testing.T) {
	id, ok := ParseSingleKey(SingleKey(42))
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, key := range []string{"42", "single-", "single-x", "single-0", "single--3", "b-single-4"} {
		_, ok := ParseSingleKey(key)
		assert.False(t, ok, key)
	}
}
