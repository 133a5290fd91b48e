package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOutCommitter_SameTitleTwoClasses(t *testing.T) {
	staged := stage(t, baseState(), mathsMagic.ID, []string{"3", "5"}, map[string]float64{"3": 120, "5": 150}).Simulated

	for seed := int64(1); seed <= 25; seed++ {
		gw := newFakeGateway(seed)
		committer := NewFanOutCommitter(gw, 4)

		result, err := committer.Commit(context.Background(), "SCH1", 0, staged)
		require.NoError(t, err)

		assert.Len(t, gw.booklists, 2)
		assert.Len(t, gw.items, 2)
		require.Len(t, result.Booklists, 2)
		assert.Equal(t, "3", result.Booklists[0].Class)
		assert.Equal(t, "5", result.Booklists[1].Class)

		require.Len(t, result.Items, 2)
		for _, item := range result.Items {
			assert.Equal(t, mathsMagic.ID, item.BookID)
		}
		assert.Equal(t, "3", result.Items[0].Class)
		assert.Equal(t, "5", result.Items[1].Class)
	}
}

func TestFanOutCommitter_ManyClassesLowConcurrency(t *testing.T) {
	s := stage(t, baseState(), mathsMagic.ID, []string{"Pre", "Nur", "1", "2", "3", "4"}, nil)
	s = stage(t, s, grammar.ID, []string{"1", "2", "8"}, nil)

	gw := newFakeGateway(42)
	result, err := NewFanOutCommitter(gw, 1).Commit(context.Background(), "SCH1", 0, s.Simulated)
	require.NoError(t, err)
	assert.Len(t, result.Booklists, 7)
	assert.Len(t, result.Items, 9)
}

func TestFanOutCommitter_CreateFailureHaltsItems(t *testing.T) {
	staged := stage(t, baseState(), mathsMagic.ID, []string{"3", "5"}, nil).Simulated

	gw := newFakeGateway(1)
	gw.failCreate = map[string]bool{"5": true}

	_, err := NewFanOutCommitter(gw, 0).Commit(context.Background(), "SCH1", 0, staged)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommitFailed)
	assert.Empty(t, gw.items, "item phase must not start")
}

func TestFanOutCommitter_ItemFailureLeavesBooklists(t *testing.T) {
	s := stage(t, baseState(), mathsMagic.ID, []string{"3"}, nil)
	s = stage(t, s, grammar.ID, []string{"3"}, nil)

	gw := newFakeGateway(1)
	gw.failItem = map[uint]bool{grammar.ID: true}

	_, err := NewFanOutCommitter(gw, 2).Commit(context.Background(), "SCH1", 0, s.Simulated)
	assert.ErrorIs(t, err, ErrCommitFailed)
	assert.Len(t, gw.booklists, 1, "no rollback of the booklist phase")
}

func TestFanOutCommitter_NothingStaged(t *testing.T) {
	_, err := NewFanOutCommitter(newFakeGateway(1), 2).Commit(context.Background(), "SCH1", 0, nil)
	assert.ErrorIs(t, err, ErrNothingStaged)
}
