package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUntouchedSession(t *testing.T) {
	sess := seededSession(t)

	diff, err := Classify(sess)
	require.NoError(t, err)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Changed)
	assert.Len(t, diff.Unchanged, 2)
	assert.False(t, diff.HasChanges())
}

func TestClassifyPartition(t *testing.T) {
	sess := seededSession(t)

	require.NoError(t, sess.SetQuantity(1, 3))
	require.NoError(t, sess.RemoveLine(2))
	sess.AddCatalogItem(103, 80, "Gulab Jamun")

	diff, err := Classify(sess)
	require.NoError(t, err)

	require.Len(t, diff.Added, 1)
	assert.Equal(t, int64(103), diff.Added[0].CatalogRowID)

	require.Len(t, diff.Removed, 1)
	assert.Equal(t, int64(2), diff.Removed[0].ID)

	require.Len(t, diff.Changed, 1)
	assert.Equal(t, int64(1), diff.Changed[0].Before.ID)
	assert.Equal(t, 3, diff.Changed[0].After.Quantity)

	assert.Empty(t, diff.Unchanged)

	// The partition covers every touched line exactly once.
	total := len(diff.Added) + len(diff.Removed) + len(diff.Changed) + len(diff.Unchanged)
	assert.Equal(t, 3, total)
}

func TestClassifyRevertedEditIsUnchanged(t *testing.T) {
	sess := seededSession(t)

	require.NoError(t, sess.SetQuantity(1, 5))
	require.NoError(t, sess.SetQuantity(1, 2))

	diff, err := Classify(sess)
	require.NoError(t, err)

	assert.Empty(t, diff.Changed)
	assert.Len(t, diff.Unchanged, 2)
	assert.False(t, diff.HasChanges())
}

func TestClassifyEmptySession(t *testing.T) {
	sess := seededSession(t)

	require.NoError(t, sess.RemoveLine(1))
	require.NoError(t, sess.RemoveLine(2))

	_, err := Classify(sess)
	assert.ErrorIs(t, err, ErrEmptySession)
}
