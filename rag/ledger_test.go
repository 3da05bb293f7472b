package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerSeenAndRecord(t *testing.T) {
	ledger := NewLedger()

	assert.False(t, ledger.Seen("F1_chunk_0"))
	assert.Equal(t, 0, ledger.Len())

	ledger.Record("F1_chunk_0", "first chunk text")

	assert.True(t, ledger.Seen("F1_chunk_0"))
	assert.False(t, ledger.Seen("F1_chunk_1"))
	assert.Equal(t, 1, ledger.Len())

	text, ok := ledger.Text("F1_chunk_0")
	assert.True(t, ok)
	assert.Equal(t, "first chunk text", text)

	_, ok = ledger.Text("F1_chunk_1")
	assert.False(t, ok)
}

func TestLedgerRecordTwiceKeepsLatest(t *testing.T) {
	ledger := NewLedger()
	ledger.Record("doc_chunk_0", "old")
	ledger.Record("doc_chunk_0", "new")

	assert.Equal(t, 1, ledger.Len())
	text, _ := ledger.Text("doc_chunk_0")
	assert.Equal(t, "new", text)
}

func TestLedgerSnapshotRoundTrip(t *testing.T) {
	ledger := NewLedger()
	ledger.Record("F1_chunk_0", "alpha")
	ledger.Record("F1_chunk_1", "beta")

	data, err := ledger.Snapshot()
	require.NoError(t, err)

	restored := NewLedger()
	require.NoError(t, restored.Load(data))

	assert.Equal(t, 2, restored.Len())
	assert.True(t, restored.Seen("F1_chunk_0"))
	text, ok := restored.Text("F1_chunk_1")
	assert.True(t, ok)
	assert.Equal(t, "beta", text)
}

func TestLedgerLoadRejectsGarbage(t *testing.T) {
	ledger := NewLedger()
	ledger.Record("keep", "me")

	err := ledger.Load([]byte("not json"))
	require.Error(t, err)

	// A failed load leaves the ledger untouched
	assert.True(t, ledger.Seen("keep"))
}
