package postgres

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonPayload builds a valid JSON document of exactly n bytes.
func jsonPayload(t *testing.T, n int) json.RawMessage {
	t.Helper()
	const overhead = len(`{"data":""}`)
	require.Greater(t, n, overhead)
	payload := `{"data":"` + string(bytes.Repeat([]byte("x"), n-overhead)) + `"}`
	require.Len(t, payload, n)
	return json.RawMessage(payload)
}

func TestAuditService_CompressChanges_Threshold(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	// At the threshold the payload stays plain.
	small := AuditEntry{Changes: jsonPayload(t, svc.compressThreshold)}
	svc.compressChanges(&small)
	assert.Equal(t, CompressionNone, small.CompressionAlgo)
	assert.NotNil(t, small.Changes)
	assert.Nil(t, small.ChangesCompressed)

	// One byte over gets compressed and the plain payload is dropped.
	large := AuditEntry{Changes: jsonPayload(t, svc.compressThreshold+1)}
	svc.compressChanges(&large)
	assert.Equal(t, CompressionZstd, large.CompressionAlgo)
	assert.Nil(t, large.Changes)
	assert.NotEmpty(t, large.ChangesCompressed)
	assert.Less(t, len(large.ChangesCompressed), svc.compressThreshold+1)
}

func TestAuditService_CompressChanges_RoundTrip(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	original := jsonPayload(t, svc.compressThreshold*3)
	entry := AuditEntry{Changes: append(json.RawMessage(nil), original...)}

	svc.compressChanges(&entry)
	require.Equal(t, CompressionZstd, entry.CompressionAlgo)

	require.NoError(t, svc.decompressEntry(&entry))
	assert.Equal(t, []byte(original), []byte(entry.Changes))
	assert.Nil(t, entry.ChangesCompressed)
}

func TestAuditService_DecompressEntry_PlainPassThrough(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	entry := AuditEntry{
		Changes:         json.RawMessage(`{"name":"Rice"}`),
		CompressionAlgo: CompressionNone,
	}
	require.NoError(t, svc.decompressEntry(&entry))
	assert.Equal(t, json.RawMessage(`{"name":"Rice"}`), entry.Changes)
}
