package respond

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdWriterSyncReportsEveryRejectedHeader(t *testing.T) {
	logs := NewTestLogger(t)
	w := NewResponse(context.Background(), &memTransport{}, logs)
	defer w.Free()

	sw := newStdWriter(w)
	sw.Header().Set("X-One", "1")
	sw.Header().Set("X-Two", "2")

	// commit out from under the writer; the guarded table now rejects all
	// mutations, and sync must report each one instead of stopping silently.
	require.NoError(t, w.FlushHeaders())
	sw.sync()

	assert.Equal(t, int64(2), logs.NumHandlerFailure)
	assert.Equal(t, 0, w.hdr.Len())
}
