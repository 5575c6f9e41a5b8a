package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeFromFlags(t *testing.T) {
	t.Cleanup(func() { fromFlag, toFlag = "", "" })

	fromFlag, toFlag = "2024-03-01", "2024-03-31"

	r, err := rangeFromFlags()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01..2024-03-31", r.String())

	fromFlag, toFlag = "", ""

	r, err = rangeFromFlags()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Start.Day())
	assert.Equal(t, time.Now().Format(time.DateOnly), r.End.Format(time.DateOnly))

	fromFlag, toFlag = "2024-03-31", "2024-03-01"

	_, err = rangeFromFlags()
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Varekjø…", truncate("Varekjøp REMA", 8))
}
