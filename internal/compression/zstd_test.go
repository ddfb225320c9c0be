package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_SmallPayloadStaysRaw(t *testing.T) {
	c, err := NewCompressor(2, true)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.Compress([]byte("short"))
	require.NoError(t, err)
	assert.Equal(t, tagRaw, out[0])

	back, err := c.Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, "short", string(back))
}

func TestCompress_RepetitivePayloadShrinks(t *testing.T) {
	c, err := NewCompressor(3, true)
	require.NoError(t, err)
	defer c.Close()

	data := bytes.Repeat([]byte("line of text\n"), 500)
	out, err := c.Compress(data)
	require.NoError(t, err)
	assert.Equal(t, tagZstd, out[0])
	assert.Less(t, len(out), len(data))

	back, err := c.Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestDecompress_ReadableWhenDisabled(t *testing.T) {
	on, err := NewCompressor(1, true)
	require.NoError(t, err)
	defer on.Close()
	off, err := NewCompressor(1, false)
	require.NoError(t, err)
	defer off.Close()

	data := bytes.Repeat([]byte{'a'}, 4096)
	stored, err := on.Compress(data)
	require.NoError(t, err)

	back, err := off.Decompress(stored)
	require.NoError(t, err)
	assert.Equal(t, data, back)

	raw, err := off.Compress(data)
	require.NoError(t, err)
	assert.Equal(t, tagRaw, raw[0])
}

func TestDecompress_RejectsUnknownTag(t *testing.T) {
	c, err := NewCompressor(2, false)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Decompress([]byte{0x7f, 1, 2})
	assert.Error(t, err)
	_, err = c.Decompress(nil)
	assert.Error(t, err)
}
