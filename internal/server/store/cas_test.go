package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCIDDeterministic(t *testing.T) {
	a := ComputeCID([]byte("same bytes"))
	b := ComputeCID([]byte("same bytes"))
	c := ComputeCID([]byte("other bytes"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestContentKeySharding(t *testing.T) {
	cid := ComputeCID([]byte("payload"))
	key := ContentKey(cid)

	assert.Equal(t, "content/"+cid[:2]+"/"+cid, key)
	assert.True(t, ValidateKey(key))
}

func TestMultipartKey(t *testing.T) {
	key := MultipartKey("abc-123", "movie.mp4")
	assert.Equal(t, "multipart/abc-123/movie.mp4", key)
	assert.True(t, ValidateKey(key))
}

func TestValidateKey(t *testing.T) {
	assert.True(t, ValidateKey("content/ab/abcdef"))
	assert.False(t, ValidateKey(""))
	assert.False(t, ValidateKey("/leading/slash"))
	assert.False(t, ValidateKey(`back\slash`))
	assert.False(t, ValidateKey("dot/../dot"))
	assert.False(t, ValidateKey("."))
	assert.False(t, ValidateKey(strings.Repeat("x", 1025)))
}
