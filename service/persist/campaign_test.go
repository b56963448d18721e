package persist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInstagramLink(t *testing.T) {
	assert := assert.New(t)

	link, err := NormalizeInstagramLink("")
	assert.Nil(err)
	assert.Equal("", link)

	link, err = NormalizeInstagramLink("https://example.com/brand")
	assert.Nil(err)
	assert.Equal("https://example.com/brand", link)

	link, err = NormalizeInstagramLink("http://example.com/brand")
	assert.Nil(err)
	assert.Equal("http://example.com/brand", link)

	link, err = NormalizeInstagramLink("acme.co_2024")
	assert.Nil(err)
	assert.Equal("https://www.instagram.com/acme.co_2024", link)
}

func TestNormalizeInstagramLinkRejectsBadHandles(t *testing.T) {
	assert := assert.New(t)

	for _, handle := range []string{"acme brand", "acme/brand", "acme@brand", " acme"} {
		_, err := NormalizeInstagramLink(handle)
		var invalid ErrInvalidInstagramHandle
		assert.True(errors.As(err, &invalid), handle)
		assert.Equal(handle, invalid.Handle)
	}
}
