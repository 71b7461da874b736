package lenient

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID     int64   `json:"id"`
	Text   string  `json:"text"`
	Done   bool    `json:"done"`
	Artist *string `json:"artist"`
	Tags   []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

func TestDecodeCoercesScalars(t *testing.T) {
	var s sample
	err := Decode(strings.NewReader(`{"id":"1700000000123","text":42,"done":"true","extra":[1],"tags":[{"name":7}]}`), &s)
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000123), s.ID)
	assert.Equal(t, "42", s.Text)
	assert.True(t, s.Done)
	assert.Nil(t, s.Artist)
	require.Len(t, s.Tags, 1)
	assert.Equal(t, "7", s.Tags[0].Name)
}

func TestDecodeKeepsLargeIDsExact(t *testing.T) {
	var s sample
	require.NoError(t, Decode(strings.NewReader(`{"id":9007199254740993}`), &s))
	assert.Equal(t, int64(9007199254740993), s.ID)
}

func TestDecodeNullAndEmpty(t *testing.T) {
	var s sample
	require.NoError(t, Decode(strings.NewReader(`{"text":null,"artist":""}`), &s))
	assert.Equal(t, "", s.Text)
	require.NotNil(t, s.Artist)
	assert.Equal(t, "", *s.Artist)

	assert.ErrorIs(t, Decode(strings.NewReader(""), &s), io.EOF)
}

func TestDecodeRejects(t *testing.T) {
	var s sample
	assert.Error(t, Decode(strings.NewReader(`{"text":`), &s), "malformed JSON")
	assert.Error(t, Decode(strings.NewReader(`{"id":{"nested":1}}`), &s), "object for a number")
	assert.Error(t, Decode(strings.NewReader(`{"id":"abc"}`), &s), "unparsable id")
}

func TestUnmarshalRejectsTrailingData(t *testing.T) {
	var s sample
	require.NoError(t, Unmarshal([]byte("{\"text\":\"ok\"}\n  "), &s))
	assert.Error(t, Unmarshal([]byte(`{"text":"ok"} {"text":"again"}`), &s))
}
