package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList{"red", "blue"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["red","blue"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestStringListScan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, l)

	require.NoError(t, l.Scan([]byte(`["c"]`)))
	assert.Equal(t, StringList{"c"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	require.NoError(t, l.Scan("null"))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("{not json"))
}
