package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greyMatrix(t *testing.T) *Constructor {
	t.Helper()
	c := New().SetName("GreyMatrix")
	require.NoError(t, c.AddAxis("px", 0, 255))
	require.NoError(t, c.AddAxis("$py", 0, 255))
	c.SetValues("($px + $py) / 2")
	return c
}

func TestQuery(t *testing.T) {
	got, err := greyMatrix(t).Query()
	require.NoError(t, err)
	assert.Equal(t, "coverage GreyMatrix\nover $px 0 : 255,\n$py 0 : 255,\nvalues (($px + $py) / 2)", got)
}

func TestAddAxis(t *testing.T) {
	c := New()
	require.NoError(t, c.AddAxis("px", -5, 5))
	assert.Equal(t, []Axis{{Name: "px", Lo: -5, Hi: 5}}, c.Axes())

	assert.Error(t, c.AddAxis("py", 255, 0))
	assert.Error(t, c.AddAxis("py", 3, 3))
	assert.Error(t, c.AddAxis("not valid", 0, 1))
	assert.Len(t, c.Axes(), 1)
}

func TestQuery_Missing(t *testing.T) {
	c := New()
	_, err := c.Query()
	assert.ErrorIs(t, err, ErrNoName)

	c.SetName("X")
	_, err = c.Query()
	assert.ErrorIs(t, err, ErrNoAxes)

	require.NoError(t, c.AddAxis("i", 0, 1))
	_, err = c.Query()
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestReset(t *testing.T) {
	c := greyMatrix(t)
	c.Reset()

	assert.Empty(t, c.Axes())
	_, err := c.Query()
	assert.ErrorIs(t, err, ErrNoName)
}
