package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName_Valid(t *testing.T) {
	cases := []string{"roadmap", "Q3-launch", "v1.2_plan", "2024"}
	for _, name := range cases {
		c := &Chart{Name: name}
		assert.NoError(t, c.ValidateName(), "should accept %q", name)
	}
}

func TestValidateName_Empty(t *testing.T) {
	c := &Chart{}
	err := c.ValidateName()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestValidateName_Invalid(t *testing.T) {
	for _, name := range []string{"-lead", "has space", "slash/name"} {
		c := &Chart{Name: name}
		assert.Error(t, c.ValidateName(), name)
	}
}

func TestDisplayID(t *testing.T) {
	c := &Chart{ID: "0123456789abcdef"}
	assert.Equal(t, "01234567", c.DisplayID())

	c = &Chart{ID: "abc"}
	assert.Equal(t, "abc", c.DisplayID())
}
