package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureWidths(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(12, NodeFeatureWidth)
	assert.Equal(6, EdgeFeatureWidth)

	for i, nt := range NodeTypes {
		v := nt.OneHot()
		assert.Len(v, len(NodeTypes))
		assert.Equal(1.0, v[i])
	}

	for i, c := range Colors {
		v := c.OneHot()
		assert.Len(v, len(Colors))
		assert.Equal(1.0, v[i])
	}

	assert.Equal([]float64{0, 0, 0, 0, 0, 0}, Color(42).OneHot())
	assert.Equal("Color(42)", Color(42).String())
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		name   string
		class  string
		expect func(t *testing.T, c Class, err error)
	}{
		{
			name:  "node",
			class: "RTN_Green",
			expect: func(t *testing.T, c Class, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(Class{Kind: ClassNode, Type: RTN, Color: Green}, c)
			},
		},
		{
			name:  "hub site",
			class: "HubSite_Orange",
			expect: func(t *testing.T, c Class, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(Class{Kind: ClassNode, Type: HubSite, Color: Orange}, c)
			},
		},
		{
			name:  "link",
			class: "Link_Red",
			expect: func(t *testing.T, c Class, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(ClassLink, c.Kind)
				assert.Equal(Red, c.Color)
			},
		},
		{
			name:  "color is the final suffix",
			class: "Link_Dashed_Gray",
			expect: func(t *testing.T, c Class, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(Class{Kind: ClassLink, Color: Gray}, c)
			},
		},
		{
			name:  "unknown type",
			class: "Firewall_Red",
			expect: func(t *testing.T, c Class, err error) {
				assert.True(t, errors.Is(err, ErrUnknownClass))
			},
		},
		{
			name:  "unknown color",
			class: "ATN_Purple",
			expect: func(t *testing.T, c Class, err error) {
				assert.True(t, errors.Is(err, ErrUnknownClass))
			},
		},
		{
			name:  "no separator",
			class: "Legend",
			expect: func(t *testing.T, c Class, err error) {
				assert.True(t, errors.Is(err, ErrUnknownClass))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ParseClass(tc.class)
			tc.expect(t, c, err)
		})
	}
}
