package poferrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect func(t *testing.T, err error)
	}{
		{
			name: "plain",
			err:  New(KindInvalidImage, "no nodes found"),
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.Equal("[InvalidImage]no nodes found", err.Error())
				assert.Equal(KindInvalidImage, KindOf(err))
				assert.True(KindOf(err).UserFacing())
			},
		},
		{
			name: "wrapped cause stays reachable",
			err:  fmt.Errorf("decode: %w", Wrap(KindInvalidImage, io.ErrUnexpectedEOF, "image could not be decoded")),
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.True(IsKind(err, KindInvalidImage))
				assert.True(errors.Is(err, io.ErrUnexpectedEOF))
			},
		},
		{
			name: "near miss",
			err:  NotFound("AK0031", "AK0081", 75),
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				var e *Error
				assert.True(errors.As(err, &e))
				assert.Equal("AK0081", e.Candidate)
				assert.Equal(75, e.Score)
				assert.Contains(err.Error(), "(75%)")
			},
		},
		{
			name: "foreign error",
			err:  errors.New("boom"),
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.Equal(KindUnknown, KindOf(err))
				assert.False(KindOf(err).UserFacing())
				assert.False(KindInternal.UserFacing())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, tc.err)
		})
	}
}
