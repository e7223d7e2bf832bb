package benchmarkerrors

import (
	"context"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeFromError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"nil":                             {nil, ExitCodeOK},
		"ErrNotFound":                     {&ErrNotFound{}, ExitCodeNotFound},
		"ErrInvalidArgument":              {&ErrInvalidArgument{}, ExitCodeInvalidArgument},
		"pkg.Error => ErrNotFound":        {errors.WithMessage(&ErrNotFound{}, "foo"), ExitCodeNotFound},
		"pkg.Error => ErrInvalidArgument": {errors.WithStack(&ErrInvalidArgument{}), ExitCodeInvalidArgument},
		"pkg.Error":                       {errors.New("foo"), ExitCodeFailure},
		"context canceled":                {errors.Wrap(context.Canceled, "waiting for batch"), ExitCodeInterrupted},
		"multierror":                      {multierror.Append(nil, &ErrInvalidArgument{}, errors.New("foo")), ExitCodeInvalidArgument},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeFromError(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `resource "gpu-1" of type "node" does not exist`, (&ErrNotFound{Type: "node", Value: "gpu-1"}).Error())
	assert.Equal(t, `resource "gpu-1" does not exist; cordoned`, (&ErrNotFound{Value: "gpu-1", Message: "cordoned"}).Error())
	assert.Equal(t, `value "0" is invalid for field "targetRuns"`, (&ErrInvalidArgument{Name: "targetRuns", Value: 0}).Error())
	assert.Equal(t, `value "-1" is invalid for field "batch"; must be positive`, (&ErrInvalidArgument{Name: "batch", Value: -1, Message: "must be positive"}).Error())
}
