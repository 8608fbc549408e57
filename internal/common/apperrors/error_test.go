package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	ErrBase := New("base error")
	assert.Equal(t, "base error", ErrBase.Error())
	assert.Equal(t, "msg", ErrBase.New("msg").Error())
	assert.ErrorIs(t, ErrBase, ErrBase)

	ErrChild := ErrBase.New("child error")
	assert.Equal(t, "child error", ErrChild.Error())
	assert.ErrorIs(t, ErrChild, ErrBase)

	ErrOther := New("other error")
	wrapped := ErrChild.Err(ErrOther)
	assert.Equal(t, "child error", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrBase)
	assert.ErrorIs(t, wrapped, ErrOther)

	plain := errors.New("plain")
	wrapped = ErrBase.New("wrapper").MsgErr("msg", plain)
	assert.Equal(t, "msg", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrBase)
	assert.ErrorIs(t, wrapped, plain)
}

func TestErrorStatusCode(t *testing.T) {
	ErrBase := New("base").SetStatusCode(500)
	assert.Equal(t, 500, ErrBase.StatusCode())

	// children inherit unless overridden
	child := ErrBase.New("child")
	assert.Equal(t, 500, child.StatusCode())
	assert.Equal(t, 409, child.SetStatusCode(409).StatusCode())
}

func TestErrorAll(t *testing.T) {
	base := New("base").SetExpandError(true)
	wrapped := base.Err(errors.New("cause"))
	assert.Equal(t, "base: cause", wrapped.ErrorAll())
}
