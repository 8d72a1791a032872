package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swsaga/progression-api/internal/errors"
)

func TestErrorCodesAndHelpers(t *testing.T) {
	err := errors.NotFoundf("character %s not found", "char_1")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), "character char_1 not found")

	assert.True(t, errors.IsAborted(errors.Aborted("locked")))
	assert.True(t, errors.IsFailedPrecondition(errors.FailedPrecondition("nope")))
}

func TestWrapPreservesCode(t *testing.T) {
	inner := errors.Aborted("progression transaction already in progress")
	wrapped := errors.Wrap(inner, "finalize failed")

	assert.True(t, errors.IsAborted(wrapped))
	assert.Contains(t, wrapped.Error(), "finalize failed")
	assert.Contains(t, wrapped.Error(), "already in progress")
}

func TestWrapPlainErrorBecomesInternal(t *testing.T) {
	wrapped := errors.Wrap(stderrors.New("connection reset"), "redis call failed")
	assert.True(t, errors.IsInternal(wrapped))
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, "nothing"))
}

func TestWithMeta(t *testing.T) {
	err := errors.InvalidArgument("too many feats").
		WithMeta("selected", 3).
		WithMeta("available", 2)

	meta := errors.GetMeta(err)
	require.NotNil(t, meta)
	assert.Equal(t, 3, meta["selected"])
	assert.Equal(t, 2, meta["available"])
}

func TestValidationBuilderCollectsFields(t *testing.T) {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("class_id")
	errors.ValidateRange("roll", 11, 1, 10, vb)

	err := vb.Build()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "class_id")
	assert.Contains(t, err.Error(), "must be between 1 and 10")
}

func TestValidationBuilderEmptyBuildsNil(t *testing.T) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", "Dara", vb)
	errors.ValidateRange("roll", 5, 1, 10, vb)
	assert.NoError(t, vb.Build())
}
