package form_test

import (
	"testing"

	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/stretchr/testify/assert"
)

func TestFieldsWithDoesNotMutateOriginal(t *testing.T) {
	orig := form.Fields{TokenAddress: "0xabc"}
	next := orig.With(form.FieldAmounts, "10")

	assert.Equal(t, "", orig.Amounts)
	assert.Equal(t, "10", next.Amounts)
	assert.Equal(t, "0xabc", next.TokenAddress)
}

func TestFieldsGet(t *testing.T) {
	fs := form.Fields{TokenAddress: "t", Recipients: "r", Amounts: "a"}
	assert.Equal(t, "t", fs.Get(form.FieldToken))
	assert.Equal(t, "r", fs.Get(form.FieldRecipients))
	assert.Equal(t, "a", fs.Get(form.FieldAmounts))
}

func TestFieldsComplete(t *testing.T) {
	assert.False(t, form.Fields{TokenAddress: "t", Recipients: "r"}.Complete())
	assert.True(t, form.Fields{TokenAddress: "t", Recipients: "r", Amounts: "a"}.Complete())
}

func TestErrorsAny(t *testing.T) {
	assert.False(t, form.Errors{}.Any())
	assert.True(t, form.Errors{Amounts: "bad"}.Any())
	assert.Equal(t, "bad", form.Errors{Amounts: "bad"}.Get(form.FieldAmounts))
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "token", form.FieldToken.String())
	assert.Equal(t, "recipients", form.FieldRecipients.String())
	assert.Equal(t, "amounts", form.FieldAmounts.String())
}
