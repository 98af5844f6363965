package validate

import (
	"testing"

	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStruct_BookYear(t *testing.T) {
	for _, y := range []int{0, 1000, 1965, 2100} {
		assert.NoError(t, Struct(models.Patch{Year: &y}), y)
	}
	for _, y := range []int{1, 999, 2101, -5} {
		err := Struct(models.Patch{Year: &y})
		if assert.Error(t, err, y) {
			assert.Equal(t, []string{"year must be between 1000 and 2100"}, Messages(err))
		}
	}
}

func TestStruct_ListItems(t *testing.T) {
	err := Struct(models.Patch{Authors: []string{"ok", ""}})
	assert.Error(t, err)
	assert.Len(t, Messages(err), 1)
	assert.Nil(t, Messages(nil))
}

func TestIssues_FieldPath(t *testing.T) {
	err := Struct(models.Patch{Authors: []string{"ok", ""}})
	issues := Issues(err)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "authors[1]", issues[0].Field)
		assert.Equal(t, "min", issues[0].Tag)
	}
}
