package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

func TestMapRuleCondition(t *testing.T) {
	t.Parallel()

	cond, err := MapRuleCondition(map[string]any{
		"min_quantity":       float64(10), // JSON numbers decode as float64
		"max_ceiling_height": 3.5,
		"access":             "difficult",
		"zone":               "wet",
	})
	require.NoError(t, err)

	require.NotNil(t, cond.MinQuantity)
	assert.Equal(t, 10, *cond.MinQuantity)
	require.NotNil(t, cond.MaxCeilingHeight)
	assert.InDelta(t, 3.5, *cond.MaxCeilingHeight, 0.001)
	assert.Equal(t, model.AccessDifficult, cond.Access)
	assert.Equal(t, "wet", cond.Extra["zone"])
	assert.Nil(t, cond.MinCeilingHeight)
}

func TestMapRuleConditionBadType(t *testing.T) {
	t.Parallel()

	_, err := MapRuleCondition(map[string]any{"min_quantity": "ti"})
	assert.ErrorContains(t, err, "min_quantity")

	_, err = MapRuleCondition(map[string]any{"access": 7})
	assert.ErrorContains(t, err, "access")
}

func TestUnmarshalConditionJSON(t *testing.T) {
	t.Parallel()

	cond, err := UnmarshalConditionJSON([]byte(`{"min_ceiling_height": 3.0}`))
	require.NoError(t, err)
	require.NotNil(t, cond.MinCeilingHeight)
	assert.InDelta(t, 3.0, *cond.MinCeilingHeight, 0.001)

	empty, err := UnmarshalConditionJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, empty.MinQuantity)
}

func TestUnmarshalMaterialsJSON(t *testing.T) {
	t.Parallel()

	mats, err := UnmarshalMaterialsJSON([]byte(`[{"name":"Kabel","quantity":8,"unit":"m","cost_price":4.2,"sale_price":7.5}]`))
	require.NoError(t, err)
	require.Len(t, mats, 1)
	assert.Equal(t, "Kabel", mats[0].Name)
	assert.InDelta(t, 4.2, mats[0].CostPrice, 0.001)

	_, err = UnmarshalMaterialsJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestConditionRoundTrip(t *testing.T) {
	t.Parallel()

	orig := model.RuleCondition{
		MinQuantity: iptr(5),
		Access:      model.AccessCrawlSpace,
		Extra:       map[string]string{"zone": "wet"},
	}
	mapped, err := MapRuleCondition(conditionToRaw(orig))
	require.NoError(t, err)
	assert.Equal(t, orig, mapped)
}
