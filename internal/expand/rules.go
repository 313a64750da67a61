package expand

import "github.com/voltgruppen/kalk-cli/internal/model"

// ruleContext is the calculation context a rule condition is evaluated
// against. One per component line.
type ruleContext struct {
	Quantity       int
	CeilingHeightM float64
	Access         model.AccessClass
	DistanceM      float64
	Extra          map[string]string
}

// matches evaluates every set condition field; unset fields do not
// constrain. All set fields must hold for the rule to apply.
func matches(c model.RuleCondition, ctx ruleContext) bool {
	if c.MinQuantity != nil && ctx.Quantity < *c.MinQuantity {
		return false
	}
	if c.MaxQuantity != nil && ctx.Quantity > *c.MaxQuantity {
		return false
	}
	if c.MinCeilingHeight != nil && ctx.CeilingHeightM < *c.MinCeilingHeight {
		return false
	}
	if c.MaxCeilingHeight != nil && ctx.CeilingHeightM > *c.MaxCeilingHeight {
		return false
	}
	if c.Access != "" && ctx.Access != c.Access {
		return false
	}
	if c.MinDistanceM != nil && ctx.DistanceM < *c.MinDistanceM {
		return false
	}
	for key, want := range c.Extra {
		if ctx.Extra[key] != want {
			return false
		}
	}
	return true
}
