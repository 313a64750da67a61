package catalog

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Reference rows arrive loosely typed (JSON columns, fixture maps). All of
// them pass through these mappers exactly once, at the engine boundary, so
// everything downstream operates on typed values.

// MapRuleCondition converts a loose condition record into the typed closed
// set of condition fields. Unknown keys land in the Extra bag.
func MapRuleCondition(raw map[string]any) (model.RuleCondition, error) {
	var cond model.RuleCondition
	for key, val := range raw {
		switch key {
		case "min_quantity":
			n, err := asInt(val)
			if err != nil {
				return cond, eris.Wrapf(err, "catalog: condition %s", key)
			}
			cond.MinQuantity = &n
		case "max_quantity":
			n, err := asInt(val)
			if err != nil {
				return cond, eris.Wrapf(err, "catalog: condition %s", key)
			}
			cond.MaxQuantity = &n
		case "min_ceiling_height":
			f, err := asFloat(val)
			if err != nil {
				return cond, eris.Wrapf(err, "catalog: condition %s", key)
			}
			cond.MinCeilingHeight = &f
		case "max_ceiling_height":
			f, err := asFloat(val)
			if err != nil {
				return cond, eris.Wrapf(err, "catalog: condition %s", key)
			}
			cond.MaxCeilingHeight = &f
		case "access":
			s, ok := val.(string)
			if !ok {
				return cond, eris.Errorf("catalog: condition access: expected string, got %T", val)
			}
			cond.Access = model.AccessClass(s)
		case "min_distance_m":
			f, err := asFloat(val)
			if err != nil {
				return cond, eris.Wrapf(err, "catalog: condition %s", key)
			}
			cond.MinDistanceM = &f
		default:
			if cond.Extra == nil {
				cond.Extra = make(map[string]string)
			}
			s, ok := val.(string)
			if !ok {
				b, err := json.Marshal(val)
				if err != nil {
					return cond, eris.Wrapf(err, "catalog: condition %s", key)
				}
				s = string(b)
			}
			cond.Extra[key] = s
		}
	}
	return cond, nil
}

// UnmarshalConditionJSON decodes a JSON condition column into the typed
// condition. Empty input means an unconditional rule.
func UnmarshalConditionJSON(data []byte) (model.RuleCondition, error) {
	if len(data) == 0 {
		return model.RuleCondition{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.RuleCondition{}, eris.Wrap(err, "catalog: decode condition")
	}
	return MapRuleCondition(raw)
}

// UnmarshalMaterialsJSON decodes a JSON materials column.
func UnmarshalMaterialsJSON(data []byte) ([]model.Material, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var mats []model.Material
	if err := json.Unmarshal(data, &mats); err != nil {
		return nil, eris.Wrap(err, "catalog: decode materials")
	}
	return mats, nil
}

func asInt(val any) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, eris.Errorf("expected number, got %T", val)
	}
}

func asFloat(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, eris.Errorf("expected number, got %T", val)
	}
}
