package micropub

import (
	"sort"

	"github.com/inkpub/micropub/internal/mf2"
)

// Instruction is a Micropub update request body.
//
// Delete holds either a list of property names or a map from property
// name to the values to remove. It is kept loosely typed so that both
// shapes decode from JSON and malformed shapes can be reported precisely.
type Instruction struct {
	Action  string         `json:"action"`
	URL     string         `json:"url"`
	Replace mf2.Properties `json:"replace,omitempty"`
	Add     mf2.Properties `json:"add,omitempty"`
	Delete  any            `json:"delete,omitempty"`
}

// deletion is the validated form of Instruction.Delete.
type deletion struct {
	names  []string
	values map[string][]any
}

// Apply returns a new document with the instruction's delete, replace and
// add operations applied, in that order. doc is never modified. Nothing is
// applied unless the whole instruction is valid.
func Apply(doc *mf2.Document, ins *Instruction) (*mf2.Document, error) {
	if doc == nil || doc.Mf2 == nil {
		return nil, newError(ErrInvalidTarget, "no post found to update")
	}
	if ins == nil {
		return nil, newError(ErrInvalidInstruction, "missing update instruction")
	}
	del, err := parseDeletion(ins.Delete)
	if err != nil {
		return nil, err
	}
	if err := checkValues("replace", ins.Replace); err != nil {
		return nil, err
	}
	if err := checkValues("add", ins.Add); err != nil {
		return nil, err
	}

	out := doc.Clone()
	props := out.Mf2.Properties
	if props == nil {
		props = mf2.Properties{}
		out.Mf2.Properties = props
	}

	for _, name := range del.names {
		delete(props, name)
	}
	for _, name := range sortedKeys(del.values) {
		if _, ok := props[name]; !ok {
			continue
		}
		props.Set(name, props.Without(name, del.values[name]))
	}

	for _, name := range ins.Replace.Names() {
		props.Set(name, append([]any(nil), ins.Replace[name]...))
	}

	for _, name := range ins.Add.Names() {
		props.Append(name, ins.Add[name]...)
	}

	return out, nil
}

// checkValues rejects a property given as null rather than an array. An
// empty array is allowed: replace removes the property and add does nothing.
func checkValues(section string, props mf2.Properties) error {
	for _, name := range props.Names() {
		if props[name] == nil {
			return newError(ErrInvalidInstruction, "%s.%s should be an array", section, name)
		}
	}
	return nil
}

func parseDeletion(v any) (deletion, error) {
	var d deletion
	switch del := v.(type) {
	case nil:
	case []string:
		d.names = del
	case []any:
		for _, item := range del {
			name, ok := item.(string)
			if !ok {
				return d, newError(ErrInvalidInstruction, "delete should be an array of property names")
			}
			d.names = append(d.names, name)
		}
	case map[string][]any:
		d.values = del
	case mf2.Properties:
		d.values = del
	case map[string]any:
		d.values = make(map[string][]any, len(del))
		for _, name := range sortedKeys(del) {
			values, ok := asSequence(del[name])
			if !ok {
				return d, newError(ErrTypeMismatch, "%s should be an array", name)
			}
			d.values[name] = values
		}
	default:
		return d, newError(ErrInvalidInstruction, "delete should be an array or an object")
	}
	return d, nil
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, str := range s {
			out[i] = str
		}
		return out, true
	}
	return nil, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
