package state

// CharacterStateDelta is a relative change to one character. Zero fields
// are no-ops.
type CharacterStateDelta struct {
	HP               int      `json:"hp,omitempty" jsonschema:"signed HP change; healing only for the PC"`
	Stress           int      `json:"stress,omitempty" jsonschema:"signed stress change; overflow past stress_max becomes HP loss"`
	Hope             int      `json:"hope,omitempty" jsonschema:"signed Hope change, PC only"`
	ArmorSlots       int      `json:"armor_slots,omitempty" jsonschema:"signed armor slot change, PC only"`
	AddConditions    []string `json:"add_conditions,omitempty" jsonschema:"condition labels to add"`
	RemoveConditions []string `json:"remove_conditions,omitempty" jsonschema:"condition labels to remove"`
}

// IsEmpty checks if the delta changes nothing.
func (d *CharacterStateDelta) IsEmpty() bool {
	return d == nil || (d.HP == 0 &&
		d.Stress == 0 &&
		d.Hope == 0 &&
		d.ArmorSlots == 0 &&
		len(d.AddConditions) == 0 &&
		len(d.RemoveConditions) == 0)
}
