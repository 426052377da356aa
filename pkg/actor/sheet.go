package actor

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed sheets/marlowe.yaml
var defaultSheet []byte

// DefaultSheet returns the session's fixed starting player character.
func DefaultSheet() (*PlayerCharacter, error) {
	return LoadSheet(defaultSheet)
}

// LoadSheet parses a YAML character sheet. A sheet without an hp entry
// starts at full HP.
func LoadSheet(data []byte) (*PlayerCharacter, error) {
	var pc PlayerCharacter
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("failed to parse character sheet: %w", err)
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse character sheet: %w", err)
	}
	if _, ok := keys["hp"]; !ok {
		pc.HP = pc.HPMax
	}

	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid character sheet: %w", err)
	}
	pc.normalizeConditions()
	return &pc, nil
}
