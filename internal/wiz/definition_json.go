package wiz

import "encoding/json"

// rawVariant mirrors the on-disk JSON shape for a Variant, in the key
// order spec.md §6 mandates: identifier, command, environ, requirements,
// constraints.
type rawVariant struct {
	Identifier   string            `json:"identifier"`
	Command      map[string]string `json:"command,omitempty"`
	Environ      map[string]string `json:"environ,omitempty"`
	Requirements []string          `json:"requirements,omitempty"`
	Constraints  []string          `json:"constraints,omitempty"`
}

// rawDefinition mirrors the on-disk JSON shape for a Definition, in the
// canonical key order spec.md §6 mandates: identifier, version,
// description, registry, definition-location, install-location, auto-use,
// system, command, environ, requirements, constraints, variants.
type rawDefinition struct {
	Identifier         string            `json:"identifier"`
	Version            string            `json:"version,omitempty"`
	Description        string            `json:"description,omitempty"`
	Registry           string            `json:"registry,omitempty"`
	DefinitionLocation string            `json:"definition-location,omitempty"`
	InstallLocation    string            `json:"install-location,omitempty"`
	AutoUse            bool              `json:"auto-use,omitempty"`
	System             map[string]string `json:"system,omitempty"`
	Command            map[string]string `json:"command,omitempty"`
	Environ            map[string]string `json:"environ,omitempty"`
	Requirements       []string          `json:"requirements,omitempty"`
	Constraints        []string          `json:"constraints,omitempty"`
	Variants           []rawVariant      `json:"variants,omitempty"`
	Disabled           bool              `json:"disabled,omitempty"`
}

func requirementsToStrings(reqs []Requirement) []string {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.String()
	}
	return out
}

func stringsToRequirements(raw []string) ([]Requirement, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Requirement, len(raw))
	for i, s := range raw {
		req, err := ParseRequirement(s)
		if err != nil {
			return nil, err
		}
		out[i] = req
	}
	return out, nil
}

func (d Definition) toRaw() rawDefinition {
	raw := rawDefinition{
		Identifier:         d.Identifier,
		Description:        d.Description,
		Registry:           d.RegistryRoot(),
		DefinitionLocation: d.DefinitionLocation(),
		InstallLocation:    d.InstallLocation(),
		AutoUse:            d.AutoUse,
		System:             d.System,
		Command:            d.Command,
		Environ:            d.Environ,
		Requirements:       requirementsToStrings(d.Requirements),
		Constraints:        requirementsToStrings(d.Constraints),
	}
	if !d.Version.IsUnknown() {
		raw.Version = d.Version.String()
	}
	for _, v := range d.Variants {
		raw.Variants = append(raw.Variants, rawVariant{
			Identifier:   v.Identifier,
			Command:      v.Command,
			Environ:      v.Environ,
			Requirements: requirementsToStrings(v.Requirements),
			Constraints:  requirementsToStrings(v.Constraints),
		})
	}
	return raw
}

// MarshalJSON serializes the definition in the canonical key order
// mandated by spec.md §6.
func (d Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.toRaw())
}

// UnmarshalJSON parses a definition file per spec.md §6's format. Invalid
// version or requirement strings are surfaced as the corresponding
// InvalidVersion/InvalidRequirement WizError.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw rawDefinition
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.fromRaw(raw)
}

func (d *Definition) fromRaw(raw rawDefinition) error {
	version, err := ParseVersion(raw.Version)
	if err != nil {
		return err
	}

	requirements, err := stringsToRequirements(raw.Requirements)
	if err != nil {
		return err
	}
	constraints, err := stringsToRequirements(raw.Constraints)
	if err != nil {
		return err
	}

	variants := make([]Variant, len(raw.Variants))
	for i, rv := range raw.Variants {
		vreqs, err := stringsToRequirements(rv.Requirements)
		if err != nil {
			return err
		}
		vcons, err := stringsToRequirements(rv.Constraints)
		if err != nil {
			return err
		}
		variants[i] = Variant{
			Identifier:   rv.Identifier,
			Command:      rv.Command,
			Environ:      rv.Environ,
			Requirements: vreqs,
			Constraints:  vcons,
		}
	}

	*d = Definition{
		Identifier:   raw.Identifier,
		Version:      version,
		Description:  raw.Description,
		AutoUse:      raw.AutoUse,
		System:       raw.System,
		Command:      raw.Command,
		Environ:      raw.Environ,
		Requirements: requirements,
		Constraints:  constraints,
		Variants:     variants,
	}

	if raw.Registry != "" {
		*d = d.WithRegistryRoot(raw.Registry)
	}
	if raw.DefinitionLocation != "" {
		*d = d.WithDefinitionLocation(raw.DefinitionLocation)
	}
	if raw.InstallLocation != "" {
		*d = d.withExtra(extraInstallLocation, raw.InstallLocation)
	}

	if d.Identifier == "" {
		return IncorrectDefinition("definition is missing required field \"identifier\"")
	}

	return nil
}

// disabledFromRaw reports the "disabled" flag without fully decoding the
// definition, so discovery can skip disabled definitions (spec.md §6)
// before doing the (slightly) more expensive full parse.
func disabledFromRaw(data []byte) (bool, error) {
	var probe struct {
		Disabled bool `json:"disabled"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false, err
	}
	return probe.Disabled, nil
}
