package registry

// ToolSummary is one entry of the registry's tool list.
type ToolSummary struct {
	Name        string `json:"name"`
	OperationID string `json:"operationId"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// ToolParameter is one declared parameter of a registry tool.
// DefaultValue and Example are nil when the registry does not send them.
type ToolParameter struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Required     bool   `json:"required"`
	DefaultValue any    `json:"defaultValue,omitempty"`
	Description  string `json:"description"`
	Example      any    `json:"example,omitempty"`
}

// HasDefault reports whether an absent argument should be filled from DefaultValue.
// Required parameters never have one.
func (p ToolParameter) HasDefault() bool {
	return !p.Required && p.DefaultValue != nil
}

// ToolDescriptor is a registry tool with its parameter list. It is replaced
// wholesale on refresh and never mutated.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	OperationID string          `json:"operationId"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// IsZero reports whether d is the empty descriptor returned for a failed lookup.
func (d ToolDescriptor) IsZero() bool {
	return d.Name == "" && d.OperationID == "" && d.DisplayName == "" &&
		d.Description == "" && len(d.Parameters) == 0
}

// Status is the registry health document.
type Status struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	ToolCount int    `json:"toolCount"`
}

func descriptorFromSummary(s ToolSummary) ToolDescriptor {
	return ToolDescriptor{
		Name:        s.Name,
		OperationID: s.OperationID,
		DisplayName: s.DisplayName,
		Description: s.Description,
	}
}

// normalizeParameters drops defaults on required parameters.
func normalizeParameters(params []ToolParameter) []ToolParameter {
	out := make([]ToolParameter, len(params))
	for i, p := range params {
		if p.Required {
			p.DefaultValue = nil
		}
		out[i] = p
	}
	return out
}
