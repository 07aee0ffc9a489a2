package model

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// RegisterMessage is the discovery announcement the automation platform
// consumes to materialise an entity.
type RegisterMessage struct {
	Tilda        string         `json:"~"`
	Name         string         `json:"name"`
	ID           string         `json:"unique_id"`
	StateTopic   string         `json:"state_topic"`
	CommandTopic string         `json:"command_topic,omitempty"`
	Device       RegisterDevice `json:"device"`
}
