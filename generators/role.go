package generators

type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant" // for OpenAI
	RoleModel     Role = "model"     // for Gemini
	RoleTool      Role = "tool"
)

// IsReasoner reports whether r is the role of reasoning service output.
func (r Role) IsReasoner() bool {
	return r == RoleModel || r == RoleAssistant
}
