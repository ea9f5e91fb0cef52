// Package llm is the deprecated former home of the chat model contract.
// Symbols moved to github.com/viant/vendly/llms; this package re-exports
// them and records the relocation in an explicit lookup table.
package llm

import (
	"github.com/viant/vendly/llms"
)

// Deprecated: use llms.Message.
type Message = llms.Message

// Deprecated: use llms.Generation.
type Generation = llms.Generation

// Deprecated: use llms.Usage.
type Usage = llms.Usage

// Deprecated: use llms.ChatRequest.
type ChatRequest = llms.ChatRequest

// Deprecated: use llms.ChatResponse.
type ChatResponse = llms.ChatResponse

// Deprecated: use llms.ChatModel.
type ChatModel = llms.ChatModel

// Deprecated: use the llms role constants.
const (
	RoleSystem    = llms.RoleSystem
	RoleUser      = llms.RoleUser
	RoleAssistant = llms.RoleAssistant
)

const llmsPath = "github.com/viant/vendly/llms"

// moved maps symbols previously defined in this package to their new
// import path.
var moved = map[string]string{
	"Message":       llmsPath,
	"Generation":    llmsPath,
	"Usage":         llmsPath,
	"ChatRequest":   llmsPath,
	"ChatResponse":  llmsPath,
	"ChatModel":     llmsPath,
	"RoleSystem":    llmsPath,
	"RoleUser":      llmsPath,
	"RoleAssistant": llmsPath,
}

// MovedTo reports the import path a symbol relocated to, and whether the
// symbol is known to this package.
func MovedTo(symbol string) (string, bool) {
	path, ok := moved[symbol]
	return path, ok
}
