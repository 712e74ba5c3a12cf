package models

import "strings"

// CommandType enumerates the self-service requests clients can send over WhatsApp.
type CommandType string

const (
	CommandBill    CommandType = "bill"
	CommandMeals   CommandType = "meals"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"bill":    CommandBill,
	"total":   CommandBill,
	"meals":   CommandMeals,
	"meal":    CommandMeals,
	"tiffin":  CommandMeals,
	"help":    CommandHelp,
	"hi":      CommandHelp,
	"hello":   CommandHelp,
	"menu":    CommandHelp,
	"options": CommandHelp,
}

// Command represents a parsed client request extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text such as "/bill 2024-05"
// or "Meals".
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.ToLower(message))
	if len(tokens) == 0 {
		return cmd
	}

	if t, ok := commandAliases[strings.TrimPrefix(tokens[0], "/")]; ok {
		cmd.Type = t
	}
	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
