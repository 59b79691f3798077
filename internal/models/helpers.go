// Package models defines the data structures shared across srsbot.
package models

// UserTurn builds a turn spoken by the user.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn builds a turn spoken by the assistant.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}
