package models

import "testing"

func TestTurnConstructors(t *testing.T) {
	if got := UserTurn("hi"); got.Role != RoleUser || got.Text != "hi" {
		t.Errorf("UserTurn() = %+v", got)
	}
	if got := AssistantTurn("hello"); got.Role != RoleAssistant || got.Text != "hello" {
		t.Errorf("AssistantTurn() = %+v", got)
	}
}
