package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.True(t, RoleSystem.Valid())
	assert.False(t, Role("tool").Valid())
	assert.Equal(t, "assistant", RoleAssistant.String())
}

func TestChatName(t *testing.T) {
	assert.Equal(t, DefaultChatName, ChatName(""))
	assert.Equal(t, DefaultChatName, ChatName("   "))
	assert.Equal(t, "Trip plans", ChatName("  Trip plans "))
}

func TestProjectContext_KeepsOrder(t *testing.T) {
	history := []*Message{
		{ID: "1", Seq: 1, Role: RoleUser, Content: "hi"},
		{ID: "2", Seq: 2, Role: RoleAssistant, Content: "hello"},
		{ID: "3", Seq: 3, Role: RoleUser, Content: "hi"},
	}

	got := ProjectContext(history)

	assert.Equal(t, []ContextMessage{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "hi"},
	}, got)
}

func TestProjectContext_Empty(t *testing.T) {
	got := ProjectContext(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
