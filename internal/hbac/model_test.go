package hbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleElementMatchCategoryAll(t *testing.T) {
	el := newElement(KindUser)
	el.CategoryAll = true
	require.True(t, el.Match("anyone", nil))
}

func TestRuleElementMatchByName(t *testing.T) {
	el := newElement(KindUser)
	el.Names["alice"] = struct{}{}
	require.True(t, el.Match("alice", nil))
	require.False(t, el.Match("bob", nil))
}

func TestRuleElementMatchByGroup(t *testing.T) {
	el := newElement(KindUser)
	el.Groups["admins"] = struct{}{}
	require.True(t, el.Match("alice", []string{"users", "admins"}))
	require.False(t, el.Match("alice", []string{"users"}))
}

func TestDecisionString(t *testing.T) {
	require.Equal(t, "allow", Allow.String())
	require.Equal(t, "deny", Deny.String())
	require.Equal(t, "out-of-memory", OutOfMemory.String())
	require.Equal(t, "error", DecisionError.String())
}
