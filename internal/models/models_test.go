package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole_NormalizesCasingAndSpace(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"user", RoleUser},
		{"User", RoleUser},
		{"USER", RoleUser},
		{"  user  ", RoleUser},
		{"assistant", RoleAssistant},
		{"Assistant", RoleAssistant},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		assert.True(t, ok, "ParseRole(%q)", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseRole_RejectsOutsideTheClosedSet(t *testing.T) {
	for _, in := range []string{"", "system", "tool", "userx", "assistant role"} {
		_, ok := ParseRole(in)
		assert.False(t, ok, "ParseRole(%q)", in)
	}
}
