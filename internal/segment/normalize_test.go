// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace and unifies bar", "  专栏  ｜ 测试 ", "专栏 | 测试"},
		{"tabs and newlines", "a\tb\n c", "a b c"},
		{"ideographic space", "专栏　测试", "专栏 测试"},
		{"self duplication", "A B A B", "A B"},
		{"nested self duplication", "A A A A", "A"},
		{"ocr doubled title", "专栏 | 与境外罪犯离婚有多难 专栏 | 与境外罪犯离婚有多难", "专栏 | 与境外罪犯离婚有多难"},
		{"unequal halves kept", "A B A C", "A B A C"},
		{"odd token count kept", "A B A", "A B A"},
		{"empty", "", ""},
		{"whitespace only", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.in))
		})
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	inputs := []string{
		"A A A A",
		"A B A B A B A B",
		"  专栏 ｜ 测试 专栏 | 测试  ",
		"x",
		"",
		"封面故事｜芯片 战争",
		"a  a",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		assert.Equal(t, once, NormalizeTitle(once), "input %q", in)
	}
}

func TestNormalizeTitle_SelfDuplicationMatchesHalf(t *testing.T) {
	assert.Equal(t, NormalizeTitle("A B"), NormalizeTitle("A B A B"))
}

func TestCompactTitle(t *testing.T) {
	assert.Equal(t, "专栏|测试标题", CompactTitle(" 专栏 ｜ 测试 标题"))
}
