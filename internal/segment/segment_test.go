// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_BestMatch(t *testing.T) {
	m := NewMatcher([]string{"A B", "AB", "专栏 ｜ 测试标题", "封面故事"})

	tests := []struct {
		name    string
		heading string
		want    string
		wantOK  bool
	}{
		{"exact", "封面故事", "封面故事", true},
		{"bar and spacing normalized", "专栏|测试 标题", "专栏 | 测试标题", true},
		{"first outline title wins ties", "AB", "A B", true},
		{"doubled heading", "封面故事 封面故事", "封面故事", true},
		{"no match", "广告", "", false},
		{"substring is not a primary match", "封面故事（续）", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.BestMatch(tt.heading)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcher_Recognizes(t *testing.T) {
	m := NewMatcher([]string{"专栏 | 测试"})
	assert.True(t, m.Recognizes("专栏｜测试"))
	assert.False(t, m.Recognizes("专栏"))
}

func TestSegment_SingleArticle(t *testing.T) {
	transcript := "## 专栏 | 测试\n content here\n\n## Next\n..."
	m := NewMatcher([]string{"专栏 | 测试", "Next"})

	sections := Segment(transcript, m)

	require.Contains(t, sections, "专栏 | 测试")
	sec := sections["专栏 | 测试"]
	assert.Equal(t, "content here", sec.Content)
	assert.Empty(t, sec.Image)
	assert.Empty(t, sec.Disclaimer)
}

func TestSegment_UnmatchedHeadingsStayInBody(t *testing.T) {
	transcript := "## 专栏 | 测试\n content here\n\n## Next\n..."
	m := NewMatcher([]string{"专栏 | 测试"})

	sections := Segment(transcript, m)

	assert.Equal(t, "content here\n\n## Next\n...", sections["专栏 | 测试"].Content)
}

func TestSegment_Coverage(t *testing.T) {
	transcript := "前言\n# 甲\n甲正文\n## 乙\n乙正文\n## 丙\n丙正文\n"
	m := NewMatcher([]string{"丙", "甲", "乙"})

	sections := Segment(transcript, m)

	require.Len(t, sections, 3)
	assert.Equal(t, "甲正文", sections["甲"].Content)
	assert.Equal(t, "乙正文", sections["乙"].Content)
	assert.Equal(t, "丙正文", sections["丙"].Content)
}

func TestSegment_FirstOccurrenceWins(t *testing.T) {
	transcript := "## A\na1\n## B\nb1\n## A\na2\n"
	m := NewMatcher([]string{"A", "B"})

	sections := Segment(transcript, m)

	require.Len(t, sections, 2)
	assert.Equal(t, "a1", sections["A"].Content)
	assert.Equal(t, "b1\n## A\na2", sections["B"].Content)
}

func TestSegment_IgnoresDeeperHeadings(t *testing.T) {
	m := NewMatcher([]string{"A"})
	assert.Empty(t, Segment("### A\nbody", m))
}

func TestSegment_HeadingAtEndOfTranscript(t *testing.T) {
	m := NewMatcher([]string{"A"})

	sections := Segment("intro\n## A", m)

	require.Contains(t, sections, "A")
	assert.Empty(t, sections["A"].Content)
}

func TestSegment_ImagesAndDisclaimer(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantImage      string
		wantContent    string
		wantDisclaimer string
	}{
		{
			name:        "html img preferred over markdown image",
			body:        "![](https://img/0.png)\n<IMG alt=\"x\" src=\"https://img/1.png\">\n正文",
			wantImage:   "https://img/1.png",
			wantContent: "![](https://img/0.png)\n<IMG alt=\"x\" src=\"https://img/1.png\">\n正文",
		},
		{
			name:        "markdown image",
			body:        "正文\n![封面](https://img/2.jpg)",
			wantImage:   "https://img/2.jpg",
			wantContent: "正文\n![封面](https://img/2.jpg)",
		},
		{
			name:        "markdown image with title is not a reference",
			body:        "![封面](https://img/2.jpg \"title\")",
			wantContent: "![封面](https://img/2.jpg \"title\")",
		},
		{
			name:           "disclaimer extracted",
			body:           DisclaimerMarker + "：仅供参考\n\n正文",
			wantContent:    "正文",
			wantDisclaimer: DisclaimerMarker + "：仅供参考",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher([]string{"A"})
			sec := Segment("## A\n"+tt.body, m)["A"]
			assert.Equal(t, tt.wantImage, sec.Image)
			assert.Equal(t, tt.wantContent, sec.Content)
			assert.Equal(t, tt.wantDisclaimer, sec.Disclaimer)
		})
	}
}

func TestFindSection_Containment(t *testing.T) {
	transcript := "## 封面故事：芯片战争 特别报道\n正文一\n## 图片说明\n正文二\n## 乙\n乙正文"
	m := NewMatcher([]string{"封面故事：芯片战争", "乙"})

	sec, ok := FindSection(transcript, "封面故事：芯片战争", m)

	require.True(t, ok)
	assert.Equal(t, "正文一\n## 图片说明\n正文二", sec.Content)
}

func TestFindSection_RunsToEndWithoutNextOutlineHeading(t *testing.T) {
	transcript := "## 前缀 丁\n正文\n## 杂项\n更多"
	m := NewMatcher([]string{"丁"})

	sec, ok := FindSection(transcript, "丁", m)

	require.True(t, ok)
	assert.Equal(t, "正文\n## 杂项\n更多", sec.Content)
}

func TestFindSection_OnlyH2(t *testing.T) {
	m := NewMatcher([]string{"丁"})
	_, ok := FindSection("# 前缀 丁 后缀\n正文", "丁", m)
	assert.False(t, ok)
}

func TestFindSection_EmptyTarget(t *testing.T) {
	m := NewMatcher([]string{"丁"})
	_, ok := FindSection("## 丁\n正文", "  ", m)
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	transcript := "## 封面故事：芯片战争 特别报道\n正文一\n## 图片说明\n正文二\n## 乙\n乙正文"
	titles := []string{"封面故事：芯片战争", "乙", "不存在"}

	results := Resolve(transcript, titles)

	require.Len(t, results, 3)

	assert.Equal(t, FallbackMatched, results[0].Resolution)
	assert.Equal(t, "正文一\n## 图片说明\n正文二", results[0].Section.Content)

	assert.Equal(t, PrimaryMatched, results[1].Resolution)
	assert.Equal(t, "乙正文", results[1].Section.Content)

	assert.Equal(t, Unresolved, results[2].Resolution)
	assert.Equal(t, Section{}, results[2].Section)
	assert.Equal(t, "unresolved", results[2].Resolution.String())
}

func TestSegment_DisclaimerAtArticleTail(t *testing.T) {
	m := NewMatcher([]string{"X", "Y"})

	tests := []struct {
		name       string
		transcript string
	}{
		{name: "lf", transcript: "## X\n" + DisclaimerMarker + "\nl1\nl2\nl3\n## Y\nbody"},
		{name: "crlf", transcript: "## X\r\n" + DisclaimerMarker + "\r\nl1\r\nl2\r\nl3\r\n## Y\r\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := Segment(tt.transcript, m)
			assert.Equal(t, "l3", sections["X"].Content)
			assert.Equal(t, DisclaimerMarker+"\nl1\nl2", sections["X"].Disclaimer)
			assert.Equal(t, "body", sections["Y"].Content)
		})
	}
}
