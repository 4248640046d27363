package discussion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/forum"
)

func TestParseOpinion_StrictJSON(t *testing.T) {
	parsed := parseOpinion(`{"content": "agree with the critic", "votes": [{"post_id": 2, "value": "approve"}]}`)
	assert.Equal(t, "agree with the critic", parsed.Content)
	require.Len(t, parsed.Votes, 1)
	assert.Equal(t, 2, parsed.Votes[0].PostID)
	assert.Equal(t, "approve", parsed.Votes[0].Value)
}

func TestParseOpinion_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"content\": \"fenced reply\", \"votes\": []}\n```"
	parsed := parseOpinion(raw)
	assert.Equal(t, "fenced reply", parsed.Content)
	assert.Empty(t, parsed.Votes)

	raw = "```\n{\"content\": \"bare fence\", \"votes\": [{\"post_id\": 1, \"value\": \"reject\"}]}\n```"
	parsed = parseOpinion(raw)
	assert.Equal(t, "bare fence", parsed.Content)
	require.Len(t, parsed.Votes, 1)
}

func TestParseOpinion_FallsBackToRawText(t *testing.T) {
	parsed := parseOpinion("I simply disagree with everything said so far.")
	assert.Equal(t, "I simply disagree with everything said so far.", parsed.Content)
	assert.Empty(t, parsed.Votes)
}

func TestParseOpinion_EmptyContentFallsBack(t *testing.T) {
	raw := `{"content": "", "votes": [{"post_id": 1, "value": "approve"}]}`
	parsed := parseOpinion(raw)
	// A vote-only reply is kept as raw text so the round still gets a post.
	assert.Equal(t, raw, parsed.Content)
	assert.Empty(t, parsed.Votes)
}

func TestParseOpinion_TruncatesLongRawReplies(t *testing.T) {
	raw := strings.Repeat("x", rawContentLimit+100)
	parsed := parseOpinion(raw)
	assert.Len(t, parsed.Content, rawContentLimit+3)
	assert.True(t, strings.HasSuffix(parsed.Content, "..."))
}

func TestVisiblePosts_HidesLatestOwnPost(t *testing.T) {
	posts := []forum.Post{
		{ID: 1, Author: "critic", Round: 1},
		{ID: 2, Author: "visionary", Round: 1},
		{ID: 3, Author: "critic", Round: 2},
	}

	visible := visiblePosts("critic", posts)
	require.Len(t, visible, 2)
	assert.Equal(t, 1, visible[0].ID)
	assert.Equal(t, 2, visible[1].ID)

	// A persona with no posts sees everything.
	assert.Len(t, visiblePosts("analyst", posts), 3)
}

func TestDiscussionPrompt_IncludesTallies(t *testing.T) {
	persona := expert.Persona{ID: "analyst", DisplayName: "Data Analyst", Role: "numbers only"}
	posts := []forum.Post{{ID: 1, Author: "visionary", Round: 1, Content: "go bold"}}
	tallies := map[int]voteTally{1: {Approvals: 2, Total: 3}}

	prompt := discussionPrompt("rewrite or refactor?", persona, posts, tallies)
	assert.Contains(t, prompt, "rewrite or refactor?")
	assert.Contains(t, prompt, "[#1] visionary (round 1, approvals 2/3): go bold")
	assert.Contains(t, prompt, "strict JSON")
}

func TestRoundOnePrompt_OpensDiscussion(t *testing.T) {
	persona := expert.Persona{ID: "critic", DisplayName: "Critic", Role: "find the flaws"}
	prompt := roundOnePrompt("should we self-host?", persona)
	assert.Contains(t, prompt, "opening the discussion")
	assert.Contains(t, prompt, "should we self-host?")
	assert.Contains(t, prompt, "find the flaws")
}
