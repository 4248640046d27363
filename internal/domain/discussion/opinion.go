package discussion

import (
	"encoding/json"
	"fmt"
	"strings"

	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/forum"
)

const rawContentLimit = 500

// voteBallot is one approve/reject signal inside an expert's JSON reply.
type voteBallot struct {
	PostID int    `json:"post_id"`
	Value  string `json:"value"`
}

// opinion is the structured reply expected from an expert in rounds >= 2.
type opinion struct {
	Content string       `json:"content"`
	Votes   []voteBallot `json:"votes"`
}

// parseOpinion decodes an expert reply. Models occasionally wrap JSON in
// markdown fences or ignore the format entirely; a reply that does not parse
// still becomes a post from its raw text, with no votes.
func parseOpinion(raw string) opinion {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var parsed opinion
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil || strings.TrimSpace(parsed.Content) == "" {
		return opinion{Content: truncate(strings.TrimSpace(raw), rawContentLimit)}
	}
	return parsed
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func roundOnePrompt(question string, persona expert.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are forum expert %q. %s\n\n", persona.DisplayName, persona.Role)
	fmt.Fprintf(&b, "Discussion topic: %s\n\n", question)
	b.WriteString("You are opening the discussion. State your position in under 200 words, sharp and opinionated. Reply with the position text only, no preamble.")
	return b.String()
}

func discussionPrompt(question string, persona expert.Persona, posts []forum.Post, tallies map[int]voteTally) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are forum expert %q. %s\n\n", persona.DisplayName, persona.Role)
	fmt.Fprintf(&b, "Discussion topic: %s\n\n", question)
	b.WriteString("Current forum posts:\n")
	for _, post := range visiblePosts(persona.ID, posts) {
		tally := tallies[post.ID]
		fmt.Fprintf(&b, "[#%d] %s (round %d, approvals %d/%d): %s\n",
			post.ID, post.Author, post.Round, tally.Approvals, tally.Total, post.Content)
	}
	b.WriteString("\nReply in strict JSON (no markdown fences, no comments):\n")
	b.WriteString("{\n")
	b.WriteString("  \"content\": \"your view (under 200 words, take a clear position)\",\n")
	b.WriteString("  \"votes\": [\n")
	b.WriteString("    {\"post_id\": 1, \"value\": \"approve\"}\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- content: agree with, rebut or extend the posts above with your own take.\n")
	b.WriteString("- votes: votes on other experts' posts; value is \"approve\" or \"reject\". ")
	b.WriteString("Vote on at least one post you did not write. Use [] only if there is nothing to vote on.")
	return b.String()
}

// visiblePosts hides the persona's latest own post so the expert has to
// engage with what the others wrote since its last turn.
func visiblePosts(personaID string, posts []forum.Post) []forum.Post {
	latestOwn := 0
	for _, post := range posts {
		if post.Author == personaID && post.ID > latestOwn {
			latestOwn = post.ID
		}
	}
	if latestOwn == 0 {
		return posts
	}
	visible := make([]forum.Post, 0, len(posts)-1)
	for _, post := range posts {
		if post.ID != latestOwn {
			visible = append(visible, post)
		}
	}
	return visible
}

func synthesisPrompt(question string, roundCount, totalPosts int, top []rankedPost) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the moderator summarizing a multi-expert debate on %q.\n\n", question)
	fmt.Fprintf(&b, "The discussion ran %d rounds and produced %d posts. The most approved positions:\n", roundCount, totalPosts)
	for _, ranked := range top {
		fmt.Fprintf(&b, "[approvals %d/%d] %s: %s\n",
			ranked.Approvals, ranked.TotalVotes, ranked.Post.Author, ranked.Post.Content)
	}
	b.WriteString("\nWrite a balanced, conclusive answer in under 300 words that:\n")
	b.WriteString("1. Summarizes each side's core argument\n")
	b.WriteString("2. Names the main agreements and disagreements\n")
	b.WriteString("3. Ends with a clear recommendation\n")
	return b.String()
}
