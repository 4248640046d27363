package discussion

import (
	"sort"

	"agora-server/services/forum-api/internal/domain/forum"
)

// voteTally aggregates the live votes on one post. Because the store keeps a
// single vote per (post, voter) pair, Total is also the distinct voter count.
type voteTally struct {
	Approvals int
	Total     int
}

func tallyVotes(votes []forum.Vote) map[int]voteTally {
	tallies := make(map[int]voteTally, len(votes))
	for _, vote := range votes {
		tally := tallies[vote.PostID]
		tally.Total++
		if vote.Value == forum.VoteApprove {
			tally.Approvals++
		}
		tallies[vote.PostID] = tally
	}
	return tallies
}

// rankedPost is a post annotated with its approval standing.
type rankedPost struct {
	Post       forum.Post
	Approvals  int
	TotalVotes int
	Ratio      float64
}

// rankPosts orders all posts by approval ratio, best first. Ties break on
// earlier creation time, then lower post ID, so rankings are deterministic.
func rankPosts(snap *forum.Snapshot) []rankedPost {
	tallies := tallyVotes(snap.Votes)

	ranked := make([]rankedPost, 0, len(snap.Posts))
	for _, post := range snap.Posts {
		tally := tallies[post.ID]
		entry := rankedPost{Post: post, Approvals: tally.Approvals, TotalVotes: tally.Total}
		if tally.Total > 0 {
			entry.Ratio = float64(tally.Approvals) / float64(tally.Total)
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Ratio != ranked[j].Ratio {
			return ranked[i].Ratio > ranked[j].Ratio
		}
		if !ranked[i].Post.CreatedAt.Equal(ranked[j].Post.CreatedAt) {
			return ranked[i].Post.CreatedAt.Before(ranked[j].Post.CreatedAt)
		}
		return ranked[i].Post.ID < ranked[j].Post.ID
	})
	return ranked
}

// consensusReached reports whether the best-ranked post clears the approval
// threshold with votes from a majority of the participating experts. The
// majority guard keeps a single early approval from concluding a large panel.
func consensusReached(ranked []rankedPost, threshold float64, participants int) bool {
	if len(ranked) == 0 || participants <= 0 {
		return false
	}
	best := ranked[0]
	majority := participants/2 + 1
	return best.TotalVotes >= majority && best.Ratio >= threshold
}
