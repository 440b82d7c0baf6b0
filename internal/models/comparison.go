package models

// Comparison statuses returned by the GitHub compare API
const (
	ComparisonIdentical = "identical"
	ComparisonDiverged  = "diverged"
	ComparisonAhead     = "ahead"
	ComparisonBehind    = "behind"
)

// Comparison is the result of comparing two refs on the hosting service
type Comparison struct {
	Status  string             `json:"status"`
	Commits []ComparisonCommit `json:"commits"`
}

// ComparisonCommit is one commit in a Comparison
type ComparisonCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

// Messages returns the commit messages in API order, empty when the refs are identical
func (c *Comparison) Messages() []string {
	if c == nil || c.Status == ComparisonIdentical {
		return []string{}
	}
	messages := make([]string, 0, len(c.Commits))
	for _, commit := range c.Commits {
		messages = append(messages, commit.Commit.Message)
	}
	return messages
}
