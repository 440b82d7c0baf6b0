package models

// CommitInfo contains information about a git commit
type CommitInfo struct {
	// Hash is the short commit hash (7 characters)
	Hash string
	// Message is the first line of commit message
	Message string
}

// NewCommitInfo creates a new CommitInfo
func NewCommitInfo(hash, message string) CommitInfo {
	return CommitInfo{
		Hash:    hash,
		Message: message,
	}
}

// Oneline renders the commit the way `git log --oneline` does
func (c CommitInfo) Oneline() string {
	if c.Hash == "" {
		return c.Message
	}
	return c.Hash + " " + c.Message
}

// OnelineMessages converts commits into the message list the reconciler consumes
func OnelineMessages(commits []CommitInfo) []string {
	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		messages = append(messages, c.Oneline())
	}
	return messages
}
