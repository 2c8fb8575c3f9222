package models

// PullRequest holds the pull request fields the runner needs
type PullRequest struct {
	Number  int
	BaseRef string
	BaseSHA string
	HeadRef string
	HeadSHA string
}

type Comment struct {
	ID   int64
	Body string
}
