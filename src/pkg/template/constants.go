package template

const (
	// ToolCommentSignature heads every report comment; it is how the comment is found again
	ToolCommentSignature    = `<!-- gitops-argodiff: auto-generated comment, please do not remove -->`
	FileNameCommentTemplate = "comment.md.tmpl"
	FileNameAppTemplate     = "app.md.tmpl"

	SymbolDiffGenerated = "✅"
	SymbolDiffFailed    = "❌"
	SymbolInSync        = "🟢"
	SymbolOutOfSync     = "🟡"
)
