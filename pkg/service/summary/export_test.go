package summary

var (
	BuildSummaryPrompt = buildSummaryPrompt
	BuildExplainPrompt = buildExplainPrompt
	ParseExplanations  = parseExplanations
	TruncateRunes      = truncateRunes
)
