package research

import "fmt"

func queryWriterPrompt(topic string) string {
	return fmt.Sprintf(`Your goal is to generate a targeted search query for a document knowledge base.
The query will be embedded and matched against passages from the indexed documents.

<TOPIC>
%s
</TOPIC>

Return the JSON object directly without any formatting or additional text, with exactly these keys:
- "query": the search query string
- "aspect": the specific aspect of the topic being researched
- "rationale": a brief explanation of why this query is relevant

Example:
{"query": "machine learning transformer architecture explained", "aspect": "technical architecture", "rationale": "Understanding the fundamental structure of transformer models"}`, topic)
}

const summarizerPrompt = `Generate a high-quality summary of the provided search results that addresses the user's topic.

When creating a NEW summary:
1. Highlight the most relevant information related to the topic from the search results
2. Ensure a coherent flow of information

When EXTENDING an existing summary:
1. Read the existing summary and the new search results carefully
2. Integrate information that relates to existing points into the same paragraph
3. Add a new paragraph only for genuinely new information
4. Skip information that is not relevant to the topic

Start directly with the updated summary, without preamble or titles. Do not use XML tags in the output.`

func reflectionPrompt(topic string) string {
	return fmt.Sprintf(`You are an expert research assistant analyzing a summary about %s.

Identify knowledge gaps or areas that need deeper exploration and generate a follow-up question that would help expand the understanding.
Focus on technical details, implementation specifics or emerging trends that were not fully covered.
The follow-up question must be self-contained and include the context needed for a knowledge base search.

Return the JSON object directly without any formatting or additional text, with exactly this key:
- "follow_up_query": the follow-up search query

Example:
{"follow_up_query": "What are typical performance benchmarks and metrics used to evaluate [specific technology]?"}`, topic)
}

const queryWriterUserMessage = "Generate a query for research:"

func summarizeUserMessage(existingSummary, latestResult, topic string) string {
	if existingSummary != "" {
		return fmt.Sprintf("Extend the existing summary: %s\n\nInclude new search results: %s That addresses the following topic: %s",
			existingSummary, latestResult, topic)
	}
	return fmt.Sprintf("Generate a summary of these search results: %s That addresses the following topic: %s",
		latestResult, topic)
}

func reflectionUserMessage(summary string) string {
	return fmt.Sprintf("Identify a knowledge gap and generate a follow-up web search query based on our existing knowledge: %s", summary)
}
