package evidence

const retrievePrompt = `Search for: "%s"

Find %d credible sources. Prioritize .edu, .gov, encyclopedias and established news organizations.

Return ONLY a JSON array:
[{"url": "full url", "title": "page title", "snippet": "relevant quote that addresses the claim", "domain": "domain name"}]`

const answerPrompt = `You answer questions ONLY with information backed by verifiable sources.

USER QUESTION: "%s"

INSTRUCTIONS:
1. Search the web to find the answer.
2. Prefer authoritative sources: encyclopedias, government and educational sites, established news organizations.
3. Give a clear, direct answer based on what you find and note whether the sources agree.
4. Say so plainly if you cannot find reliable information. Never make anything up.
5. Use professional language without contractions.

Respond with ONLY this JSON:
{
  "answer": "clear, direct answer based on the sources",
  "confidence": "high" | "medium" | "low",
  "sources": [{"url": "URL", "title": "title", "snippet": "relevant quote", "domain": "domain.com"}],
  "agreementCount": number of sources that agree with the answer
}`
