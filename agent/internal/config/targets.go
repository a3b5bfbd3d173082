package config

// DefaultTargets returns the built-in target set: four model services, each
// watched through the newest-posts feed of its community subreddit.
// A fresh slice is returned on every call.
func DefaultTargets() []Target {
	return []Target{
		{
			Name:             "GPT-4",
			Feed:             "https://www.reddit.com/r/ChatGPT/new.rss",
			DegradationWords: []string{"slow", "lag", "stuck", "taking forever", "latency", "spinning"},
			OutageWords:      []string{"down", "outage", "broken", "error", "service unavailable", "crash"},
		},
		{
			Name:             "Gemini",
			Feed:             "https://www.reddit.com/r/GeminiAI/new.rss",
			DegradationWords: []string{"slow", "lag", "thinking", "stuck"},
			OutageWords:      []string{"down", "outage", "broken", "error"},
		},
		{
			Name:             "Claude",
			Feed:             "https://www.reddit.com/r/ClaudeAI/new.rss",
			DegradationWords: []string{"slow", "lag", "limit", "stuck", "wait"},
			OutageWords:      []string{"down", "outage", "refusal", "error", "404", "ban"},
		},
		{
			Name:             "Grok",
			Feed:             "https://www.reddit.com/r/Grok/new.rss",
			DegradationWords: []string{"slow", "lag", "wait"},
			OutageWords:      []string{"down", "outage", "broken", "error"},
		},
	}
}
