package config

const (
	defaultLogDir              = "~/.local/share/autodiag/logs"
	defaultDataDir             = "~/.local/share/autodiag"
	defaultAPIBind             = "127.0.0.1:7512"
	defaultTitleLimit          = 15
	defaultDescriptionLimit    = 10
	defaultDescriptionChars    = 200
	defaultCommentLimit        = 15
	defaultCommentChars        = 150
	defaultTranscriptLimit     = 5
	defaultTranscriptChars     = 300
	defaultWorkers             = 3
	defaultSimilarityThreshold = 0.60
	defaultReasoningBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultReasoningModel      = "openai/gpt-4o"
	defaultReasoningReferer    = "https://autodecx.app"
	defaultReasoningTitle      = "AutoDecx"
	defaultReasoningTimeout    = 20
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultHistoryKeep         = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			DataDir: defaultDataDir,
			APIBind: defaultAPIBind,
		},
		Analysis: Analysis{
			TitleLimit:          defaultTitleLimit,
			DescriptionLimit:    defaultDescriptionLimit,
			DescriptionChars:    defaultDescriptionChars,
			CommentLimit:        defaultCommentLimit,
			CommentChars:        defaultCommentChars,
			TranscriptLimit:     defaultTranscriptLimit,
			TranscriptChars:     defaultTranscriptChars,
			Workers:             defaultWorkers,
			SimilarityThreshold: defaultSimilarityThreshold,
		},
		Reasoning: Reasoning{
			BaseURL:        defaultReasoningBaseURL,
			Model:          defaultReasoningModel,
			Referer:        defaultReasoningReferer,
			Title:          defaultReasoningTitle,
			TimeoutSeconds: defaultReasoningTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Keep:    defaultHistoryKeep,
		},
	}
}
