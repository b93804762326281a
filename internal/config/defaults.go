package config

const (
	defaultWorkDir                    = "~/.local/share/automan/work"
	defaultOutputDir                  = "~/Videos/automan"
	defaultLogDir                     = "~/.local/share/automan/logs"
	defaultStatePath                  = "~/.local/share/automan/jobs.db"
	defaultLogFormat                  = "console"
	defaultLogLevel                   = "info"
	defaultWidth                      = 1080
	defaultHeight                     = 1920
	defaultFrameRate                  = 30
	defaultZoomFactor                 = 1.15
	defaultPanCycles                  = 1
	defaultCrossfadeMillis            = 300
	defaultPlaceholderSeconds         = 5
	defaultSafetyTimeoutSeconds       = 300
	defaultEncoderCheckIntervalFrames = 30
	defaultVideoCodec                 = "libx264"
	defaultPreset                     = "veryfast"
	defaultCRF                        = 20
	defaultAudioCodec                 = "aac"
	defaultAudioBitrate               = "192k"
	defaultSampleRate                 = 48000
	defaultLoadConcurrency            = 4
	defaultFetchTimeoutSeconds        = 30
	defaultCaptionBatchSize           = 6
	defaultCaptionMaxLines            = 2
	defaultCaptionLookaheadMS         = 100
	defaultCaptionFontSize            = 72
	defaultCaptionMinFontSize         = 36
	defaultCaptionBottomMargin        = 0.18
	defaultCaptionHighlight           = "#facc15"
	defaultSearchWindow               = 8
	defaultSentenceWeight             = 10
	defaultCommaWeight                = 5
	defaultPauseWeight                = 2
	defaultDistancePenalty            = 0.1
	defaultFallbackDuration           = 30
	defaultWhisperXModel              = "large-v3-turbo"
	defaultWhisperXVADMethod          = "silero"
	defaultTranscriptionLanguage      = "en"
	defaultNotifyRequestTimeout       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StatePath: defaultStatePath,
		},
		Render: Render{
			Width:                      defaultWidth,
			Height:                     defaultHeight,
			FrameRate:                  defaultFrameRate,
			ZoomFactor:                 defaultZoomFactor,
			PanCycles:                  defaultPanCycles,
			CrossfadeMillis:            defaultCrossfadeMillis,
			PlaceholderSeconds:         defaultPlaceholderSeconds,
			SafetyTimeoutSeconds:       defaultSafetyTimeoutSeconds,
			EncoderCheckIntervalFrames: defaultEncoderCheckIntervalFrames,
			VideoCodec:                 defaultVideoCodec,
			Preset:                     defaultPreset,
			CRF:                        defaultCRF,
			AudioCodec:                 defaultAudioCodec,
			AudioBitrate:               defaultAudioBitrate,
			SampleRate:                 defaultSampleRate,
			LoadConcurrency:            defaultLoadConcurrency,
			FetchTimeoutSeconds:        defaultFetchTimeoutSeconds,
			Captions:                   true,
		},
		Captions: Captions{
			BatchSize:     defaultCaptionBatchSize,
			MaxLines:      defaultCaptionMaxLines,
			LookaheadMS:   defaultCaptionLookaheadMS,
			FontSize:      defaultCaptionFontSize,
			MinFontSize:   defaultCaptionMinFontSize,
			BottomMargin:  defaultCaptionBottomMargin,
			HighlightRGBA: defaultCaptionHighlight,
		},
		Segmenter: Segmenter{
			SearchWindow:     defaultSearchWindow,
			SentenceWeight:   defaultSentenceWeight,
			CommaWeight:      defaultCommaWeight,
			PauseWeight:      defaultPauseWeight,
			DistancePenalty:  defaultDistancePenalty,
			FallbackDuration: defaultFallbackDuration,
		},
		Transcription: Transcription{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
			Language:  defaultTranscriptionLanguage,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			RenderComplete: true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
