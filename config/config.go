package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type LLM struct {
	Provider      string        `mapstructure:"provider" yaml:"provider"`
	Model         string        `mapstructure:"model" yaml:"model"`
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	APIKey        string        `mapstructure:"api_key" yaml:"-"`
	GeminiAPIKey  string        `mapstructure:"gemini_api_key" yaml:"-"`
	ClaudeAPIKey  string        `mapstructure:"anthropic_api_key" yaml:"-"`
	Temperature   float32       `mapstructure:"temperature" yaml:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval" yaml:"retry_interval"`
	RatePerSecond float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
}

// Key returns the credential for the selected provider.
func (l LLM) Key() string {
	switch strings.ToLower(l.Provider) {
	case "gemini":
		if l.GeminiAPIKey != "" {
			return l.GeminiAPIKey
		}
	case "anthropic", "claude":
		if l.ClaudeAPIKey != "" {
			return l.ClaudeAPIKey
		}
	}
	return l.APIKey
}

type Transcription struct {
	URL              string        `mapstructure:"url" yaml:"url"`
	APIKey           string        `mapstructure:"api_key" yaml:"-"`
	SpeakersExpected int           `mapstructure:"speakers_expected" yaml:"speakers_expected"`
	PollInterval     time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type Services struct {
	LLM           LLM           `mapstructure:"llm" yaml:"llm"`
	Transcription Transcription `mapstructure:"transcription" yaml:"transcription"`
}

type Media struct {
	FFmpeg          string        `mapstructure:"ffmpeg" yaml:"ffmpeg"`
	SegmentDuration time.Duration `mapstructure:"segment_duration" yaml:"segment_duration"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	KeepAudio       bool          `mapstructure:"keep_audio" yaml:"keep_audio"`
}

type Assessment struct {
	Window      int `mapstructure:"window" yaml:"window"`
	Overlap     int `mapstructure:"overlap" yaml:"overlap"`
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

type Classifier struct {
	SignalWeight float64  `mapstructure:"signal_weight" yaml:"signal_weight"`
	LengthWeight float64  `mapstructure:"length_weight" yaml:"length_weight"`
	CountWeight  float64  `mapstructure:"count_weight" yaml:"count_weight"`
	Phrases      []string `mapstructure:"phrases" yaml:"phrases"`
}

type Watch struct {
	Debounce   time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Extensions []string      `mapstructure:"extensions" yaml:"extensions"`
}

type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name" yaml:"name"`
		Version   string `mapstructure:"version" yaml:"version"`
		LogLvl    string `mapstructure:"log_level" yaml:"log_level"`
		LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	} `mapstructure:"pipeline" yaml:"pipeline"`
	Media      Media      `mapstructure:"media" yaml:"media"`
	Services   Services   `mapstructure:"services" yaml:"services"`
	Assessment Assessment `mapstructure:"assessment" yaml:"assessment"`
	Classifier Classifier `mapstructure:"classifier" yaml:"classifier"`
	Watch      Watch      `mapstructure:"watch" yaml:"watch"`
	Paths      struct {
		// Outputs overrides the default outputs/ directory next to the input video.
		Outputs string `mapstructure:"outputs" yaml:"outputs"`
	} `mapstructure:"paths" yaml:"paths"`
}

const EnvPrefix = "LESSON"

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "lesson-assessor")
	v.SetDefault("pipeline.version", "0.1.0")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")

	v.SetDefault("media.ffmpeg", "ffmpeg")
	v.SetDefault("media.segment_duration", 10*time.Minute)
	v.SetDefault("media.timeout", time.Hour)
	v.SetDefault("media.keep_audio", false)

	v.SetDefault("services.llm.provider", "openai")
	v.SetDefault("services.llm.model", "") // provider default
	v.SetDefault("services.llm.base_url", "")
	v.SetDefault("services.llm.api_key", "")
	v.SetDefault("services.llm.gemini_api_key", "")
	v.SetDefault("services.llm.anthropic_api_key", "")
	v.SetDefault("services.llm.temperature", 0)
	v.SetDefault("services.llm.timeout", 2*time.Minute)
	v.SetDefault("services.llm.max_retries", 3)
	v.SetDefault("services.llm.retry_interval", 2*time.Second)
	v.SetDefault("services.llm.rate_per_second", 2)

	v.SetDefault("services.transcription.url", "https://api.assemblyai.com")
	v.SetDefault("services.transcription.api_key", "")
	v.SetDefault("services.transcription.speakers_expected", 3)
	v.SetDefault("services.transcription.poll_interval", 3*time.Second)
	v.SetDefault("services.transcription.timeout", 30*time.Minute)

	v.SetDefault("assessment.window", 30)
	v.SetDefault("assessment.overlap", 5)
	v.SetDefault("assessment.concurrency", 1)

	v.SetDefault("classifier.signal_weight", 2.0)
	v.SetDefault("classifier.length_weight", 0.5)
	v.SetDefault("classifier.count_weight", 0.3)
	v.SetDefault("classifier.phrases", []string{
		"let's", "look at", "can anyone", "tell me",
		"does anyone", "remember", "explain",
		"understand", "question", "next",
		"class", "everyone", "please",
	})

	v.SetDefault("watch.debounce", 5*time.Second)
	v.SetDefault("watch.extensions", []string{".mp4", ".mov", ".mkv", ".webm", ".avi"})

	v.SetDefault("paths.outputs", "")
}

// Load reads configuration from path, or from the first of config/<CONFIG_ENV>/config.yaml
// and ./config.yaml that exists. No config file at all is fine: defaults and the
// environment still apply. API keys are also read from their conventional variables
// (OPENAI_API_KEY, GEMINI_API_KEY, ANTHROPIC_API_KEY, AAI_API_KEY).
func Load(path string) (*Root, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("services.llm.api_key", EnvPrefix+"_SERVICES_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("services.llm.gemini_api_key", EnvPrefix+"_SERVICES_LLM_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("services.llm.anthropic_api_key", EnvPrefix+"_SERVICES_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("services.transcription.api_key", EnvPrefix+"_SERVICES_TRANSCRIPTION_API_KEY", "AAI_API_KEY")

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		} else if !errors.Is(err, os.ErrNotExist) {
			return p // let ReadInConfig report it
		}
	}
	return ""
}
