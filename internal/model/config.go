package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Server         ServerConfig        `yaml:"server" mapstructure:"server"`
	Backend        BackendConfig       `yaml:"backend" mapstructure:"backend"`
	Pipeline       PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Scoring        ScoringConfig       `yaml:"scoring" mapstructure:"scoring"`
	Rankings       RankingConfig       `yaml:"rankings" mapstructure:"rankings"`
	Trust          TrustConfig         `yaml:"trust" mapstructure:"trust"`
	Misconceptions MisconceptionConfig `yaml:"misconceptions" mapstructure:"misconceptions"`
	Cache          CacheConfig         `yaml:"cache" mapstructure:"cache"`
	RateLimiting   RateLimitConfig     `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Log            LogConfig           `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// BackendConfig configures the external reasoning/retrieval service
type BackendConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // anthropic, openai, ollama
	Model      string        `yaml:"model" mapstructure:"model"`
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per call
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxSearch  int           `yaml:"max_searches" mapstructure:"max_searches"` // web_search uses per call
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// PipelineConfig bounds the cost of a single verification
type PipelineConfig struct {
	MaxClaims       int `yaml:"max_claims" mapstructure:"max_claims"`
	MaxEvidence     int `yaml:"max_evidence" mapstructure:"max_evidence"`
	ResultsPerQuery int `yaml:"results_per_query" mapstructure:"results_per_query"`
	ChunkThreshold  int `yaml:"chunk_threshold" mapstructure:"chunk_threshold"`
	MaxChunks       int `yaml:"max_chunks" mapstructure:"max_chunks"`
	ClaimWorkers    int `yaml:"claim_workers" mapstructure:"claim_workers"`
}

// ScoringConfig holds the heuristic constants of the query trust score.
// None of these encode a validated policy.
type ScoringConfig struct {
	Base              int      `yaml:"base" mapstructure:"base"`
	PerHigh           int      `yaml:"per_high" mapstructure:"per_high"`
	PerMedium         int      `yaml:"per_medium" mapstructure:"per_medium"`
	StrongAgreement   int      `yaml:"strong_agreement" mapstructure:"strong_agreement"`     // agreement >= 3
	ModerateAgreement int      `yaml:"moderate_agreement" mapstructure:"moderate_agreement"` // agreement >= 2
	NoTrustedPenalty  int      `yaml:"no_trusted_penalty" mapstructure:"no_trusted_penalty"`
	HedgingWords      []string `yaml:"hedging_words" mapstructure:"hedging_words"`
}

// RankingConfig holds the ranking score constants
type RankingConfig struct {
	ContradictionPenalty int `yaml:"contradiction_penalty" mapstructure:"contradiction_penalty"`
}

// TrustConfig holds the curated domain lists of the trust-tier classifier
type TrustConfig struct {
	HighDomains    []string `yaml:"high_domains" mapstructure:"high_domains"`
	PublisherNames []string `yaml:"publisher_names" mapstructure:"publisher_names"`
	MediumDomains  []string `yaml:"medium_domains" mapstructure:"medium_domains"`
}

// MisconceptionConfig points at an alternative misconception table
type MisconceptionConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"` // Empty uses the embedded table
}

// CacheConfig configures the optional evidence cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitConfig limits outbound backend calls
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or text
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   5 * time.Minute,
			RequestTimeout: 4 * time.Minute,
		},
		Backend: BackendConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			Timeout:   60 * time.Second,
			MaxTokens: 2000,
			MaxSearch: 3,
		},
		Pipeline: PipelineConfig{
			MaxClaims:       MaxClaimsPerText,
			MaxEvidence:     MaxEvidencePerClaim,
			ResultsPerQuery: 3,
			ChunkThreshold:  4000,
			MaxChunks:       3,
			ClaimWorkers:    1,
		},
		Scoring: DefaultScoringConfig(),
		Rankings: RankingConfig{
			ContradictionPenalty: 2,
		},
		Trust: DefaultTrustConfig(),
		Cache: CacheConfig{
			Enabled: false,
			TTL:     30 * time.Minute,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultScoringConfig returns the trust score constants
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Base:              50,
		PerHigh:           15,
		PerMedium:         8,
		StrongAgreement:   20,
		ModerateAgreement: 10,
		NoTrustedPenalty:  20,
		HedgingWords:      []string{"may", "might", "could", "possibly", "reportedly", "allegedly"},
	}
}

// DefaultTrustConfig returns the curated domain lists
func DefaultTrustConfig() TrustConfig {
	return TrustConfig{
		HighDomains: []string{
			"wikipedia.org", "britannica.com", "who.int", "cdc.gov", "nih.gov",
			"nasa.gov", "un.org", "worldbank.org", "oecd.org", "europa.eu",
			"scholar.google.com", "arxiv.org", "doi.org",
		},
		PublisherNames: []string{
			"pubmed", "nature.com", "sciencedirect", "science.org", "springer",
			"wiley.com", "thelancet", "nejm.org", "bmj.com", "jstor", "plos",
			"cell.com", "ieee.org", "acm.org",
		},
		MediumDomains: []string{
			"reuters.com", "apnews.com", "bbc.com", "bbc.co.uk", "npr.org",
			"pbs.org", "nytimes.com", "washingtonpost.com", "theguardian.com",
			"wsj.com", "economist.com", "cnn.com", "cbsnews.com", "nbcnews.com",
			"abcnews.go.com", "bloomberg.com", "forbes.com", "ft.com",
			"nationalgeographic.com", "smithsonianmag.com",
		},
	}
}
