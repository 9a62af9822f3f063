package models

// OutputFormat selects the persistence sinks for a job.
type OutputFormat string

const (
	OutputJSONL  OutputFormat = "jsonl"
	OutputSQLite OutputFormat = "sqlite"
	OutputBoth   OutputFormat = "both"
)

// JobConfig represents the parsed job.yaml configuration. It is treated as an
// immutable value once loaded and is threaded through every pipeline stage.
type JobConfig struct {
	Name                 string                   `yaml:"name" json:"name"`
	OutputDir            string                   `yaml:"output_dir" json:"output_dir"`
	NTrajectories        int                      `yaml:"n_trajectories" json:"n_trajectories"`
	NConcurrent          int                      `yaml:"n_concurrent" json:"n_concurrent"`
	Seed                 uint64                   `yaml:"seed" json:"seed"`
	MaxFailureRate       float64                  `yaml:"max_failure_rate" json:"max_failure_rate"`
	WorkflowDistribution map[WorkflowType]float64 `yaml:"workflow_distribution" json:"workflow_distribution"`
	UserTypeDistribution map[UserType]float64     `yaml:"user_type_distribution" json:"user_type_distribution"`
	LengthDistribution   []LengthBucket           `yaml:"length_distribution" json:"length_distribution"`
	Generator            GeneratorConfig          `yaml:"generator" json:"generator"`
	Catalog              CatalogRef               `yaml:"catalog,omitempty" json:"catalog,omitempty"`
	Dedup                DedupConfig              `yaml:"dedup" json:"dedup"`
	Validation           ValidationConfig         `yaml:"validation" json:"validation"`
	Output               OutputConfig             `yaml:"output" json:"output"`
	Log                  LogConfig                `yaml:"log,omitempty" json:"log,omitempty"`
}

// LengthBucket is one band of the target-length distribution. Min and Max are inclusive.
type LengthBucket struct {
	Min    int     `yaml:"min" json:"min"`
	Max    int     `yaml:"max" json:"max"`
	Weight float64 `yaml:"weight" json:"weight"`
}

type GeneratorConfig struct {
	Type              string  `yaml:"type" json:"type"`
	Model             string  `yaml:"model,omitempty" json:"model,omitempty"`
	BaseURL           string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKeyEnv         string  `yaml:"api_key_env,omitempty" json:"api_key_env,omitempty"`
	MaxTokens         int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature       float64 `yaml:"temperature" json:"temperature"`
	CallTimeoutSec    float64 `yaml:"call_timeout_sec" json:"call_timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// CatalogRef points at a workflow catalog. Both empty selects the built-in one.
type CatalogRef struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
}

type DedupConfig struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	NearDuplicate    bool    `yaml:"near_duplicate" json:"near_duplicate"`
	NearThreshold    float64 `yaml:"near_threshold" json:"near_threshold"`
	SequenceWeight   float64 `yaml:"sequence_weight" json:"sequence_weight"`
	BucketByWorkflow bool    `yaml:"bucket_by_workflow" json:"bucket_by_workflow"`
}

type ValidationConfig struct {
	SoftIssueThreshold int `yaml:"soft_issue_threshold" json:"soft_issue_threshold"`
	ViewportWidth      int `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight     int `yaml:"viewport_height" json:"viewport_height"`
	MaxValueLength     int `yaml:"max_value_length" json:"max_value_length"`
	MaxSelectorLength  int `yaml:"max_selector_length" json:"max_selector_length"`
	MaxBackForwardRun  int `yaml:"max_back_forward_run" json:"max_back_forward_run"`
}

type OutputConfig struct {
	Format     OutputFormat `yaml:"format" json:"format"`
	SampleSize int          `yaml:"sample_size" json:"sample_size"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}
