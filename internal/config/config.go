// Package config collects the file locations and switches of a pipeline run
// from the environment. Command line flags are layered on top by the CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kblink/internal/util"

	"github.com/go-playground/validator"
)

// Vector model formats understood by the loader.
const (
	VectorFormatBinary = "binary"
	VectorFormatText   = "text"
)

// Duplicate source label policies.
const (
	DuplicateLast  = "last"
	DuplicateFirst = "first"
	DuplicateFail  = "fail"
)

// S3Config holds credentials for s3:// inputs and outputs.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether any S3 setting was supplied.
func (c S3Config) Enabled() bool {
	return c.Region != "" || c.Endpoint != "" || c.AccessKey != ""
}

// Config is the full configuration of both pipelines.
type Config struct {
	Debug bool

	SourceLabels    string `validate:"required"`
	TargetRecords   string `validate:"required"`
	Correspondence  string `validate:"required"`
	TargetIDLabels  string `validate:"required"`
	FoldCase        bool
	DuplicatePolicy string `validate:"oneof=last first fail"`
	FilterIDs       string

	RecordFiles  []string `validate:"min=1,dive,required"`
	VectorModel  string   `validate:"required"`
	VectorFormat string   `validate:"oneof=binary text"`
	VectorVocab  string
	ScoresOut    string `validate:"required"`

	DatabaseURL string
	S3          S3Config
}

// FromEnv reads the configuration from the environment. Call util.LoadEnv
// first to pick up a .env file.
func FromEnv() Config {
	return Config{
		Debug: util.GetEnvBool("DEBUG", false),

		SourceLabels:    util.GetEnv("KBLINK_SOURCE_LABELS"),
		TargetRecords:   util.GetEnv("KBLINK_TARGET_RECORDS"),
		Correspondence:  util.GetEnvString("KBLINK_CORRESPONDENCE", "correspondence.msgpack.gz"),
		TargetIDLabels:  util.GetEnvString("KBLINK_TARGET_ID_LABELS", "target-id-labels.msgpack.gz"),
		FoldCase:        util.GetEnvBool("KBLINK_FOLD_CASE", false),
		DuplicatePolicy: strings.ToLower(util.GetEnvString("KBLINK_DUPLICATE_POLICY", DuplicateLast)),
		FilterIDs:       util.GetEnv("KBLINK_FILTER_IDS"),

		RecordFiles:  util.GetEnvList("KBLINK_RECORD_FILES"),
		VectorModel:  util.GetEnv("KBLINK_VECTOR_MODEL"),
		VectorFormat: strings.ToLower(util.GetEnvString("KBLINK_VECTOR_FORMAT", VectorFormatBinary)),
		VectorVocab:  util.GetEnv("KBLINK_VECTOR_VOCAB"),
		ScoresOut:    util.GetEnvString("KBLINK_SCORES_OUT", "scored-pairs.tsv"),

		DatabaseURL: util.GetEnv("DATABASE_URL"),
		S3: S3Config{
			Region:    util.GetEnv("AWS_REGION"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
			SecretKey: util.GetEnv("AWS_SECRET_KEY"),
		},
	}
}

var validate = validator.New()

// ValidateMatch checks the settings used by the label matcher.
func (c *Config) ValidateMatch() error {
	return c.validate("SourceLabels", "TargetRecords", "Correspondence", "DuplicatePolicy")
}

// ValidateTargetLabels checks the settings used to build the target ID label map.
func (c *Config) ValidateTargetLabels() error {
	return c.validate("TargetRecords", "TargetIDLabels")
}

// ValidateStats checks the settings used to summarize a correspondence checkpoint.
func (c *Config) ValidateStats() error {
	return c.validate("Correspondence")
}

// ValidateScore checks the settings used by the relation vector scorer.
func (c *Config) ValidateScore() error {
	return c.validate("Correspondence", "RecordFiles", "VectorModel", "VectorFormat", "ScoresOut")
}

func (c *Config) validate(fields ...string) error {
	err := validate.StructPartial(c, fields...)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
