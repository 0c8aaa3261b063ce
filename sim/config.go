package sim

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema is the JSON Schema for the wire config format of §6.
// Validating against it before unmarshalling gives descriptive,
// field-level errors for malformed input (wrong types, missing keys)
// ahead of the semantic checks below — the same division of labor
// FairForge-vaultaire's internal/gateway/validation/validator.go uses
// gojsonschema for.
const configSchema = `{
	"type": "object",
	"required": ["block_size", "caches"],
	"additionalProperties": false,
	"properties": {
		"block_size": {"type": "integer", "minimum": 1},
		"caches": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "sets", "ways", "repl"],
				"additionalProperties": false,
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"sets": {"type": "integer", "minimum": 1},
					"ways": {"type": "integer", "minimum": 1},
					"repl": {"type": "string"}
				}
			}
		}
	}
}`

// CacheConfig is one element of the "caches" array in the wire config.
type CacheConfig struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Ways int    `json:"ways"`
	Repl string `json:"repl"`
}

// Config is the root of the JSON configuration document of §6. The
// order of Caches is the probe order of the resulting stack.
type Config struct {
	BlockSize int64         `json:"block_size"`
	Caches    []CacheConfig `json:"caches"`
}

// ParseConfig validates raw against the JSON Schema above, then decodes
// it into a Config. Both schema and decode errors are fatal
// configuration errors per §7.
func ParseConfig(raw []byte) (*Config, error) {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("config does not match schema: %s", joinErrors(result.Errors()))
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func joinErrors(errs []gojsonschema.ResultError) string {
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += e.String()
	}
	return msg
}

// LRUDBAdjacencyBit is the set-index bit flipped to find the adjacent
// (twin) set in LRU-DB. n_sets must be at least
// 1<<(LRUDBAdjacencyBit+1) for every set to have a distinct twin.
// Exported so sim/policy's LRU-DB implementation computes the same
// twin set this validation assumes.
const LRUDBAdjacencyBit = 3

// BuildCaches validates cfg and constructs the cache stack it
// describes, in probe order. Validation failures — non-power-of-two
// dimensions, an unregistered repl name, or an LRU-DB cache with too
// few sets for the adjacency rule to be well-defined — are returned as
// errors rather than panics, so the CLI can report them and abort
// before simulation begins.
func BuildCaches(cfg *Config) ([]*Cache, error) {
	if !isPowerOfTwo(uint64(cfg.BlockSize)) {
		return nil, fmt.Errorf("block_size %d is not a power of two", cfg.BlockSize)
	}
	if len(cfg.Caches) == 0 {
		return nil, fmt.Errorf("config must list at least one cache")
	}

	caches := make([]*Cache, 0, len(cfg.Caches))
	for _, cc := range cfg.Caches {
		if !isPowerOfTwo(uint64(cc.Sets)) {
			return nil, fmt.Errorf("cache %q: sets %d is not a power of two", cc.Name, cc.Sets)
		}
		if !isPowerOfTwo(uint64(cc.Ways)) {
			return nil, fmt.Errorf("cache %q: ways %d is not a power of two", cc.Name, cc.Ways)
		}
		if cc.Repl == "lrudb" && cc.Sets < 1<<(LRUDBAdjacencyBit+1) {
			return nil, fmt.Errorf("cache %q: lrudb requires at least %d sets for the adjacent-set rule to be well-defined, got %d",
				cc.Name, 1<<(LRUDBAdjacencyBit+1), cc.Sets)
		}

		policy, err := NewPolicy(cc.Repl, cc.Sets, cc.Ways, defaultPolicySeed)
		if err != nil {
			return nil, fmt.Errorf("cache %q: %w", cc.Name, err)
		}

		caches = append(caches, NewCache(cc.Name, uint64(cfg.BlockSize), cc.Sets, cc.Ways, policy))
	}
	return caches, nil
}

// defaultPolicySeed seeds NMRU's victim draw, fixed and documented here
// so it is reproducible: every run of this simulator, given the same
// config, draws NMRU victims from the same sequence.
const defaultPolicySeed = 0x5eed
