package catalog

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// InputFileConfig represents one payload glob with an optional label
// and quarantine dir.
type InputFileConfig struct {
	Glob     string `yaml:"glob"`
	Label    string `yaml:"label"`
	ErrorDir string `yaml:"error_dir"`
}

// InputsConfig accepts either:
//  1. mapping form (preferred):
//     inputs:
//     renders:  /mnt/renders/**/*.json
//     plates:   {glob: /mnt/plates/*.json, error_dir: /mnt/plates/bad}
//  2. list form:
//     inputs:
//     - glob: /mnt/renders/**/*.json
//       label: renders
type InputsConfig struct {
	Items []InputFileConfig
}

func (f *InputsConfig) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case yaml.MappingNode:
		items := make([]InputFileConfig, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			k := value.Content[i]
			v := value.Content[i+1]
			label := strings.TrimSpace(k.Value)
			if label == "" {
				continue
			}
			switch v.Kind {
			case yaml.ScalarNode:
				glob := strings.TrimSpace(v.Value)
				if glob == "" {
					continue
				}
				items = append(items, InputFileConfig{Glob: glob, Label: label})
			case yaml.MappingNode:
				var tmp struct {
					Glob     string `yaml:"glob"`
					ErrorDir string `yaml:"error_dir"`
				}
				if err := v.Decode(&tmp); err != nil {
					return err
				}
				if strings.TrimSpace(tmp.Glob) == "" {
					continue
				}
				items = append(items, InputFileConfig{
					Glob:     strings.TrimSpace(tmp.Glob),
					Label:    label,
					ErrorDir: strings.TrimSpace(tmp.ErrorDir),
				})
			default:
				continue
			}
		}
		f.Items = items
		return nil
	case yaml.SequenceNode:
		var items []InputFileConfig
		if err := value.Decode(&items); err != nil {
			return err
		}
		f.Items = items
		return nil
	default:
		// ignore other kinds
		return nil
	}
}

type FileConfig struct {
	DB     string       `yaml:"db"`
	Inputs InputsConfig `yaml:"inputs"`

	// Vector dimensions; zero means package defaults (384 / 128). Files
	// schemas targeting 512-dim metadata embeddings set metadata_dim.
	MetadataDim int `yaml:"metadata_dim"`
	ChannelDim  int `yaml:"channel_dim"`

	SchemaVersion int `yaml:"schema_version"`

	// Report collector address (tcp). Empty means stdout JSON lines.
	ReportAddr string `yaml:"report_addr"`

	// When true, payload files are deleted only after (1) a successful
	// persist and (2) report delivery.
	DeletePersisted *bool `yaml:"delete_persisted"`

	Debug bool `yaml:"debug"`
}

func LoadConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
