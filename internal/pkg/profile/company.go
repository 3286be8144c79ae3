package profile

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Tone string

const (
	ToneFormal     Tone = "formal"
	ToneWelcoming  Tone = "welcoming"
	ToneMinimalist Tone = "minimalist"
	ToneInnovative Tone = "innovative"
)

// Tones lists the selectable tones in the order the configuration form shows them.
var Tones = []Tone{ToneInnovative, ToneFormal, ToneWelcoming, ToneMinimalist}

func (tone Tone) Label() string {
	switch tone {
	case ToneFormal:
		return "Corporate & Formal"
	case ToneWelcoming:
		return "Consultative & Welcoming"
	case ToneMinimalist:
		return "Direct & Minimalist"
	case ToneInnovative:
		return "Innovative & Technological"
	default:
		return string(tone)
	}
}

// Instruction is the voice guideline appended to the system instruction.
func (tone Tone) Instruction() string {
	switch tone {
	case ToneFormal:
		return "Be objective, technical and straight to the point."
	case ToneWelcoming:
		return "Be helpful and polite, but keep the focus on the technical solution."
	case ToneMinimalist:
		return "Use short and precise answers."
	case ToneInnovative:
		return "Use correct and up-to-date technical terminology."
	default:
		return "Be professional and solution oriented."
	}
}

type CompanyConfig struct {
	CompanyName string `yaml:"companyName"`
	Tone        Tone   `yaml:"tone"`
	Context     string `yaml:"context"`
	WebsiteURL  string `yaml:"websiteUrl"`
}

const documentHeaderFormat = "\n\n--- IMPORTED DOCUMENT (%s) ---\n"

// AppendDocument adds an uploaded document to the knowledge base. Prior
// content is kept as is.
func (config *CompanyConfig) AppendDocument(fileName string, content string) {
	config.Context = config.Context + fmt.Sprintf(documentHeaderFormat, fileName) + content
}

// NormalizeWebsiteURL forces the https scheme used by the configuration form.
func NormalizeWebsiteURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.TrimPrefix(value, "https://")
	value = strings.TrimPrefix(value, "http://")
	return "https://" + value
}

// LoadCompanyConfig reads a YAML seed file. Fields missing from the file keep
// the values of DefaultCompanyConfig.
func LoadCompanyConfig(path string) (CompanyConfig, error) {
	config := DefaultCompanyConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("os.ReadFile(%s) failed: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("yaml.Unmarshal(%s) failed: %w", path, err)
	}
	config.WebsiteURL = NormalizeWebsiteURL(config.WebsiteURL)

	return config, nil
}

// Store holds the process-wide company configuration edited from the admin view.
type Store struct {
	mutex  sync.RWMutex
	config CompanyConfig
}

func NewStore(config CompanyConfig) *Store {
	return &Store{config: config}
}

func (instance *Store) Get() CompanyConfig {
	instance.mutex.RLock()
	defer instance.mutex.RUnlock()
	return instance.config
}

func (instance *Store) Update(config CompanyConfig) {
	config.WebsiteURL = NormalizeWebsiteURL(config.WebsiteURL)

	instance.mutex.Lock()
	instance.config = config
	instance.mutex.Unlock()
}

func (instance *Store) AppendDocument(fileName string, content string) CompanyConfig {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	instance.config.AppendDocument(fileName, content)
	return instance.config
}
