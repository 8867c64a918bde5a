package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure AliasStore implements the interface.
var _ driven.AliasProvider = (*AliasStore)(nil)

// aliasExtensions are tried in order when locating a jurisdiction file.
var aliasExtensions = []string{".toml", ".yaml", ".yml"}

// AliasStore loads jurisdiction alias files from a fields directory laid
// out as <dir>/<state>/<file-type>.toml (or .yaml).
//
// The directory and its README are created lazily on first use.
type AliasStore struct {
	mu       sync.RWMutex
	dir      string
	cache    map[domain.Jurisdiction]*domain.AliasConfig
	validate *validator.Validate
	initOnce sync.Once
	initErr  error
}

// aliasFile is the on-disk layout shared by TOML and YAML files.
type aliasFile struct {
	Fields   map[string]any `toml:"FIELDS" yaml:"FIELDS" validate:"required,min=1"`
	Settings settingsFile   `toml:"SETTINGS" yaml:"SETTINGS"`
}

type settingsFile struct {
	FileType          string              `toml:"FILE-TYPE" yaml:"FILE-TYPE"`
	RequireAddress    bool                `toml:"REQUIRE-ADDRESS" yaml:"REQUIRE-ADDRESS"`
	StrictDOB         bool                `toml:"STRICT-DOB" yaml:"STRICT-DOB"`
	DistrictThreshold int                 `toml:"DISTRICT-THRESHOLD" yaml:"DISTRICT-THRESHOLD" validate:"gte=0,lte=100"`
	FieldFormatting   fieldFormatting     `toml:"FIELD-FORMATTING" yaml:"FIELD-FORMATTING"`
	State             statePlace          `toml:"STATE" yaml:"STATE"`
	City              place               `toml:"CITY" yaml:"CITY"`
	County            place               `toml:"COUNTY" yaml:"COUNTY"`
	RemoveChars       map[string][]string `toml:"REMOVE-CHARS" yaml:"REMOVE-CHARS" validate:"dive,len=2"`
	ReplaceChars      map[string][]string `toml:"REPLACE-CHARS" yaml:"REPLACE-CHARS" validate:"dive,len=2"`
}

type fieldFormatting struct {
	// Date is one pattern or a list of patterns.
	Date any `toml:"date" yaml:"date"`
}

type statePlace struct {
	Abbreviation string `toml:"abbreviation" yaml:"abbreviation" validate:"omitempty,len=2,alpha"`
	Name         string `toml:"name" yaml:"name"`
}

type place struct {
	Name string `toml:"name" yaml:"name"`
}

// NewAliasStore creates an alias store over dir.
// If dir is empty, defaults to ~/.vepctl/fields/.
//
// The constructor does not perform any I/O.
func NewAliasStore(dir string) (*AliasStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".vepctl", "fields")
	}

	return &AliasStore{
		dir:      dir,
		cache:    make(map[domain.Jurisdiction]*domain.AliasConfig),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Load returns the configuration for j. File types default to voterfile.
// Returns domain.ErrNotFound if no file exists for j.
func (s *AliasStore) Load(_ context.Context, j domain.Jurisdiction) (*domain.AliasConfig, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return nil, fmt.Errorf("alias store init failed: %w", s.initErr)
	}

	j = normalise(j)
	if j.State == "" {
		return nil, fmt.Errorf("%w: state is required", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	if cfg, ok := s.cache[j]; ok {
		s.mu.RUnlock()
		return cfg, nil
	}
	s.mu.RUnlock()

	cfg, err := s.loadFromFile(j)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cached, ok := s.cache[j]; ok {
		cfg = cached
	} else {
		s.cache[j] = cfg
	}
	s.mu.Unlock()

	return cfg, nil
}

// List returns every jurisdiction with an alias file, sorted.
func (s *AliasStore) List(_ context.Context) ([]domain.Jurisdiction, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fields directory: %w", err)
	}

	var out []domain.Jurisdiction
	for _, state := range entries {
		if !state.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.dir, state.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", state.Name(), err)
		}
		for _, f := range files {
			ext := filepath.Ext(f.Name())
			if f.IsDir() || !slices.Contains(aliasExtensions, ext) {
				continue
			}
			out = append(out, domain.Jurisdiction{
				State:    strings.ToLower(state.Name()),
				FileType: strings.TrimSuffix(f.Name(), ext),
			})
		}
	}

	sort.Slice(out, func(i, k int) bool {
		if out[i].State != out[k].State {
			return out[i].State < out[k].State
		}
		return out[i].FileType < out[k].FileType
	})
	return slices.Compact(out), nil
}

// Reload clears the cache, forcing fresh loads from disk.
func (s *AliasStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[domain.Jurisdiction]*domain.AliasConfig)
	s.mu.Unlock()
}

// Dir returns the fields directory path.
func (s *AliasStore) Dir() string {
	return s.dir
}

func normalise(j domain.Jurisdiction) domain.Jurisdiction {
	j.State = strings.ToLower(strings.TrimSpace(j.State))
	j.FileType = strings.ToLower(strings.TrimSpace(j.FileType))
	if j.FileType == "" {
		j.FileType = domain.FileTypeVoterFile
	}
	return j
}

// initialise creates the fields directory and its README.
func (s *AliasStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create fields directory: %w", err)
		return
	}
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *AliasStore) loadFromFile(j domain.Jurisdiction) (*domain.AliasConfig, error) {
	base := filepath.Join(s.dir, j.State, j.FileType)
	for _, ext := range aliasExtensions {
		data, err := os.ReadFile(base + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read alias file: %w", err)
		}

		var f aliasFile
		if ext == ".toml" {
			err = toml.Unmarshal(data, &f)
		} else {
			err = yaml.Unmarshal(data, &f)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, base+ext, err)
		}
		cfg, err := s.convert(j, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", base+ext, err)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("alias file for %s/%s: %w", j.State, j.FileType, domain.ErrNotFound)
}

// convert validates a decoded file and builds the immutable configuration.
func (s *AliasStore) convert(j domain.Jurisdiction, f aliasFile) (*domain.AliasConfig, error) {
	if err := s.validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	fields := make(map[string][]string, len(f.Fields))
	for name, v := range f.Fields {
		aliases, err := stringList(v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", domain.ErrInvalidInput, name, err)
		}
		fields[name] = aliases
	}

	formats, err := stringList(f.Settings.FieldFormatting.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date format: %w", domain.ErrInvalidInput, err)
	}

	st := f.Settings
	fileType := st.FileType
	if fileType == "" {
		fileType = j.FileType
	}
	settings := domain.Settings{
		StateAbbreviation: strings.ToUpper(st.State.Abbreviation),
		StateName:         st.State.Name,
		CityName:          st.City.Name,
		CountyName:        st.County.Name,
		FileType:          strings.ToLower(fileType),
		RequireAddress:    st.RequireAddress,
		StrictDOB:         st.StrictDOB,
		DistrictThreshold: st.DistrictThreshold,
	}
	for _, name := range sortedKeys(st.RemoveChars) {
		pair := st.RemoveChars[name]
		settings.RemoveChars = append(settings.RemoveChars, domain.TextCorrection{Name: name, Text: pair[0], Target: pair[1]})
	}
	for _, field := range sortedKeys(st.ReplaceChars) {
		pair := st.ReplaceChars[field]
		settings.ReplaceChars = append(settings.ReplaceChars, domain.FieldReplacement{Field: field, Old: pair[0], New: pair[1]})
	}

	return &domain.AliasConfig{
		Jurisdiction: j,
		Fields:       fields,
		DateFormats:  formats,
		Settings:     settings,
	}, nil
}

// stringList accepts a string or a list of strings.
func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// createReadme writes a README explaining the alias file format.
func (s *AliasStore) createReadme() error {
	path := filepath.Join(s.dir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# vepctl Field Aliases

Each jurisdiction has one file per file type: ` + "`<state>/<file-type>.toml`" + `
(or ` + "`.yaml`" + `), e.g. ` + "`tx/voterfile.toml`" + `.

## Example

` + "```toml" + `
[FIELDS]
person_name_first = ["FIRST_NAME", "FNAME"]
person_name_last = "LAST_NAME"
voter_vuid = "null"            # "null" means the column is named voter_vuid
residence_part_zip5 = "ZIP"

[SETTINGS]
FILE-TYPE = "voterfile"

[SETTINGS.FIELD-FORMATTING]
date = ["%Y%m%d", "%m/%d/%Y"]

[SETTINGS.STATE]
abbreviation = "TX"

[SETTINGS.REMOVE-CHARS]
precinct = ["_TRAVIS", "PRECINCT"]   # [text to remove, district name containing]
` + "```" + `

Aliases are tried in order; the first column present in a row wins.
`
	return os.WriteFile(path, []byte(content), 0600)
}
