package content

import (
	_ "embed"
	"os"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// SafeDefaultID is the content item used whenever a plan must be
// repaired or no evidenced candidate survives filtering. The library
// refuses to load without it.
const SafeDefaultID types.ContentID = "breathing-reset"

//go:embed default_library.toml
var defaultLibraryTOML []byte

// Library is the immutable curated content set, loaded once at startup
// and shared across concurrent requests without locking.
type Library struct {
	items []model.ContentItem
	byID  map[types.ContentID]model.ContentItem
}

type libraryFile struct {
	Items []model.ContentItem `toml:"items"`
}

// Load reads a content library from a TOML file
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from CLI configuration
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read content library", goerr.V("path", path))
	}
	return LoadBytes(data)
}

// LoadBytes parses a content library from TOML data
func LoadBytes(data []byte) (*Library, error) {
	var file libraryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse content library TOML")
	}

	lib := &Library{
		items: file.Items,
		byID:  make(map[types.ContentID]model.ContentItem, len(file.Items)),
	}

	for _, item := range file.Items {
		if err := item.ID.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid content item")
		}
		if item.Title == "" {
			return nil, goerr.New("content item title is required", goerr.V("id", item.ID))
		}
		if item.DurationMinutes < 1 {
			return nil, goerr.New("content item duration must be at least 1 minute",
				goerr.V("id", item.ID), goerr.V("duration", item.DurationMinutes))
		}
		if item.MinMinutes > item.DurationMinutes {
			return nil, goerr.New("content item min duration exceeds duration", goerr.V("id", item.ID))
		}
		if _, exists := lib.byID[item.ID]; exists {
			return nil, goerr.New("duplicate content item ID", goerr.V("id", item.ID))
		}
		lib.byID[item.ID] = item
	}

	safe, ok := lib.byID[SafeDefaultID]
	if !ok {
		return nil, goerr.New("content library is missing the safe default item",
			goerr.V("id", SafeDefaultID))
	}
	if !safe.Evidenced() {
		return nil, goerr.New("safe default item must carry a citation", goerr.V("id", SafeDefaultID))
	}

	// Deterministic iteration order regardless of file ordering
	sort.Slice(lib.items, func(i, j int) bool {
		return lib.items[i].ID < lib.items[j].ID
	})

	return lib, nil
}

// Default returns the embedded curated library
func Default() (*Library, error) {
	return LoadBytes(defaultLibraryTOML)
}

// Items returns all items ordered by ID ascending
func (l *Library) Items() []model.ContentItem {
	return l.items
}

// Get looks up an item by ID
func (l *Library) Get(id types.ContentID) (model.ContentItem, bool) {
	item, ok := l.byID[id]
	return item, ok
}

// SafeDefault returns the always-valid fallback item
func (l *Library) SafeDefault() model.ContentItem {
	return l.byID[SafeDefaultID]
}

// Len returns the number of items in the library
func (l *Library) Len() int {
	return len(l.items)
}
