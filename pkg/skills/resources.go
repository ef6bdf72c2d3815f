package skills

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// assetPatterns are the supporting-asset locations a skill may carry
// alongside its SKILL.md.
var assetPatterns = []string{
	"references/**",
	"scripts/**",
	"templates/**",
}

// Resource is a supporting asset that belongs to a skill.
type Resource struct {
	Path       string // Path relative to the skill directory
	Size       int64
	Executable bool
}

// Resources enumerates a skill's supporting assets. Paths are relative to
// the skill directory and sorted for stable output.
func Resources(skill *Skill) ([]Resource, error) {
	if skill.Directory == "" {
		return nil, errors.New("skill has no directory")
	}

	fsys := os.DirFS(skill.Directory)
	seen := make(map[string]Resource)

	for _, pattern := range assetPatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to glob %s", pattern)
		}

		for _, match := range matches {
			info, err := fs.Stat(fsys, match)
			if err != nil || info.IsDir() {
				continue
			}

			seen[match] = Resource{
				Path:       filepath.ToSlash(match),
				Size:       info.Size(),
				Executable: info.Mode()&0o111 != 0,
			}
		}
	}

	resources := make([]Resource, 0, len(seen))
	for _, r := range seen {
		resources = append(resources, r)
	}
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Path < resources[j].Path
	})

	return resources, nil
}
