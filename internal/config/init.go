package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# mksite configuration
site_name: My Project
site_description: Documentation for My Project
docs_dir: docs
site_dir: site

theme:
  name: material
  palette:
    primary: blue
    accent: blue

markdown_extensions:
  - admonition
  - toc:
      permalink: true
  - codehilite:
      css_class: highlight
  - pymdownx.superfences
  - pymdownx.tabbed

plugins:
  - search
  - gen-files:
      scripts:
        - scripts/gen_ref_pages.sh
  - mkdocstrings:
      rendering:
        show_root_heading: true
        show_source: false
      watch:
        - internal

nav:
  - Home: index.md
  - Guides:
      - Getting Started: guides/getting-started.md
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write example config: %w", err)
	}
	return nil
}
