package server

import (
	"sort"
	"strings"
)

// packageTable maps top-level module names seen in generated source to the
// package that installs them. Names that are not in the table pass through
// unchanged, they are usually installable under their own name.
var packageTable = map[string]string{
	"streamlit": "streamlit",
	"gradio":    "gradio",
	"dash":      "dash",
	"openai":    "openai",
	"requests":  "requests",
	"github":    "PyGithub",
	"dotenv":    "python-dotenv",
	"nacl":      "pynacl",
	"plotly":    "plotly",
	"airtable":  "airtable-python-wrapper",
	"PIL":       "Pillow",
	"bs4":       "beautifulsoup4",
	"yaml":      "PyYAML",
	"sklearn":   "scikit-learn",
	"cv2":       "opencv-python",
}

// stdlibModules are dropped from the manifest, pip has nothing to install
// for them.
var stdlibModules = map[string]bool{
	"os": true, "sys": true, "re": true, "json": true, "time": true,
	"math": true, "random": true, "datetime": true, "collections": true,
	"itertools": true, "functools": true, "pathlib": true, "typing": true,
	"uuid": true, "base64": true, "io": true, "csv": true, "sqlite3": true,
	"urllib": true, "http": true, "string": true, "textwrap": true,
	"hashlib": true, "secrets": true, "dataclasses": true, "enum": true,
	"abc": true, "ast": true, "subprocess": true, "threading": true,
	"logging": true, "copy": true, "shutil": true, "tempfile": true,
}

// ExtractImports collects the deduplicated top-level module names imported by
// the generated source, covering both the plain and the "from" import forms.
func ExtractImports(code string) []string {
	seen := make(map[string]bool)

	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		switch {
		case strings.HasPrefix(line, "import "):
			for _, part := range strings.Split(strings.TrimPrefix(line, "import "), ",") {
				fields := strings.Fields(part)
				if len(fields) == 0 {
					continue
				}
				if name := topLevelModule(fields[0]); name != "" {
					seen[name] = true
				}
			}
		case strings.HasPrefix(line, "from "):
			fields := strings.Fields(line)
			if len(fields) < 2 || strings.HasPrefix(fields[1], ".") {
				continue
			}
			if name := topLevelModule(fields[1]); name != "" {
				seen[name] = true
			}
		}
	}

	imports := make([]string, 0, len(seen))
	for name := range seen {
		imports = append(imports, name)
	}
	sort.Strings(imports)

	return imports
}

func topLevelModule(name string) string {
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// GenerateRequirements builds the dependency manifest for the generated
// source. The kind's UI toolkit is always included, without it the deployed
// artifact cannot start.
func GenerateRequirements(code string, kind Kind) string {
	packages := make(map[string]bool)

	for _, name := range ExtractImports(code) {
		if stdlibModules[name] {
			continue
		}
		if mapped, ok := packageTable[name]; ok {
			packages[mapped] = true
		} else {
			packages[name] = true
		}
	}

	packages[kind.Toolkit] = true

	list := make([]string, 0, len(packages))
	for name := range packages {
		list = append(list, name)
	}
	sort.Strings(list)

	return strings.Join(list, "\n")
}
