package server

import "sort"

// Kind describes one of the supported application flavors. The fence tag is
// what the model is asked to wrap the source in, the toolkit is the package
// the deployed artifact cannot start without.
type Kind struct {
	Name     string
	FenceTag string
	Toolkit  string
	RunCmd   string
}

var kinds = map[string]Kind{
	"streamlit": {
		Name:     "streamlit",
		FenceTag: "python",
		Toolkit:  "streamlit",
		RunCmd:   "streamlit run app.py --server.port=${PORT} --server.address=0.0.0.0",
	},
	"gradio": {
		Name:     "gradio",
		FenceTag: "python",
		Toolkit:  "gradio",
		RunCmd:   "python app.py",
	},
	"dash": {
		Name:     "dash",
		FenceTag: "python",
		Toolkit:  "dash",
		RunCmd:   "python app.py",
	},
}

// LookupKind resolves a kind by name. An empty name means streamlit.
func LookupKind(name string) (Kind, bool) {
	if name == "" {
		name = "streamlit"
	}
	kind, ok := kinds[name]
	return kind, ok
}

func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
