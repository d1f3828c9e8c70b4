package execute

// LanguageConfig maps an editor language to the remote execution service's
// (language, versionIndex) pair.
type LanguageConfig struct {
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
	DisplayName  string `json:"displayName"`
}

var languageConfigs = map[string]LanguageConfig{
	"javascript": {Language: "nodejs", VersionIndex: "4", DisplayName: "JavaScript (Node.js)"},
	"python":     {Language: "python3", VersionIndex: "4", DisplayName: "Python 3"},
	"java":       {Language: "java", VersionIndex: "4", DisplayName: "Java"},
	"cpp":        {Language: "cpp17", VersionIndex: "1", DisplayName: "C++ 17"},
	"c":          {Language: "c", VersionIndex: "5", DisplayName: "C (GCC 11.1.0)"},
	"csharp":     {Language: "csharp", VersionIndex: "4", DisplayName: "C#"},
	"ruby":       {Language: "ruby", VersionIndex: "4", DisplayName: "Ruby"},
	"php":        {Language: "php", VersionIndex: "4", DisplayName: "PHP"},
	"swift":      {Language: "swift", VersionIndex: "4", DisplayName: "Swift"},
	"go":         {Language: "go", VersionIndex: "4", DisplayName: "Go"},
	"kotlin":     {Language: "kotlin", VersionIndex: "3", DisplayName: "Kotlin"},
	"rust":       {Language: "rust", VersionIndex: "4", DisplayName: "Rust"},
	"scala":      {Language: "scala", VersionIndex: "4", DisplayName: "Scala"},
}

// LookupLanguage resolves an editor language name; ok is false when the
// language has no mapping and the request must be rejected before any
// upstream call.
func LookupLanguage(name string) (LanguageConfig, bool) {
	cfg, ok := languageConfigs[name]
	return cfg, ok
}
