package vanilla

// ChromeClass is a typed identifier for the CSS classes of the page shell.
type ChromeClass string

const (
	ClassPage        ChromeClass = "formsync-page"
	ClassEditor      ChromeClass = "formsync-editor"
	ClassPreview     ChromeClass = "formsync-preview"
	ClassDiagnostics ChromeClass = "formsync-diagnostics"
	ClassToolbar     ChromeClass = "formsync-toolbar"
)

// ChromeClasses overrides the shell classes. Empty fields keep the defaults.
type ChromeClasses struct {
	Page        string
	Editor      string
	Preview     string
	Diagnostics string
	Toolbar     string
}

func (c ChromeClasses) resolve() map[string]string {
	pick := func(override string, fallback ChromeClass) string {
		if override != "" {
			return override
		}
		return string(fallback)
	}
	return map[string]string{
		"page":        pick(c.Page, ClassPage),
		"editor":      pick(c.Editor, ClassEditor),
		"preview":     pick(c.Preview, ClassPreview),
		"diagnostics": pick(c.Diagnostics, ClassDiagnostics),
		"toolbar":     pick(c.Toolbar, ClassToolbar),
	}
}
