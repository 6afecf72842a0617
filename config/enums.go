package config

// OutputFormat is a kind of output produced by compile command.
type OutputFormat string

const (
	OutputFormatCSS      OutputFormat = "css"
	OutputFormatHTML     OutputFormat = "html"
	OutputFormatDocument OutputFormat = "document"
)

// OutputFormatNames returns list of supported output formats.
func OutputFormatNames() []string {
	return []string{string(OutputFormatCSS), string(OutputFormatHTML), string(OutputFormatDocument)}
}

// ParseOutputFormat converts name into OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, bool) {
	for _, n := range OutputFormatNames() {
		if n == name {
			return OutputFormat(n), true
		}
	}
	return "", false
}

func (f OutputFormat) Ext() string {
	switch f {
	case OutputFormatCSS:
		return ".css"
	case OutputFormatHTML:
		return ".html"
	case OutputFormatDocument:
		return ".yaml"
	default:
		// this should never happen
		panic("unsupported output format requested")
	}
}
