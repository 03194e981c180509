package cfg

type Cfg struct {
	// Application configuration
	SourcesDir string
	DataDir    string
	DBPath     string
	Port       string
	BaseUrl    string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
